package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-roster-api/internal/repository"
	"github.com/noah-isme/sma-roster-api/pkg/config"
	"github.com/noah-isme/sma-roster-api/pkg/database"
)

// VerifyCommand scans person.first_name and reports rows the secret cannot reveal.
func VerifyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every stored first name deobfuscates with the secret",
		Long: `Connect with the configured DB_* settings, read every person row and
print the ids whose first_name cannot be deobfuscated. Exits non-zero when any
row fails, which usually means OBFUSCATION_SECRET changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			codec, err := opts.codec(cfg)
			if err != nil {
				return err
			}
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			audit := repository.NewPersonAudit(database.NewProvider(db, cfg.Database.AcquireTimeout), codec)
			return runVerify(cmd.Context(), cmd, audit)
		},
	}
}

type firstNameAuditor interface {
	CorruptFirstNames(ctx context.Context) ([]uint64, int, error)
}

func runVerify(ctx context.Context, cmd *cobra.Command, audit firstNameAuditor) error {
	if ctx == nil {
		ctx = context.Background()
	}
	corrupt, scanned, err := audit.CorruptFirstNames(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, id := range corrupt {
		fmt.Fprintf(out, "person %d: first_name cannot be deobfuscated\n", id)
	}
	fmt.Fprintf(out, "scanned %d rows, %d corrupt\n", scanned, len(corrupt))
	if len(corrupt) > 0 {
		return fmt.Errorf("%d person rows failed verification", len(corrupt))
	}
	return nil
}

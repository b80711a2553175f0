package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-roster-api/pkg/config"
	"github.com/noah-isme/sma-roster-api/pkg/obfuscation"
)

type options struct {
	secret string
}

// RootCommand builds the rosterctl command tree.
func RootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Operator tooling for the roster API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.secret, "secret", "", "Obfuscation secret (defaults to OBFUSCATION_SECRET from config)")

	cmd.AddCommand(
		ConcealCommand(opts),
		RevealCommand(opts),
		VerifyCommand(opts),
	)
	return cmd
}

// codec resolves the secret from the flag or configuration.
func (o *options) codec(cfg *config.Config) (*obfuscation.Codec, error) {
	secret := o.secret
	if secret == "" && cfg != nil {
		secret = cfg.Obfuscation.Secret
	}
	if secret == "" {
		return nil, errors.New("no obfuscation secret: pass --secret or set OBFUSCATION_SECRET")
	}
	return obfuscation.New(secret)
}

func (o *options) loadCodec() (*obfuscation.Codec, error) {
	if o.secret != "" {
		return o.codec(nil)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return o.codec(cfg)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ConcealCommand prints the stored form of a first name.
func ConcealCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "conceal <text>",
		Short: "Print the obfuscated form of a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := opts.loadCodec()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), codec.Obfuscate(args[0]))
			return nil
		},
	}
}

// RevealCommand prints the plaintext of a stored first name.
func RevealCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <value>",
		Short: "Print the plaintext of an obfuscated value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := opts.loadCodec()
			if err != nil {
				return err
			}
			plain, err := codec.Deobfuscate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain)
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/voidcaster/lint"
)

// voidcaster init
func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := lint.WriteConfig(opts.cfgFile, lint.DefaultConfig()); err != nil {
				return fmt.Errorf("failed to write %s: %w", opts.cfgFile, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", opts.cfgFile)
			return nil
		},
	}
}

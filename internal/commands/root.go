// Package commands wires the schoolbooks CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schoolbooks-dev/schoolbooks/internal/buildinfo"
	"github.com/schoolbooks-dev/schoolbooks/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "schoolbooks",
		Short:   "Automated double-entry bookkeeping for schools",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to schoolbooks.yaml")

	rootCmd.AddCommand(newInitCommand(&configPath))
	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newBackfillCommand(&configPath))
	rootCmd.AddCommand(newReportCommand(&configPath))
	rootCmd.AddCommand(newAccountsCommand(&configPath))
	rootCmd.AddCommand(newEntryCommand(&configPath))

	return rootCmd
}

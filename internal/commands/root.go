package commands

import (
	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dir string

	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Ledger ingestion and holdings reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", ".", "ledger project directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newMigrateCommand(&dir),
		newImportCommand(&dir),
		newAssertCommand(&dir),
		newRebuildCommand(&dir),
		newHoldingsCommand(&dir),
		newTransactionsCommand(&dir),
	)

	return rootCmd
}

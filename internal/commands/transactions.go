package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/ledger"
)

func newTransactionsCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect the transaction log",
	}
	cmd.AddCommand(newTransactionsCountCommand(dir), newTransactionsExportCommand(dir))
	return cmd
}

func newTransactionsCountCommand(dir *string) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count transactions, optionally under a link prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.db.CountTransactions(a.ctx, prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "link prefix, e.g. /alice/koinly/")
	return cmd
}

func newTransactionsExportCommand(dir *string) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.db.ListTransactions(a.ctx, prefix)
			if err != nil {
				return err
			}
			return ledger.WriteTransactions(cmd.OutOrStdout(), txns)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "link prefix, e.g. /alice/koinly/")
	return cmd
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/holdings"
)

func newHoldingsCommand(dir *string) *cobra.Command {
	var prefix string
	var depth int
	var asCSV, plain bool

	cmd := &cobra.Command{
		Use:   "holdings",
		Short: "Show holdings from the last rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := holdings.Load(a.ctx, a.db, prefix)
			if err != nil {
				return err
			}

			// The store matches by string prefix; ByPrefix keeps
			// /alice/schwab from matching /alice/schwab-bank.
			if prefix != "" {
				svc = holdings.NewService(svc.ByPrefix(prefix))
			}
			if depth > 0 {
				svc = holdings.NewService(svc.Rollup(depth))
			}

			if asCSV {
				return holdings.WriteHoldings(cmd.OutOrStdout(), svc.All())
			}
			return writeMarkdown(cmd.OutOrStdout(), holdingsMarkdown(svc), plain)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only links under this prefix, e.g. /alice/schwab")
	cmd.Flags().IntVar(&depth, "depth", 0, "roll holdings up to this many link segments")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of rendering it")

	cmd.AddCommand(newHoldingsGetCommand(dir))
	return cmd
}

func newHoldingsGetCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <link> <symbol>",
		Short: "Print the quantity of one symbol at one link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := holdings.Load(a.ctx, a.db, args[0])
			if err != nil {
				return err
			}
			h, ok := svc.Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("no %s holding at %s", args[1], args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), h.Quantity)
			return nil
		},
	}
}

func holdingsMarkdown(svc *holdings.Service) string {
	rows := svc.All()
	if len(rows) == 0 {
		return "No holdings. Run `ledger rebuild` first.\n"
	}

	var b strings.Builder
	b.WriteString("| Link | Symbol | Quantity |\n")
	b.WriteString("|---|---|--:|\n")
	for _, h := range rows {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", h.Link, h.Symbol, holdings.FormatQuantity(h.Quantity, h.Symbol))
	}

	b.WriteString("\n## Totals\n\n")
	b.WriteString("| Symbol | Quantity |\n")
	b.WriteString("|---|--:|\n")
	for _, sym := range svc.Symbols() {
		fmt.Fprintf(&b, "| %s | %s |\n", sym, holdings.FormatQuantity(svc.Total(sym), sym))
	}
	return b.String()
}

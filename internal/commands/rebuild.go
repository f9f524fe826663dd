package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/rebuild"
)

func newRebuildCommand(dir *string) *cobra.Command {
	var asOf string
	var plain, includeFees, failOnDiscrepancy bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild holdings from the transaction log and reconcile assertions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			dust, discrepancy, err := a.cfg.Tolerances()
			if err != nil {
				return err
			}
			cfg := rebuild.Config{
				DustTolerance:        dust,
				DiscrepancyTolerance: discrepancy,
				IncludeFees:          a.cfg.Reconcile.IncludeFees || includeFees,
			}

			res, err := rebuild.NewEngine(a.db, cfg).Rebuild(a.ctx, rebuild.Options{AsOf: asOf})
			if err != nil {
				return err
			}

			a.record("rebuild", "", res.HoldingsCount,
				fmt.Sprintf("rebuild_run=%s as_of=%s discrepancies=%d", res.RunID, res.AsOf, len(res.Discrepancies)))

			if err := writeMarkdown(cmd.OutOrStdout(), res.Markdown(), plain); err != nil {
				return err
			}
			if failOnDiscrepancy && len(res.Discrepancies) > 0 {
				return fmt.Errorf("%d balance discrepancies", len(res.Discrepancies))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "only replay transactions dated on or before YYYY-MM-DD")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of rendering it")
	cmd.Flags().BoolVar(&includeFees, "include-fees", false, "charge fee legs against their accounts")
	cmd.Flags().BoolVar(&failOnDiscrepancy, "fail-on-discrepancy", false, "exit non-zero when any assertion disagrees")

	return cmd
}

// writeMarkdown renders md for the terminal with glamour, or writes it
// unchanged when plain is set.
func writeMarkdown(w io.Writer, md string, plain bool) error {
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

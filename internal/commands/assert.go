package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/importer"
	"github.com/mistakia/finance-sub001/internal/ledger"
	"github.com/mistakia/finance-sub001/internal/model"
)

func newAssertCommand(dir *string) *cobra.Command {
	var institution, at string

	cmd := &cobra.Command{
		Use:   "assert <positions.json>",
		Short: "Record a position snapshot as balance assertions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}

			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := readRecordsFile(args[0])
			if err != nil {
				return err
			}

			svc := ledger.NewService(a.db, importer.DefaultRegistry())
			res, err := svc.IngestWith(a.ctx, importer.NewAssertionAdapter(institution, when), a.cfg.Owner, records)
			if err != nil {
				return err
			}

			a.record("assert", institution, res.Written, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d balance assertions for %s at %s\n",
				res.Written, institution, when.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&institution, "institution", "", "institution the positions were read from (required)")
	_ = cmd.MarkFlagRequired("institution")
	cmd.Flags().StringVar(&at, "at", "", "snapshot time, RFC 3339 or YYYY-MM-DD (default now)")

	return cmd
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

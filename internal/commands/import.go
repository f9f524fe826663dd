package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/importer"
	"github.com/mistakia/finance-sub001/internal/ledger"
	"github.com/mistakia/finance-sub001/internal/link"
)

func newImportCommand(dir *string) *cobra.Command {
	var source string
	var replace bool

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import raw institution exports",
		Long: `Import normalizes raw JSON exports and upserts them into the ledger.

With no arguments every *.json file in the import directory is imported and
moved to import/processed/. The source is taken from --source or inferred
from the file name prefix, e.g. koinly-2025.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			return runImport(cmd, a, args, source, replace)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source adapter (koinly, robinhood, schwab, fidelity, interactive-brokers)")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete the source's existing transactions before importing")

	return cmd
}

type importFile struct {
	name string
	path string
	scan bool // found by scanning the import dir; moved when done
}

func runImport(cmd *cobra.Command, a *app, args []string, source string, replace bool) error {
	registry := importer.DefaultRegistry()
	svc := ledger.NewService(a.db, registry)

	var files []importFile
	importDir := a.path(a.cfg.Import.Dir)
	if len(args) == 0 {
		scanned, err := importer.Scan(importDir)
		if err != nil {
			return err
		}
		for _, f := range scanned {
			files = append(files, importFile{name: f.Name, path: f.Path, scan: true})
		}
	} else {
		for _, arg := range args {
			files = append(files, importFile{name: filepath.Base(arg), path: arg})
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files to import in %s\n", importDir)
		return nil
	}

	// Resolve every adapter before writing anything.
	adapters := make([]importer.Adapter, len(files))
	for i, f := range files {
		var ad importer.Adapter
		if source != "" {
			ad = registry.Get(source)
		} else {
			ad = registry.Detect(f.name)
		}
		if ad == nil {
			return fmt.Errorf("cannot determine source for %s (have %s); use --source",
				f.name, strings.Join(registry.Sources(), ", "))
		}
		adapters[i] = ad
	}

	replaced := make(map[string]bool)
	total := 0
	for i, f := range files {
		ad := adapters[i]

		if replace && !replaced[ad.Source()] {
			prefix := link.Prefix(a.cfg.Owner, ad.Source())
			n, err := a.db.DeleteTransactionsByPrefix(a.ctx, prefix)
			if err != nil {
				return err
			}
			replaced[ad.Source()] = true
			a.log.Info().Str("prefix", prefix).Int64("deleted", n).Msg("replaced source")
		}

		records, err := readRecordsFile(f.path)
		if err != nil {
			return err
		}
		var res ledger.IngestResult
		if source != "" {
			res, err = svc.Ingest(a.ctx, source, a.cfg.Owner, records)
		} else {
			res, err = svc.IngestWith(a.ctx, ad, a.cfg.Owner, records)
		}
		if err != nil {
			return fmt.Errorf("importing %s: %w", f.name, err)
		}
		total += res.Written

		if f.scan {
			if err := importer.MarkProcessed(importDir, f.name); err != nil {
				return err
			}
		}
		a.record("import", res.Source, res.Written, f.name)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records, %d transactions written (%s)\n",
			f.name, res.Received, res.Written, res.Source)
	}

	if len(files) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions from %d files\n", total, len(files))
	}
	return nil
}

func readRecordsFile(path string) ([]importer.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := importer.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

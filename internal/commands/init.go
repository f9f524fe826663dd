package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/config"
)

func newInitCommand() *cobra.Command {
	var owner, driver, dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default(owner)
			if driver != "" {
				cfg.Database.Driver = driver
			}
			if dsn != "" {
				cfg.Database.DSN = dsn
			}
			if err := runInit(cmd.Context(), absDir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger for %s at %s\n", owner, absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner link root (required)")
	_ = cmd.MarkFlagRequired("owner")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database file or connection string")

	return cmd
}

func runInit(ctx context.Context, dir string, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dirs := []string{
		"logs",
		cfg.Import.Dir,
		filepath.Join(cfg.Import.Dir, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "*.db\n*.db-shm\n*.db-wal\n.env\n" + cfg.Import.Dir + "/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	db, err := openStore(ctx, dir, cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	return db.Close()
}

func newMigrateCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *dir)
			if err != nil {
				return err
			}
			defer a.Close()

			version, err := a.db.Migrate()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (%s)\n", version, a.db.Driver())
			return nil
		},
	}
}

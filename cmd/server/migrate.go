package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cookingsecret/internal/config"
	"cookingsecret/internal/database"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and list the applied ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runMigrate(ctx)
	},
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.LogLevel(cfg.LogLevel), cfg.AppEnv, os.Stderr)

	cm, err := pkgdb.NewConnectionManager(cfg.Database, log)
	if err != nil {
		return err
	}
	defer cm.Close()

	migrations := database.NewMigrationService(cm, log)
	if err := migrations.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations could not be applied: %w", err)
	}

	applied, err := migrations.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tAPPLIED AT")
	for _, m := range applied {
		fmt.Fprintf(w, "%s\t%s\n", m.Name, m.AppliedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

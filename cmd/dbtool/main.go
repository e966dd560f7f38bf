package main

import (
	"context"
	"database/sql"
	"delivery-route-builder/internal/adapters/repositories"
	"delivery-route-builder/internal/adapters/tables"
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/platform/db"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// dbtool prepares the Postgres status store and can backfill it from a
// plan_status.csv written by earlier runs.
func main() {
	var importCSV string

	rootCmd := &cobra.Command{
		Use:          "dbtool",
		Short:        "Initialize the Postgres route status schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.DatabaseURL) == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			conn, err := db.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			return initAndImport(cmd.Context(), conn, importCSV)
		},
	}
	rootCmd.Flags().StringVar(&importCSV, "import-csv", "", "plan_status.csv to copy into route_status after init")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initAndImport(ctx context.Context, conn *sql.DB, csvPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn, repositories.Postgres); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	if csvPath == "" {
		return nil
	}

	log.Printf("Importing statuses path=%s", csvPath)
	rows, err := (&tables.StatusCSV{Path: csvPath}).ListStatuses(ctx)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	for i := range rows {
		rows[i].RunID = "import"
	}
	if err := repositories.NewSQLStatusRepository(conn).SaveStatuses(ctx, rows); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Printf("Import complete rows=%d", len(rows))

	return nil
}

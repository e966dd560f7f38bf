package cli

import (
	"context"
	"delivery-route-builder/internal/adapters/tables"
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/platform/obs"
	"delivery-route-builder/internal/services"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// FetchCmd returns the fetch command.
func FetchCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		outputDir string
		allHHs    bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download finished routes as per-route CSVs and a workbook",
		Long: `List the plans starting in a date range, reconcile their routes, drivers and
stops, and write one CSV per route plus a combined workbook with one sheet
per route. Plans that have no route yet are skipped with a warning. The
"All HHs" master plan is skipped unless --all-hhs asks for it alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("start-date", startDate, services.NextFriday(time.Now()))
			if err != nil {
				return err
			}
			end, err := parseDate("end-date", endDate, start)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			fetcher := &services.RouteFetcher{
				Reader:  client,
				Drivers: client,
				Options: services.ReconcileOptions{DepotPlaceID: cfg.DepotPlaceID},
				AllHHs:  allHHs,
			}
			ctx := obs.WithRunID(cmd.Context(), uuid.NewString())
			return runFetch(ctx, cmd.OutOrStdout(), fetcher, start, end, outputDir)
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "first plan date YYYY-MM-DD (default: next Friday)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "last plan date YYYY-MM-DD (default: start date)")
	cmd.Flags().BoolVar(&allHHs, "all-hhs", false, "fetch only the \""+services.AllHHsTitle+"\" plan instead of skipping it")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the route files (default: OUTPUT_DIR)")

	return cmd
}

func runFetch(ctx context.Context, out io.Writer, fetcher *services.RouteFetcher, start, end time.Time, outputDir string) error {
	rec, err := fetcher.Fetch(ctx, start, end)
	if err != nil {
		return err
	}

	renderWarnings(out, rec.Warnings)
	if len(rec.Rows) == 0 {
		fmt.Fprintln(out, "No routed plans found.")
		return nil
	}

	dir := filepath.Join(outputDir, "routes_"+start.Format(dateLayout))
	paths, err := tables.WriteRouteCSVs(dir, rec.Rows)
	if err != nil {
		return err
	}
	workbook := filepath.Join(dir, tables.WorkbookFileName)
	if err := tables.WriteWorkbook(workbook, rec.Rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %d routes (%d stops) to %s\n", len(paths), len(rec.Rows), dir)
	fmt.Fprintf(out, "Workbook: %s\n", workbook)
	if n := len(rec.ExcludedPlans); n > 0 {
		fmt.Fprintln(out, warnFmt("%d plans skipped without a route", n))
	}
	return nil
}

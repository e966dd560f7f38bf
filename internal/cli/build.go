package cli

import (
	"context"
	"delivery-route-builder/internal/adapters/chunked"
	"delivery-route-builder/internal/adapters/circuit"
	"delivery-route-builder/internal/adapters/console"
	"delivery-route-builder/internal/adapters/tables"
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/ports"
	"delivery-route-builder/internal/services"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// BuildCmd returns the build command.
func BuildCmd() *cobra.Command {
	var (
		input            string
		sheet            string
		startDate        string
		noDistribute     bool
		failOnIncomplete bool
		dryRun           bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Create, optimize and distribute one plan per driver",
		Long: `Read a chunked sheet, confirm a Circuit driver for every driver label, then
push each route through plan creation, stop upload, optimization and
distribution. A failure on one route does not stop the others; the
per-route status table is printed and saved at the end.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("start-date", startDate, services.NextFriday(time.Now()))
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			rows, err := chunked.ReadFile(input, chunked.Options{Sheet: sheet})
			if err != nil {
				return err
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			builder := &services.RouteBuilder{
				Drivers:    client,
				Dispatcher: client,
				Resolver:   services.NewDriverResolver(console.NewPrompter(cmd.InOrStdin(), out)),
			}

			if dryRun {
				// Drivers still come from the service; nothing is created or saved.
				builder.Dispatcher = circuit.NewMockService(nil)
				fmt.Fprintln(out, warnFmt("dry run: plans are simulated and status is not saved"))
			} else {
				store, closeStore, err := openStatusStore(cfg)
				if err != nil {
					return err
				}
				defer closeStore()

				builder.Reporter = &services.StatusReporter{
					Stores: []ports.StatusRepository{store, tables.NewStatusCSV(cfg.OutputDir)},
				}
			}

			return runBuild(cmd.Context(), out, builder, services.BuildRequest{
				Rows:            rows,
				Start:           start,
				Distribute:      !noDistribute,
				PollInterval:    cfg.PollInterval,
				MaxPollAttempts: cfg.MaxPollAttempts,
			}, failOnIncomplete)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "chunked sheet (.xlsx or .csv)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name in an .xlsx input (default: first sheet)")
	cmd.Flags().StringVar(&startDate, "start-date", "", "route date YYYY-MM-DD (default: next Friday)")
	cmd.Flags().BoolVar(&noDistribute, "no-distribute", false, "stop after optimization")
	cmd.Flags().BoolVar(&failOnIncomplete, "fail-on-incomplete", false, "exit 2 when any route did not finish")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve drivers and simulate the pipeline without creating plans")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runBuild runs one build and prints its status table. Units that failed
// remotely do not make it fail unless failOnIncomplete is set, in which case
// it returns an *ExitError with code 2.
func runBuild(ctx context.Context, out io.Writer, builder *services.RouteBuilder, req services.BuildRequest, failOnIncomplete bool) error {
	res, err := builder.Build(ctx, req)
	if res.RunID == "" && err != nil {
		return err
	}

	fmt.Fprintln(out)
	renderStatus(out, res.Rows, services.FinalStage(req.Distribute))
	if err != nil {
		return err
	}

	if failOnIncomplete && len(res.Incomplete) > 0 {
		return &ExitError{
			Code: 2,
			Msg:  fmt.Sprintf("%d plans incomplete: %s", len(res.Incomplete), strings.Join(res.Incomplete, ", ")),
		}
	}
	return nil
}

package cli

import (
	"delivery-route-builder/internal/adapters/tables"
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/ports"
	"delivery-route-builder/internal/services"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	var (
		fromCSV      bool
		noDistribute bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved per-route status table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			var store ports.StatusRepository
			if fromCSV {
				store = tables.NewStatusCSV(cfg.OutputDir)
			} else {
				s, closeStore, err := openStatusStore(cfg)
				if err != nil {
					return err
				}
				defer closeStore()
				store = s
			}

			rows, err := store.ListStatuses(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No route status recorded yet.")
				return nil
			}

			renderStatus(cmd.OutOrStdout(), rows, services.FinalStage(!noDistribute))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromCSV, "csv", false, "read "+tables.StatusFileName+" instead of the database")
	cmd.Flags().BoolVar(&noDistribute, "no-distribute", false, "count routes as complete once optimized")

	return cmd
}

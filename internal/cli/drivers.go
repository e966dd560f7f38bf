package cli

import (
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/services"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// DriversCmd returns the drivers command.
func DriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List Circuit drivers in roster order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			drivers, err := client.ListDrivers(cmd.Context())
			if err != nil {
				return err
			}

			inactive := color.New(color.FgRed).SprintFunc()
			out := cmd.OutOrStdout()
			for i, d := range services.Roster(drivers) {
				status := d.StatusLabel()
				if !d.Active {
					status = inactive(status)
				}
				fmt.Fprintf(out, "%3d. %-30s %-30s %s\n", i+1, d.Name, d.Email, status)
			}
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// ExitError carries a process exit code other than 1 out of a command.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	return e.Msg
}

// ExitCode maps a command error to the process exit code: 0 for success,
// the carried code for *ExitError and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// RootCmd returns the routebuilder command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routebuilder",
		Short: "Build and fetch food bank delivery routes in Circuit",
		Long: `routebuilder takes a chunked delivery sheet (stops already split by driver),
creates one Circuit plan per driver, uploads and optimizes the stops, and
distributes the routes. It then fetches finished routes back as manifests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(BuildCmd())
	rootCmd.AddCommand(FetchCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(DriversCmd())
	rootCmd.AddCommand(ServeCmd())

	return rootCmd
}

// parseDate reads a YYYY-MM-DD flag value, or returns fallback when empty.
func parseDate(flag, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (want YYYY-MM-DD)", flag, value)
	}
	return t, nil
}

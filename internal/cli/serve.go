package cli

import (
	"context"
	"delivery-route-builder/internal/api"
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/services"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	var (
		port         string
		noDistribute bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the saved route status over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Port
			}

			store, closeStore, err := openStatusStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           api.NewRouter(store, services.FinalStage(!noDistribute)),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.Printf("Server listening addr=:%s", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default: PORT or 8080)")
	cmd.Flags().BoolVar(&noDistribute, "no-distribute", false, "count routes as complete once optimized")

	return cmd
}

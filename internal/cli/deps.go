package cli

import (
	"delivery-route-builder/internal/adapters/circuit"
	"delivery-route-builder/internal/adapters/repositories"
	"delivery-route-builder/internal/config"
	"delivery-route-builder/internal/platform/db"
	"delivery-route-builder/internal/ports"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// newClient builds the routing service client from config.
func newClient(cfg config.Config) (*circuit.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return circuit.NewClient(cfg.CircuitAPIKey, circuit.Options{
		BaseURL:   cfg.CircuitBaseURL,
		Timeout:   cfg.HTTPTimeout,
		ReadRate:  cfg.ReadRate,
		WriteRate: cfg.WriteRate,
	})
}

// openStatusStore opens Postgres when DATABASE_URL is set and the local
// SQLite file otherwise. The returned func closes the connection.
func openStatusStore(cfg config.Config) (ports.StatusRepository, func(), error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open status store: %w", err)
		}
		if err := repositories.InitSchema(conn, repositories.Postgres); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("open status store: %w", err)
		}
		log.Printf("status store=postgres")
		return repositories.NewSQLStatusRepository(conn), func() { conn.Close() }, nil
	}

	conn, err := db.OpenSqlite(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open status store: %w", err)
	}
	if err := repositories.InitSchema(conn, repositories.Sqlite); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open status store: %w", err)
	}
	log.Printf("status store=sqlite path=%s", cfg.DBPath)
	return repositories.NewSqliteStatusRepository(conn), func() { conn.Close() }, nil
}

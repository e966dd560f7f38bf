package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects placeholder and type syntax for InitSchema.
type Dialect int

const (
	Sqlite Dialect = iota
	Postgres
)

// Initialize the route status schema.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	boolType, timeType := "INTEGER", "TEXT"
	if dialect == Postgres {
		boolType, timeType = "BOOLEAN", "TIMESTAMPTZ"
	}

	createRouteStatusQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS route_status (
		title TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		plan_id TEXT NOT NULL DEFAULT '',
		driver_id TEXT NOT NULL DEFAULT '',
		initialized %[1]s NOT NULL,
		writable %[1]s NOT NULL,
		stops_uploaded %[1]s NOT NULL,
		optimized %[1]s NOT NULL,
		distributed %[1]s NOT NULL,
		halt_reason TEXT NOT NULL DEFAULT '',
		updated_at %[2]s NOT NULL
	);
	`, boolType, timeType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_status_run_id
	ON route_status(run_id);
	`

	statements := []string{
		createRouteStatusQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite-backed implementation of the StatusRepository port.
type SqliteStatusRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSqliteStatusRepository(db *sql.DB) *SqliteStatusRepository {
	return &SqliteStatusRepository{DB: db, now: time.Now}
}

// Insert or overwrite one row per title.
func (s *SqliteStatusRepository) SaveStatuses(ctx context.Context, rows []domain.StatusRow) (err error) {
	defer obs.Time(ctx, "status.sqlite.SaveStatuses")(&err)

	if s.DB == nil {
		return errors.New("sqlite status repository: DB is nil")
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save statuses: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO route_status (
		title,
		run_id,
		plan_id,
		driver_id,
		initialized,
		writable,
		stops_uploaded,
		optimized,
		distributed,
		halt_reason,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("save statuses: prepare insert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UTC().Format(time.RFC3339)
	for _, r := range rows {
		if strings.TrimSpace(r.Title) == "" {
			return errors.New("save statuses: empty title")
		}
		f := r.Flags
		if _, err := stmt.ExecContext(ctx,
			r.Title, r.RunID, r.PlanID, r.DriverID,
			f.Initialized, f.Writable, f.StopsUploaded, f.Optimized, f.Distributed,
			r.HaltReason, updatedAt,
		); err != nil {
			return fmt.Errorf("save statuses: insert title=%q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save statuses: commit tx: %w", err)
	}

	return nil
}

// Return all stored statuses ordered by title.
func (s *SqliteStatusRepository) ListStatuses(ctx context.Context) (_ []domain.StatusRow, err error) {
	defer obs.Time(ctx, "status.sqlite.ListStatuses")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite status repository: DB is nil")
	}

	return listStatuses(ctx, s.DB)
}

const listStatusesQuery = `
	SELECT
		title,
		run_id,
		plan_id,
		driver_id,
		initialized,
		writable,
		stops_uploaded,
		optimized,
		distributed,
		halt_reason
	FROM route_status
	ORDER BY title;
	`

func listStatuses(ctx context.Context, db *sql.DB) ([]domain.StatusRow, error) {
	rows, err := db.QueryContext(ctx, listStatusesQuery)
	if err != nil {
		return nil, fmt.Errorf("list statuses: query route_status table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StatusRow, 0, 16)
	for rows.Next() {
		var r domain.StatusRow
		f := &r.Flags
		if err := rows.Scan(
			&r.Title, &r.RunID, &r.PlanID, &r.DriverID,
			&f.Initialized, &f.Writable, &f.StopsUploaded, &f.Optimized, &f.Distributed,
			&r.HaltReason,
		); err != nil {
			return nil, fmt.Errorf("list statuses: scan row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list statuses: row iteration: %w", err)
	}

	return out, nil
}

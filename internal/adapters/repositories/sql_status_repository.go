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

// SQLStatusRepository stores route statuses in Postgres.
type SQLStatusRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLStatusRepository(db *sql.DB) *SQLStatusRepository {
	return &SQLStatusRepository{DB: db, now: time.Now}
}

// Upsert one row per title.
func (s *SQLStatusRepository) SaveStatuses(ctx context.Context, rows []domain.StatusRow) (err error) {
	defer obs.Time(ctx, "status.postgres.SaveStatuses")(&err)

	if s.DB == nil {
		return errors.New("status repository: db is nil")
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save statuses: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_status (
		title, run_id, plan_id, driver_id,
		initialized, writable, stops_uploaded, optimized, distributed,
		halt_reason, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (title) DO UPDATE
	SET run_id = EXCLUDED.run_id,
		plan_id = EXCLUDED.plan_id,
		driver_id = EXCLUDED.driver_id,
		initialized = EXCLUDED.initialized,
		writable = EXCLUDED.writable,
		stops_uploaded = EXCLUDED.stops_uploaded,
		optimized = EXCLUDED.optimized,
		distributed = EXCLUDED.distributed,
		halt_reason = EXCLUDED.halt_reason,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("save statuses: db prepare: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UTC()
	for _, r := range rows {
		if strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("save statuses: empty title")
		}
		f := r.Flags
		if _, err := stmt.ExecContext(ctx,
			r.Title, r.RunID, r.PlanID, r.DriverID,
			f.Initialized, f.Writable, f.StopsUploaded, f.Optimized, f.Distributed,
			r.HaltReason, updatedAt,
		); err != nil {
			return fmt.Errorf("save statuses title=%q: %w", r.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save statuses commit: %w", err)
	}

	return nil
}

// Return all stored statuses ordered by title.
func (s *SQLStatusRepository) ListStatuses(ctx context.Context) (_ []domain.StatusRow, err error) {
	defer obs.Time(ctx, "status.postgres.ListStatuses")(&err)

	if s.DB == nil {
		return nil, errors.New("status repository: db is nil")
	}

	return listStatuses(ctx, s.DB)
}

// ListStatusesByTitle returns only the named rows.
func (s *SQLStatusRepository) ListStatusesByTitle(ctx context.Context, titles []string) (_ []domain.StatusRow, err error) {
	defer obs.Time(ctx, "status.postgres.ListStatusesByTitle")(&err)

	if s.DB == nil {
		return nil, errors.New("status repository: db is nil")
	}
	if len(titles) == 0 {
		return []domain.StatusRow{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT title, run_id, plan_id, driver_id,
		initialized, writable, stops_uploaded, optimized, distributed,
		halt_reason
	FROM route_status
	WHERE title = ANY($1::text[])
	ORDER BY title;
	`, titles)
	if err != nil {
		return nil, fmt.Errorf("list statuses by title: query route_status table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StatusRow, 0, len(titles))
	for rows.Next() {
		var r domain.StatusRow
		f := &r.Flags
		if err := rows.Scan(
			&r.Title, &r.RunID, &r.PlanID, &r.DriverID,
			&f.Initialized, &f.Writable, &f.StopsUploaded, &f.Optimized, &f.Distributed,
			&r.HaltReason,
		); err != nil {
			return nil, fmt.Errorf("list statuses by title: scan rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list statuses by title: row iteration: %w", err)
	}

	return out, nil
}

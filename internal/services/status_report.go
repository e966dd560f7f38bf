package services

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"delivery-route-builder/internal/ports"
	"errors"
	"fmt"
)

// Summary counts how many units reached each stage.
type Summary struct {
	Attempted   int
	Initialized int
	Writable    int
	WithStops   int
	Optimized   int
	Distributed int
}

// Summarize counts flags across rows. It does not modify rows.
func Summarize(rows []domain.StatusRow) Summary {
	s := Summary{Attempted: len(rows)}
	for _, r := range rows {
		if r.Flags.Initialized {
			s.Initialized++
		}
		if r.Flags.Writable {
			s.Writable++
		}
		if r.Flags.StopsUploaded {
			s.WithStops++
		}
		if r.Flags.Optimized {
			s.Optimized++
		}
		if r.Flags.Distributed {
			s.Distributed++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"Plans attempted: %d, initialized: %d, with stops: %d, optimized: %d, distributed: %d",
		s.Attempted, s.Initialized, s.WithStops, s.Optimized, s.Distributed,
	)
}

// FinalStage is the stage a unit must reach for the run to count it complete.
func FinalStage(distribute bool) domain.Stage {
	if distribute {
		return domain.StageDistributed
	}
	return domain.StageOptimized
}

// Incomplete returns the titles of rows that did not reach final.
func Incomplete(rows []domain.StatusRow, final domain.Stage) []string {
	titles := make([]string, 0)
	for _, r := range rows {
		if r.Flags.Reached() < final {
			titles = append(titles, r.Title)
		}
	}
	return titles
}

// StatusRows snapshots each unit's status in input order.
func StatusRows(runID string, units []*domain.RouteUnit) []domain.StatusRow {
	rows := make([]domain.StatusRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, u.Row(runID))
	}
	return rows
}

// StatusReporter writes a run's status table to every configured store.
type StatusReporter struct {
	Stores []ports.StatusRepository
}

// Record persists rows, trying every store even after one fails.
func (r *StatusReporter) Record(ctx context.Context, rows []domain.StatusRow) (err error) {
	defer obs.Time(ctx, "status.Record")(&err)

	for _, row := range rows {
		if !row.Flags.Monotonic() {
			return fmt.Errorf("record status: %q has non-monotonic flags %+v", row.Title, row.Flags)
		}
	}

	var errs []error
	for _, store := range r.Stores {
		if err := store.SaveStatuses(ctx, rows); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("record status: %w", errors.Join(errs...))
	}
	return nil
}

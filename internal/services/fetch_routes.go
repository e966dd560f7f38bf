package services

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"delivery-route-builder/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// AllHHsTitle marks the master plan holding every household for the day.
// It is not a driver route and is fetched separately.
const AllHHsTitle = "All HHs"

// RouteFetcher downloads finished plans and reconciles them into manifest rows.
// By default the All HHs plan is skipped; with AllHHs set it is the only
// plan fetched.
type RouteFetcher struct {
	Reader  ports.PlanReader
	Drivers ports.DriverDirectory
	Options ReconcileOptions
	AllHHs  bool
}

func (f *RouteFetcher) Fetch(ctx context.Context, start, end time.Time) (_ Reconciliation, err error) {
	defer obs.Time(ctx, "routes.Fetch")(&err)

	if f.Reader == nil || f.Drivers == nil {
		return Reconciliation{}, errors.New("fetch routes: missing dependency")
	}
	if end.Before(start) {
		return Reconciliation{}, fmt.Errorf("fetch routes: end %s is before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	listed, err := f.Reader.ListPlans(ctx, start, end)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("fetch routes: %w", err)
	}
	plans := FilterAllHHs(ctx, listed, f.AllHHs)

	in := FetchedRecords{Plans: plans}
	for _, p := range plans {
		stops, routes, err := f.Reader.ListStops(ctx, p.ID)
		if err != nil {
			return Reconciliation{}, fmt.Errorf("fetch routes: %w", err)
		}
		in.Stops = append(in.Stops, stops...)
		in.Routes = append(in.Routes, routes...)
	}

	drivers, err := f.Drivers.ListDrivers(ctx)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("fetch routes: %w", err)
	}

	rec, err := Reconcile(in, drivers, f.Options)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("fetch routes: %w", err)
	}

	for _, w := range rec.Warnings {
		obs.Warn(ctx, "kind=%s plan_id=%s count=%d msg=%q", w.Kind, w.PlanID, w.Count, w.Message)
	}
	log.Printf("run_id=%s plans=%d excluded=%d rows=%d", obs.RunID(ctx), len(plans), len(rec.ExcludedPlans), len(rec.Rows))

	return rec, nil
}

// FilterAllHHs keeps only the All HHs plans when allHHs is set and drops
// them otherwise. Titles match case-insensitively. Exactly one All HHs plan
// is expected per day; other counts are logged as warnings.
func FilterAllHHs(ctx context.Context, plans []domain.Plan, allHHs bool) []domain.Plan {
	marker := strings.ToUpper(AllHHsTitle)
	kept := make([]domain.Plan, 0, len(plans))
	for _, p := range plans {
		if strings.Contains(strings.ToUpper(p.Title), marker) == allHHs {
			kept = append(kept, p)
		}
	}

	dropped := len(plans) - len(kept)
	switch {
	case allHHs && len(kept) != 1:
		obs.Warn(ctx, "all_hhs_plans=%d expected=1", len(kept))
	case !allHHs && dropped != 1:
		obs.Warn(ctx, "all_hhs_plans_dropped=%d expected=1", dropped)
	default:
		log.Printf("run_id=%s all_hhs=%t plans_dropped=%d", obs.RunID(ctx), allHHs, dropped)
	}
	return kept
}

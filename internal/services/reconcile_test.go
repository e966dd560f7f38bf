package services

import (
	"delivery-route-builder/internal/domain"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// syntheticRecords builds plans that each have one route, one driver and n
// fully populated stops.
func syntheticRecords(plans, stopsPerPlan int) (FetchedRecords, []domain.Driver) {
	var in FetchedRecords
	var drivers []domain.Driver
	for p := 1; p <= plans; p++ {
		planID := fmt.Sprintf("plans/p%d", p)
		routeID := fmt.Sprintf("routes/r%d", p)
		driverID := fmt.Sprintf("drivers/d%d", p)
		title := fmt.Sprintf("02.14 Driver %d", p)

		drivers = append(drivers, domain.Driver{ID: driverID, Name: fmt.Sprintf("Driver %d", p), Active: true})
		in.Plans = append(in.Plans, domain.Plan{ID: planID, Title: title, RouteIDs: []string{routeID}, DriverIDs: []string{driverID}})
		in.Routes = append(in.Routes, domain.Route{ID: routeID, Title: title, PlanID: planID, DriverID: driverID})

		// Reverse order to check sorting.
		for s := stopsPerPlan; s >= 1; s-- {
			in.Stops = append(in.Stops, domain.Stop{
				ID:           fmt.Sprintf("%s/stops/s%d", planID, s),
				PlanID:       planID,
				RouteID:      routeID,
				Position:     s,
				Name:         fmt.Sprintf("Recipient %d-%d", p, s),
				FullAddress:  "1 Main St, Ballard, Seattle, WA",
				AddressLine1: "1 Main St",
				AddressLine2: "Seattle, WA",
				Neighborhood: "Ballard",
				BoxType:      domain.BoxBasic,
				OrderCount:   1,
			})
		}
	}
	return in, drivers
}

func TestReconcileRoundTrip(t *testing.T) {
	in, drivers := syntheticRecords(3, 4)

	rec, err := Reconcile(in, drivers, ReconcileOptions{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(rec.Rows) != len(in.Stops) {
		t.Fatalf("rows = %d, want %d", len(rec.Rows), len(in.Stops))
	}
	if len(rec.Warnings) != 0 {
		t.Fatalf("warnings = %+v, want none", rec.Warnings)
	}

	first := rec.Rows[0]
	if first.RouteTitle != "02.14 Driver 1" || first.StopNo != 1 || first.DriverName != "Driver 1" {
		t.Fatalf("first row = %+v", first)
	}
	if first.Address != "1 Main St, Seattle, WA" {
		t.Fatalf("address = %q", first.Address)
	}
	for i := 1; i < len(rec.Rows); i++ {
		a, b := rec.Rows[i-1], rec.Rows[i]
		if a.RouteTitle > b.RouteTitle || (a.RouteTitle == b.RouteTitle && a.StopNo >= b.StopNo) {
			t.Fatalf("rows not sorted at %d: %+v then %+v", i, a, b)
		}
	}
}

func TestReconcileTwoRoutesNamesPlan(t *testing.T) {
	in, drivers := syntheticRecords(2, 2)
	in.Routes = append(in.Routes, domain.Route{ID: "routes/extra", PlanID: "plans/p2", DriverID: "drivers/d2"})

	_, err := Reconcile(in, drivers, ReconcileOptions{})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.PlanID != "plans/p2" || !strings.Contains(err.Error(), "plans/p2") {
		t.Fatalf("validation error does not name plan: %v", err)
	}
}

func TestReconcileRouteIDsFromPlanOnly(t *testing.T) {
	in, drivers := syntheticRecords(1, 1)
	in.Plans[0].RouteIDs = append(in.Plans[0].RouteIDs, "routes/ghost")

	_, err := Reconcile(in, drivers, ReconcileOptions{})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.PlanID != "plans/p1" {
		t.Fatalf("err = %v, want ValidationError for plans/p1", err)
	}
}

func TestReconcileDriverMultiplicity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *FetchedRecords)
	}{
		{"two drivers on plan", func(in *FetchedRecords) {
			in.Plans[0].DriverIDs = []string{"drivers/d1", "drivers/other"}
		}},
		{"route driver differs from plan driver", func(in *FetchedRecords) {
			in.Routes[0].DriverID = "drivers/other"
		}},
		{"no driver", func(in *FetchedRecords) {
			in.Plans[0].DriverIDs = nil
			in.Routes[0].DriverID = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, drivers := syntheticRecords(1, 2)
			tt.mutate(&in)

			_, err := Reconcile(in, drivers, ReconcileOptions{})
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.PlanID != "plans/p1" {
				t.Fatalf("err = %v, want ValidationError for plans/p1", err)
			}
		})
	}
}

func TestReconcileExcludesPlanWithoutRoute(t *testing.T) {
	in, drivers := syntheticRecords(2, 2)
	in.Plans = append(in.Plans, domain.Plan{ID: "plans/pending", Title: "02.14 Pending", DriverIDs: []string{"drivers/d1"}})
	in.Stops = append(in.Stops, domain.Stop{ID: "plans/pending/stops/x", PlanID: "plans/pending", Position: 1})

	rec, err := Reconcile(in, drivers, ReconcileOptions{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(rec.ExcludedPlans) != 1 || rec.ExcludedPlans[0] != "plans/pending" {
		t.Fatalf("excluded = %v", rec.ExcludedPlans)
	}
	if rec.WarningCount(WarnPlanWithoutRoute) != 1 || rec.WarningCount(WarnUnroutedStops) != 1 {
		t.Fatalf("warnings = %+v", rec.Warnings)
	}
	if len(rec.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rec.Rows))
	}
}

func TestReconcileImputesAndDropsDepot(t *testing.T) {
	in, drivers := syntheticRecords(1, 3)
	in.Stops[0].Neighborhood = ""
	in.Stops[1].Neighborhood = "  "
	in.Stops[1].OrderCount = 0
	in.Stops = append(in.Stops,
		domain.Stop{ID: "plans/p1/stops/depot", PlanID: "plans/p1", RouteID: "routes/r1", Position: 0},
		domain.Stop{ID: "plans/p1/stops/hub", PlanID: "plans/p1", RouteID: "routes/r1", Position: 4, PlaceID: "hub-place"},
	)

	rec, err := Reconcile(in, drivers, ReconcileOptions{DepotPlaceID: "hub-place"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(rec.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rec.Rows))
	}
	if got := rec.WarningCount(WarnImputedNeighborhood); got != 2 {
		t.Fatalf("imputed neighborhoods = %d, want 2", got)
	}
	if got := rec.WarningCount(WarnImputedOrderCount); got != 1 {
		t.Fatalf("imputed order counts = %d, want 1", got)
	}
	if got := rec.WarningCount(WarnDepotStops); got != 2 {
		t.Fatalf("depot stops = %d, want 2", got)
	}
	for _, r := range rec.Rows {
		if r.Neighborhood != "Ballard" {
			t.Fatalf("neighborhood = %q, want Ballard", r.Neighborhood)
		}
		if r.OrderCount != 1 {
			t.Fatalf("order count = %d, want 1", r.OrderCount)
		}
	}
}

func TestReconcileStopNumbersMustBeContiguous(t *testing.T) {
	in, drivers := syntheticRecords(1, 3)
	in.Stops[0].Position = 5

	_, err := Reconcile(in, drivers, ReconcileOptions{})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.PlanID != "plans/p1" {
		t.Fatalf("err = %v, want ValidationError for plans/p1", err)
	}
}

func TestReconcileStopOnForeignRoute(t *testing.T) {
	in, drivers := syntheticRecords(2, 1)
	in.Stops[0].RouteID = "routes/r2"

	_, err := Reconcile(in, drivers, ReconcileOptions{})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.PlanID != "plans/p1" {
		t.Fatalf("err = %v, want ValidationError for plans/p1", err)
	}
}

func TestReconcileCleansTitles(t *testing.T) {
	in, drivers := syntheticRecords(1, 1)
	in.Routes[0].Title = "02/14 Driver 1"

	rec, err := Reconcile(in, drivers, ReconcileOptions{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if rec.Rows[0].RouteTitle != "02.14 Driver 1" {
		t.Fatalf("title = %q", rec.Rows[0].RouteTitle)
	}
	if rec.WarningCount(WarnTitleCleaned) != 1 {
		t.Fatalf("warnings = %+v", rec.Warnings)
	}
}

func TestReconcileUnknownDriverWarns(t *testing.T) {
	in, drivers := syntheticRecords(2, 1)

	rec, err := Reconcile(in, drivers[:1], ReconcileOptions{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if rec.WarningCount(WarnUnknownDriver) != 1 {
		t.Fatalf("warnings = %+v", rec.Warnings)
	}
	if rec.Rows[1].DriverName != "drivers/d2" {
		t.Fatalf("driver name = %q, want id fallback", rec.Rows[1].DriverName)
	}
}

func TestReconcileCountsUnresolvableNeighborhoodSeparately(t *testing.T) {
	in, drivers := syntheticRecords(1, 3)
	in.Stops[0].Neighborhood = ""
	in.Stops[0].FullAddress = "1 Main St"
	in.Stops[1].Neighborhood = ""

	rec, err := Reconcile(in, drivers, ReconcileOptions{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if got := rec.WarningCount(WarnMissingNeighborhood); got != 1 {
		t.Fatalf("missing neighborhoods = %d, want 1", got)
	}
	if got := rec.WarningCount(WarnImputedNeighborhood); got != 1 {
		t.Fatalf("imputed neighborhoods = %d, want 1", got)
	}

	blank := 0
	for _, r := range rec.Rows {
		if r.Neighborhood == "" {
			blank++
		}
	}
	if blank != 1 {
		t.Fatalf("blank neighborhoods = %d, want 1", blank)
	}
}

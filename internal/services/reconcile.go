package services

import (
	"delivery-route-builder/internal/domain"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports a plan that breaks the one route, one driver rule.
type ValidationError struct {
	PlanID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan %s: %s", e.PlanID, e.Reason)
}

// Warning kinds produced by Reconcile.
const (
	WarnPlanWithoutRoute    = "plan_without_route"
	WarnUnroutedStops       = "unrouted_stops"
	WarnDepotStops          = "depot_stops"
	WarnTitleCleaned        = "title_cleaned"
	WarnImputedOrderCount   = "imputed_order_count"
	WarnImputedNeighborhood = "imputed_neighborhood"
	WarnMissingNeighborhood = "missing_neighborhood"
	WarnUnknownDriver       = "unknown_driver"
)

// Warning is a recoverable reconciliation finding. Count is the number of
// stops or plans affected.
type Warning struct {
	Kind    string
	PlanID  string
	Count   int
	Message string
}

// FetchedRecords are the service's denormalized records for a date range.
type FetchedRecords struct {
	Plans  []domain.Plan
	Routes []domain.Route
	Stops  []domain.Stop
}

type ReconcileOptions struct {
	DepotPlaceID string
}

type Reconciliation struct {
	Rows          []domain.ManifestRow
	Warnings      []Warning
	ExcludedPlans []string
}

// WarningCount sums Count over warnings of kind.
func (r Reconciliation) WarningCount(kind string) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n += w.Count
		}
	}
	return n
}

type resolvedPlan struct {
	plan     domain.Plan
	routeID  string
	title    string
	driverID string
}

// Reconcile narrows the service's plan, route and stop records to one route and
// one driver per plan and flattens them to one row per delivery stop.
//
// Plans without a route are excluded with a warning. Any plan with more than
// one route or driver, or without a driver, is a *ValidationError. Missing
// order counts and neighborhoods are imputed and counted as warnings.
func Reconcile(in FetchedRecords, drivers []domain.Driver, opts ReconcileOptions) (Reconciliation, error) {
	var out Reconciliation

	plans := make(map[string]domain.Plan, len(in.Plans))
	planOrder := make([]string, 0, len(in.Plans))
	for _, p := range in.Plans {
		if _, ok := plans[p.ID]; ok {
			return Reconciliation{}, &ValidationError{PlanID: p.ID, Reason: "returned more than once"}
		}
		plans[p.ID] = p
		planOrder = append(planOrder, p.ID)
	}

	routes := make(map[string]domain.Route, len(in.Routes))
	planRoutes := make(map[string]map[string]struct{}, len(in.Plans))
	routeDrivers := make(map[string]map[string]struct{}, len(in.Routes))

	for _, p := range in.Plans {
		for _, id := range p.RouteIDs {
			addTo(planRoutes, p.ID, id)
		}
	}
	for _, r := range in.Routes {
		if _, ok := plans[r.PlanID]; !ok {
			return Reconciliation{}, &ValidationError{PlanID: r.PlanID, Reason: fmt.Sprintf("route %s references a plan that was not fetched", r.ID)}
		}
		if prev, ok := routes[r.ID]; ok && prev.PlanID != r.PlanID {
			return Reconciliation{}, &ValidationError{PlanID: r.PlanID, Reason: fmt.Sprintf("route %s also belongs to plan %s", r.ID, prev.PlanID)}
		}
		routes[r.ID] = r
		addTo(planRoutes, r.PlanID, r.ID)
		addTo(routeDrivers, r.ID, r.DriverID)
	}

	resolved := make(map[string]resolvedPlan, len(in.Plans))
	titles := make(map[string]string, len(in.Plans))
	for _, planID := range planOrder {
		p := plans[planID]

		routeIDs := sortedKeys(planRoutes[planID])
		switch len(routeIDs) {
		case 0:
			out.ExcludedPlans = append(out.ExcludedPlans, planID)
			out.Warnings = append(out.Warnings, Warning{
				Kind:    WarnPlanWithoutRoute,
				PlanID:  planID,
				Count:   1,
				Message: fmt.Sprintf("plan %s (%s) has no route yet and is excluded", planID, p.Title),
			})
			continue
		case 1:
		default:
			return Reconciliation{}, &ValidationError{PlanID: planID, Reason: fmt.Sprintf("has %d routes: %s", len(routeIDs), strings.Join(routeIDs, ", "))}
		}
		routeID := routeIDs[0]

		for _, id := range p.DriverIDs {
			addTo(routeDrivers, routeID, id)
		}
		driverIDs := sortedKeys(routeDrivers[routeID])
		switch len(driverIDs) {
		case 0:
			return Reconciliation{}, &ValidationError{PlanID: planID, Reason: "has no driver"}
		case 1:
		default:
			return Reconciliation{}, &ValidationError{PlanID: planID, Reason: fmt.Sprintf("has %d drivers: %s", len(driverIDs), strings.Join(driverIDs, ", "))}
		}

		title := routes[routeID].Title
		if title == "" {
			title = p.Title
		}
		if cleaned := strings.ReplaceAll(title, "/", "."); cleaned != title {
			out.Warnings = append(out.Warnings, Warning{
				Kind:    WarnTitleCleaned,
				PlanID:  planID,
				Count:   1,
				Message: fmt.Sprintf("title %q contains \"/\"; using %q", title, cleaned),
			})
			title = cleaned
		}
		if other, ok := titles[title]; ok {
			return Reconciliation{}, &ValidationError{PlanID: planID, Reason: fmt.Sprintf("title %q is also used by plan %s", title, other)}
		}
		titles[title] = planID

		resolved[planID] = resolvedPlan{plan: p, routeID: routeID, title: title, driverID: driverIDs[0]}
	}

	roster := make(map[string]domain.Driver, len(drivers))
	for _, d := range drivers {
		roster[d.ID] = d
	}

	unrouted := make(map[string]int)
	depot := make(map[string]int)
	imputedCount := make(map[string]int)
	imputedHood := make(map[string]int)
	missingHood := make(map[string]int)
	positions := make(map[string][]int)

	for _, s := range in.Stops {
		if s.RouteID == "" {
			unrouted[s.PlanID]++
			continue
		}
		if s.Position == 0 || (opts.DepotPlaceID != "" && s.PlaceID == opts.DepotPlaceID) {
			depot[s.PlanID]++
			continue
		}

		rp, ok := resolved[s.PlanID]
		if !ok {
			if _, known := plans[s.PlanID]; !known {
				return Reconciliation{}, &ValidationError{PlanID: s.PlanID, Reason: fmt.Sprintf("stop %s belongs to a plan that was not fetched", s.ID)}
			}
			return Reconciliation{}, &ValidationError{PlanID: s.PlanID, Reason: fmt.Sprintf("stop %s is routed on %s but the plan has no route", s.ID, s.RouteID)}
		}
		if s.RouteID != rp.routeID {
			return Reconciliation{}, &ValidationError{PlanID: s.PlanID, Reason: fmt.Sprintf("stop %s is on route %s, plan route is %s", s.ID, s.RouteID, rp.routeID)}
		}

		row := domain.ManifestRow{
			PlanID:       s.PlanID,
			RouteID:      rp.routeID,
			RouteTitle:   rp.title,
			DriverID:     rp.driverID,
			DriverName:   rp.driverID,
			StopNo:       s.Position,
			Name:         s.Name,
			Address:      joinAddress(s),
			Phone:        s.Phone,
			Email:        s.Email,
			Notes:        s.Notes,
			OrderCount:   s.OrderCount,
			BoxType:      s.BoxType,
			Neighborhood: strings.TrimSpace(s.Neighborhood),
		}
		if d, ok := roster[rp.driverID]; ok {
			row.DriverName = d.Name
		}
		if row.OrderCount <= 0 {
			row.OrderCount = 1
			imputedCount[s.PlanID]++
		}
		if row.Neighborhood == "" {
			row.Neighborhood = neighborhoodFromAddress(s.FullAddress)
			if row.Neighborhood == "" {
				missingHood[s.PlanID]++
			} else {
				imputedHood[s.PlanID]++
			}
		}

		positions[rp.routeID] = append(positions[rp.routeID], s.Position)
		out.Rows = append(out.Rows, row)
	}

	for _, planID := range planOrder {
		rp, ok := resolved[planID]
		if !ok {
			continue
		}
		if err := checkStopNumbers(planID, positions[rp.routeID]); err != nil {
			return Reconciliation{}, err
		}
		if _, ok := roster[rp.driverID]; !ok && len(roster) > 0 {
			out.Warnings = append(out.Warnings, Warning{
				Kind:    WarnUnknownDriver,
				PlanID:  planID,
				Count:   1,
				Message: fmt.Sprintf("driver %s is not on the roster; using the id as the name", rp.driverID),
			})
		}
	}

	for _, planID := range planOrder {
		out.Warnings = appendCount(out.Warnings, WarnUnroutedStops, planID, unrouted[planID], "stops without a route dropped")
		out.Warnings = appendCount(out.Warnings, WarnDepotStops, planID, depot[planID], "depot stops dropped")
		out.Warnings = appendCount(out.Warnings, WarnImputedOrderCount, planID, imputedCount[planID], "stops missing order count; imputed 1")
		out.Warnings = appendCount(out.Warnings, WarnImputedNeighborhood, planID, imputedHood[planID], "stops missing neighborhood; imputed from address")
		out.Warnings = appendCount(out.Warnings, WarnMissingNeighborhood, planID, missingHood[planID], "stops missing neighborhood; address has none to impute")
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		if out.Rows[i].RouteTitle != out.Rows[j].RouteTitle {
			return out.Rows[i].RouteTitle < out.Rows[j].RouteTitle
		}
		return out.Rows[i].StopNo < out.Rows[j].StopNo
	})

	return out, nil
}

// checkStopNumbers requires positions to be exactly 1..n.
func checkStopNumbers(planID string, positions []int) error {
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	for i, p := range sorted {
		if p != i+1 {
			return &ValidationError{PlanID: planID, Reason: fmt.Sprintf("stop numbers are not contiguous from 1: %v", sorted)}
		}
	}
	return nil
}

func joinAddress(s domain.Stop) string {
	line1 := strings.TrimSpace(s.AddressLine1)
	line2 := strings.TrimSpace(s.AddressLine2)
	switch {
	case line1 == "":
		return strings.TrimSpace(s.FullAddress)
	case line2 == "":
		return line1
	}
	return line1 + ", " + line2
}

// neighborhoodFromAddress takes the second comma-separated part of the
// service's one-line address, which is where it puts the locality.
func neighborhoodFromAddress(full string) string {
	parts := strings.Split(full, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func appendCount(ws []Warning, kind, planID string, n int, msg string) []Warning {
	if n == 0 {
		return ws
	}
	return append(ws, Warning{Kind: kind, PlanID: planID, Count: n, Message: fmt.Sprintf("plan %s: %d %s", planID, n, msg)})
}

func addTo(m map[string]map[string]struct{}, key, value string) {
	if value == "" {
		return
	}
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[value] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

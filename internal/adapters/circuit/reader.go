package circuit

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"fmt"
	"net/url"
	"sort"
	"time"
)

// ListDrivers returns every driver on the account, sorted by name.
func (c *Client) ListDrivers(ctx context.Context) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "circuit.ListDrivers")(&err)

	raw, err := listAll[driverJSON](ctx, c, "drivers", nil, "drivers")
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	drivers := make([]domain.Driver, 0, len(raw))
	for _, d := range raw {
		drivers = append(drivers, domain.Driver{ID: d.ID, Name: d.Name, Email: d.Email, Active: d.Active})
	}
	sort.SliceStable(drivers, func(i, j int) bool { return drivers[i].Name < drivers[j].Name })

	return drivers, nil
}

// ListPlans returns plans starting within [start, end], inclusive.
func (c *Client) ListPlans(ctx context.Context, start, end time.Time) (_ []domain.Plan, err error) {
	defer obs.Time(ctx, "circuit.ListPlans")(&err)

	q := url.Values{}
	q.Set("filter.startsGte", start.Format("2006-01-02"))
	q.Set("filter.startsLte", end.Format("2006-01-02"))

	raw, err := listAll[planJSON](ctx, c, "plans", q, "plans")
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	plans := make([]domain.Plan, 0, len(raw))
	for _, p := range raw {
		plans = append(plans, p.domain())
	}
	return plans, nil
}

// ListStops returns the plan's stops and the distinct routes they embed.
func (c *Client) ListStops(ctx context.Context, planID string) (_ []domain.Stop, _ []domain.Route, err error) {
	defer obs.Time(ctx, "circuit.ListStops")(&err)

	raw, err := listAll[stopJSON](ctx, c, planID+"/stops", nil, "stops")
	if err != nil {
		return nil, nil, fmt.Errorf("list stops %s: %w", planID, err)
	}

	stops := make([]domain.Stop, 0, len(raw))
	routes := make([]domain.Route, 0, 1)
	index := make(map[string]int)
	for _, s := range raw {
		stop := s.domain(planID)
		stops = append(stops, stop)

		if s.Route == nil || s.Route.ID == "" {
			continue
		}
		r := domain.Route{
			ID:        s.Route.ID,
			Title:     s.Route.Title,
			PlanID:    firstNonEmpty(s.Route.Plan, stop.PlanID),
			DriverID:  s.Route.Driver,
			StopCount: s.Route.StopCount,
		}

		// Some stops carry only the route id; fill gaps from later, fuller copies.
		i, ok := index[r.ID]
		if !ok {
			index[r.ID] = len(routes)
			routes = append(routes, r)
			continue
		}
		if routes[i].Title == "" {
			routes[i].Title = r.Title
		}
		if routes[i].DriverID == "" {
			routes[i].DriverID = r.DriverID
		}
		if routes[i].StopCount == 0 {
			routes[i].StopCount = r.StopCount
		}
	}

	return stops, routes, nil
}

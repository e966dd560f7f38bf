package circuit

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/ports"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockFailures selects, by plan title, which remote calls fail.
type MockFailures struct {
	Create      map[string]bool
	NotWritable map[string]bool
	Upload      map[string]bool
	Optimize    map[string]bool
	Cancel      map[string]bool
	NeverDone   map[string]bool
	Distribute  map[string]bool
}

type mockPlan struct {
	plan      domain.Plan
	stops     []domain.ChunkedStop
	polls     int
	optimized bool
}

// MockService is an in-memory routing service for tests and dry runs.
// Optimizations finish after PollsUntilDone polls. Every call is appended to
// Calls as "<op> <title>".
type MockService struct {
	mu             sync.Mutex
	drivers        []domain.Driver
	plans          map[string]*mockPlan
	order          []string
	Fail           MockFailures
	PollsUntilDone int
	Calls          []string
}

func NewMockService(drivers []domain.Driver) *MockService {
	return &MockService{
		drivers: drivers,
		plans:   make(map[string]*mockPlan),
	}
}

func (m *MockService) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Driver, len(m.drivers))
	copy(out, m.drivers)
	return out, nil
}

func (m *MockService) CreatePlan(ctx context.Context, title string, start time.Time, driverID string) (ports.CreatedPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "create "+title)
	if m.Fail.Create[title] {
		return ports.CreatedPlan{}, fmt.Errorf("create plan %q: mock failure", title)
	}

	id := fmt.Sprintf("plans/p%d", len(m.order)+1)
	m.plans[id] = &mockPlan{plan: domain.Plan{
		ID:        id,
		Title:     title,
		Starts:    start,
		DriverIDs: []string{driverID},
		Writable:  !m.Fail.NotWritable[title],
	}}
	m.order = append(m.order, id)

	return ports.CreatedPlan{ID: id, Writable: m.plans[id].plan.Writable}, nil
}

func (m *MockService) UploadStops(ctx context.Context, planID string, stops []domain.ChunkedStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.plan(planID)
	if err != nil {
		return err
	}
	m.Calls = append(m.Calls, "upload "+p.plan.Title)
	if m.Fail.Upload[p.plan.Title] {
		return fmt.Errorf("upload stops %s: mock failure", planID)
	}
	if len(stops) > MaxStopsPerImport {
		return fmt.Errorf("upload stops %s: batch of %d exceeds %d", planID, len(stops), MaxStopsPerImport)
	}

	p.stops = append(p.stops, stops...)
	return nil
}

func (m *MockService) StartOptimization(ctx context.Context, planID string) (ports.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.plan(planID)
	if err != nil {
		return ports.Operation{}, err
	}
	m.Calls = append(m.Calls, "optimize "+p.plan.Title)
	if m.Fail.Optimize[p.plan.Title] {
		return ports.Operation{}, fmt.Errorf("optimize %s: mock failure", planID)
	}

	return m.operation(planID, p), nil
}

func (m *MockService) GetOperation(ctx context.Context, operationID string) (ports.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	planID := strings.TrimPrefix(operationID, "operations/")
	p, err := m.plan(planID)
	if err != nil {
		return ports.Operation{}, err
	}
	m.Calls = append(m.Calls, "poll "+p.plan.Title)
	p.polls++

	return m.operation(planID, p), nil
}

func (m *MockService) operation(planID string, p *mockPlan) ports.Operation {
	op := ports.Operation{ID: "operations/" + planID}
	if m.Fail.Cancel[p.plan.Title] {
		op.Done = true
		op.Canceled = true
		return op
	}
	if m.Fail.NeverDone[p.plan.Title] || p.polls < m.PollsUntilDone {
		return op
	}

	op.Done = true
	if !p.optimized {
		p.optimized = true
		p.plan.RouteIDs = []string{planID + "/routes/r1"}
	}
	return op
}

func (m *MockService) DistributePlan(ctx context.Context, planID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.plan(planID)
	if err != nil {
		return err
	}
	m.Calls = append(m.Calls, "distribute "+p.plan.Title)
	if m.Fail.Distribute[p.plan.Title] {
		return fmt.Errorf("distribute %s: mock failure", planID)
	}
	return nil
}

// ListPlans ignores the date range and returns every plan in creation order.
func (m *MockService) ListPlans(ctx context.Context, start, end time.Time) ([]domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Plan, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.plans[id].plan)
	}
	return out, nil
}

// ListStops numbers uploaded stops in upload order, behind a depot at position 0.
func (m *MockService) ListStops(ctx context.Context, planID string) ([]domain.Stop, []domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.plan(planID)
	if err != nil {
		return nil, nil, err
	}

	var route domain.Route
	routeID := ""
	if p.optimized {
		routeID = p.plan.RouteIDs[0]
		route = domain.Route{
			ID:        routeID,
			Title:     p.plan.Title,
			PlanID:    planID,
			DriverID:  p.plan.DriverIDs[0],
			StopCount: len(p.stops),
		}
	}

	stops := []domain.Stop{{ID: planID + "/stops/depot", PlanID: planID, RouteID: routeID, Position: 0}}
	for i, s := range p.stops {
		stops = append(stops, domain.Stop{
			ID:           fmt.Sprintf("%s/stops/s%d", planID, i+1),
			PlanID:       planID,
			RouteID:      routeID,
			Position:     i + 1,
			Name:         s.Name,
			Phone:        s.Phone,
			Email:        s.Email,
			Notes:        s.Notes,
			FullAddress:  s.Address,
			AddressLine1: s.Address,
			Neighborhood: s.Neighborhood,
			BoxType:      s.BoxType,
			OrderCount:   s.OrderCount,
		})
	}

	if routeID == "" {
		return stops, nil, nil
	}
	return stops, []domain.Route{route}, nil
}

func (m *MockService) plan(planID string) (*mockPlan, error) {
	p, ok := m.plans[planID]
	if !ok {
		return nil, fmt.Errorf("unknown plan %q", planID)
	}
	return p, nil
}

package ports

import (
	"context"
	"delivery-route-builder/internal/domain"
	"time"
)

// Plan as created by the routing service.
type CreatedPlan struct {
	ID       string
	Writable bool
}

// State of an optimization the routing service is running for a plan.
type Operation struct {
	ID           string
	Done         bool
	Canceled     bool
	SkippedStops int
	ErrorCode    string
}

// Port: read access to the service's driver roster.
type DriverDirectory interface {
	// Return every driver, active and inactive.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
}

// Port: the mutating stages of the remote workflow.
type PlanDispatcher interface {
	CreatePlan(ctx context.Context, title string, start time.Time, driverID string) (CreatedPlan, error)
	// Upload one batch of stops. Implementations reject any partial import.
	UploadStops(ctx context.Context, planID string, stops []domain.ChunkedStop) error
	StartOptimization(ctx context.Context, planID string) (Operation, error)
	GetOperation(ctx context.Context, operationID string) (Operation, error)
	DistributePlan(ctx context.Context, planID string) error
}

// Port: the denormalized records behind finished plans.
type PlanReader interface {
	ListPlans(ctx context.Context, start, end time.Time) ([]domain.Plan, error)
	// Return the plan's stops with their embedded route records.
	ListStops(ctx context.Context, planID string) ([]domain.Stop, []domain.Route, error)
}

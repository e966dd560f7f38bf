package circuit

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"delivery-route-builder/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreatePlan opens a plan for one driver on the given day.
func (c *Client) CreatePlan(
	ctx context.Context,
	title string,
	start time.Time,
	driverID string,
) (_ ports.CreatedPlan, err error) {
	defer obs.Time(ctx, "circuit.CreatePlan")(&err)

	if strings.TrimSpace(title) == "" {
		return ports.CreatedPlan{}, errors.New("create plan: title must be non-empty")
	}
	if driverID == "" {
		return ports.CreatedPlan{}, fmt.Errorf("create plan %q: driver id must be non-empty", title)
	}

	req := createPlanJSON{
		Title:   title,
		Starts:  startsJSON{Day: start.Day(), Month: int(start.Month()), Year: start.Year()},
		Drivers: []string{driverID},
	}

	var plan planJSON
	if err := c.postJSON(ctx, "plans", req, &plan); err != nil {
		return ports.CreatedPlan{}, fmt.Errorf("create plan %q: %w", title, err)
	}
	if plan.ID == "" {
		return ports.CreatedPlan{}, fmt.Errorf("create plan %q: response has no plan id", title)
	}

	return ports.CreatedPlan{ID: plan.ID, Writable: plan.Writable}, nil
}

// UploadStops imports one batch of stops. Any failed stop, or a success count
// that differs from the batch size, fails the whole batch.
func (c *Client) UploadStops(ctx context.Context, planID string, stops []domain.ChunkedStop) (err error) {
	defer obs.Time(ctx, "circuit.UploadStops")(&err)

	if len(stops) == 0 {
		return nil
	}
	if len(stops) > MaxStopsPerImport {
		return fmt.Errorf("upload stops %s: batch of %d exceeds %d", planID, len(stops), MaxStopsPerImport)
	}

	batch := make([]importStopJSON, 0, len(stops))
	for _, s := range stops {
		batch = append(batch, newImportStop(s))
	}

	var res importResultJSON
	if err := c.postJSON(ctx, planID+"/stops:import", batch, &res); err != nil {
		return fmt.Errorf("upload stops %s: %w", planID, err)
	}

	if len(res.Failed) > 0 {
		return fmt.Errorf("upload stops %s: %d of %d stops failed", planID, len(res.Failed), len(stops))
	}
	if len(res.Success) != len(stops) {
		return fmt.Errorf("upload stops %s: imported %d stops, sent %d", planID, len(res.Success), len(stops))
	}

	return nil
}

// StartOptimization asks the service to optimize the plan's route.
func (c *Client) StartOptimization(ctx context.Context, planID string) (_ ports.Operation, err error) {
	defer obs.Time(ctx, "circuit.StartOptimization")(&err)

	var op operationJSON
	if err := c.postJSON(ctx, planID+":optimize", nil, &op); err != nil {
		return ports.Operation{}, fmt.Errorf("optimize %s: %w", planID, err)
	}
	return op.operation(), nil
}

// GetOperation polls an optimization started by StartOptimization.
func (c *Client) GetOperation(ctx context.Context, operationID string) (_ ports.Operation, err error) {
	defer obs.Time(ctx, "circuit.GetOperation")(&err)

	var op operationJSON
	if err := c.getJSON(ctx, operationID, nil, &op); err != nil {
		return ports.Operation{}, fmt.Errorf("get operation %s: %w", operationID, err)
	}
	return op.operation(), nil
}

// DistributePlan sends the optimized route to the driver's app.
func (c *Client) DistributePlan(ctx context.Context, planID string) (err error) {
	defer obs.Time(ctx, "circuit.DistributePlan")(&err)

	var res distributeJSON
	if err := c.postJSON(ctx, planID+":distribute", nil, &res); err != nil {
		return fmt.Errorf("distribute %s: %w", planID, err)
	}
	if !res.Distributed {
		return fmt.Errorf("distribute %s: service reported not distributed", planID)
	}
	return nil
}

func (o operationJSON) operation() ports.Operation {
	op := ports.Operation{
		ID:       o.ID,
		Done:     o.Done,
		Canceled: o.Metadata.Canceled,
	}
	if o.Result != nil {
		op.SkippedStops = len(o.Result.SkippedStops)
		op.ErrorCode = o.Result.Code
	}
	return op
}

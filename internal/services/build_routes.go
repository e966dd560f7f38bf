package services

import (
	"context"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/platform/obs"
	"delivery-route-builder/internal/ports"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type BuildRequest struct {
	Rows            []domain.ChunkedStop
	Start           time.Time
	Distribute      bool
	PollInterval    time.Duration
	MaxPollAttempts int
}

type BuildResult struct {
	RunID      string
	Units      []*domain.RouteUnit
	Rows       []domain.StatusRow
	Summary    Summary
	Incomplete []string
}

// RouteBuilder runs the whole build: group rows, resolve drivers with the
// operator, push every unit through the pipeline and record the outcome.
type RouteBuilder struct {
	Drivers    ports.DriverDirectory
	Dispatcher ports.PlanDispatcher
	Resolver   *DriverResolver
	Reporter   *StatusReporter
}

// Build returns an error for input problems, an operator abort, or a failure
// to reach the service before any plan exists. Per-unit failures are only
// reported in the result. A status persistence error is returned together
// with the full result.
func (b *RouteBuilder) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)

	if b.Drivers == nil || b.Dispatcher == nil || b.Resolver == nil {
		return BuildResult{}, errors.New("build routes: missing dependency")
	}

	units, err := BuildRouteUnits(req.Rows, req.Start)
	if err != nil {
		return BuildResult{}, fmt.Errorf("build routes: %w", err)
	}
	log.Printf("run_id=%s units=%d stops=%d start=%s", runID, len(units), len(req.Rows), req.Start.Format("2006-01-02"))

	drivers, err := b.Drivers.ListDrivers(ctx)
	if err != nil {
		return BuildResult{}, fmt.Errorf("build routes: %w", err)
	}

	labels := make([]string, 0, len(units))
	for _, u := range units {
		labels = append(labels, u.Label)
	}
	mapping, err := b.Resolver.Resolve(ctx, labels, drivers)
	if err != nil {
		return BuildResult{}, fmt.Errorf("build routes: %w", err)
	}
	for _, u := range units {
		d, ok := mapping[u.Label]
		if !ok {
			return BuildResult{}, fmt.Errorf("build routes: no driver confirmed for %q", u.Label)
		}
		u.Driver = &d
	}

	// Once the operator confirms, remote mutation is not cancellable: every
	// unit runs to completion or failure and the outcome is always recorded.
	ctx = context.WithoutCancel(ctx)

	pipeline := NewPipeline(b.Dispatcher, PipelineOptions{
		Start:           req.Start,
		Distribute:      req.Distribute,
		PollInterval:    req.PollInterval,
		MaxPollAttempts: req.MaxPollAttempts,
	})
	if err := pipeline.Run(ctx, units); err != nil {
		return BuildResult{}, fmt.Errorf("build routes: %w", err)
	}

	rows := StatusRows(runID, units)
	res := BuildResult{
		RunID:      runID,
		Units:      units,
		Rows:       rows,
		Summary:    Summarize(rows),
		Incomplete: Incomplete(rows, FinalStage(req.Distribute)),
	}
	log.Printf("run_id=%s %s", runID, res.Summary)

	if b.Reporter != nil {
		if err := b.Reporter.Record(ctx, rows); err != nil {
			return res, fmt.Errorf("build routes: %w", err)
		}
	}

	return res, nil
}

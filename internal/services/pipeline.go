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
)

// UploadBatchSize is the most stops sent in one import call.
const UploadBatchSize = 100

type PipelineOptions struct {
	Start           time.Time
	Distribute      bool
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Pipeline drives route units through the remote workflow one stage at a time.
//
// Every unit attempts stage N before any unit starts stage N+1. A failing unit
// is halted and skipped by every later stage; it never stops the run.
type Pipeline struct {
	Dispatcher ports.PlanDispatcher
	Options    PipelineOptions
}

func NewPipeline(d ports.PlanDispatcher, opts PipelineOptions) *Pipeline {
	if opts.MaxPollAttempts <= 0 {
		opts.MaxPollAttempts = 40
	}
	return &Pipeline{Dispatcher: d, Options: opts}
}

// Run returns an error only when the run cannot start. Remote failures are
// recorded on each unit's status.
func (p *Pipeline) Run(ctx context.Context, units []*domain.RouteUnit) (err error) {
	defer obs.Time(ctx, "pipeline.Run")(&err)

	if p.Dispatcher == nil {
		return errors.New("run pipeline: dispatcher is nil")
	}
	for _, u := range units {
		if u.Driver == nil || !u.Driver.Active {
			return fmt.Errorf("run pipeline: %q has no confirmed active driver", u.Title)
		}
		if u.Status.Reached() != domain.StagePending || u.Status.Halted() {
			return fmt.Errorf("run pipeline: %q is not pending", u.Title)
		}
	}

	writable := p.initialize(ctx, units)
	p.checkWritable(ctx, units, writable)
	p.uploadStops(ctx, units)
	p.optimize(ctx, units)
	if p.Options.Distribute {
		p.distribute(ctx, units)
	} else {
		log.Printf("run_id=%s stage=distribute skipped=true", obs.RunID(ctx))
	}

	return nil
}

func (p *Pipeline) initialize(ctx context.Context, units []*domain.RouteUnit) map[*domain.RouteUnit]bool {
	writable := make(map[*domain.RouteUnit]bool, len(units))
	for _, u := range units {
		if !u.Status.Ready(domain.StageInitialized) {
			continue
		}

		plan, err := p.Dispatcher.CreatePlan(ctx, u.Title, p.Options.Start, u.Driver.ID)
		if err != nil {
			halt(ctx, u, fmt.Sprintf("create plan: %v", err))
			continue
		}
		u.PlanID = plan.ID
		writable[u] = plan.Writable
		advance(ctx, u, domain.StageInitialized)
	}
	return writable
}

func (p *Pipeline) checkWritable(ctx context.Context, units []*domain.RouteUnit, writable map[*domain.RouteUnit]bool) {
	for _, u := range units {
		if !u.Status.Ready(domain.StageWritable) {
			continue
		}
		if !writable[u] {
			halt(ctx, u, "plan is not writable")
			continue
		}
		advance(ctx, u, domain.StageWritable)
	}
}

func (p *Pipeline) uploadStops(ctx context.Context, units []*domain.RouteUnit) {
	for _, u := range units {
		if !u.Status.Ready(domain.StageStopsUploaded) {
			continue
		}
		if len(u.Stops) == 0 {
			halt(ctx, u, "no stops to upload")
			continue
		}

		var err error
		for start := 0; start < len(u.Stops); start += UploadBatchSize {
			end := min(start+UploadBatchSize, len(u.Stops))
			if err = p.Dispatcher.UploadStops(ctx, u.PlanID, u.Stops[start:end]); err != nil {
				break
			}
		}
		if err != nil {
			halt(ctx, u, fmt.Sprintf("upload stops: %v", err))
			continue
		}
		advance(ctx, u, domain.StageStopsUploaded)
	}
}

// optimize launches every eligible unit, then polls the pending operations
// in rounds until each finishes or the attempt ceiling is reached.
func (p *Pipeline) optimize(ctx context.Context, units []*domain.RouteUnit) {
	pending := make(map[*domain.RouteUnit]string)
	order := make([]*domain.RouteUnit, 0, len(units))

	for _, u := range units {
		if !u.Status.Ready(domain.StageOptimized) {
			continue
		}

		op, err := p.Dispatcher.StartOptimization(ctx, u.PlanID)
		if err != nil {
			halt(ctx, u, fmt.Sprintf("start optimization: %v", err))
			continue
		}
		if p.settle(ctx, u, op) {
			continue
		}
		pending[u] = op.ID
		order = append(order, u)
	}

	for attempt := 1; attempt <= p.Options.MaxPollAttempts && len(pending) > 0; attempt++ {
		if err := sleepCtx(ctx, p.Options.PollInterval); err != nil {
			break
		}

		for _, u := range order {
			opID, ok := pending[u]
			if !ok {
				continue
			}

			op, err := p.Dispatcher.GetOperation(ctx, opID)
			if err != nil {
				halt(ctx, u, fmt.Sprintf("poll optimization: %v", err))
				delete(pending, u)
				continue
			}
			if p.settle(ctx, u, op) {
				delete(pending, u)
			}
		}
	}

	for _, u := range order {
		if _, ok := pending[u]; ok {
			halt(ctx, u, fmt.Sprintf("optimization not finished after %d polls", p.Options.MaxPollAttempts))
		}
	}
}

// settle applies a finished operation to u and reports whether it finished.
func (p *Pipeline) settle(ctx context.Context, u *domain.RouteUnit, op ports.Operation) bool {
	switch {
	case op.Canceled:
		halt(ctx, u, "optimization canceled")
		return true
	case !op.Done:
		return false
	case op.SkippedStops > 0:
		halt(ctx, u, fmt.Sprintf("optimization skipped %d stops", op.SkippedStops))
		return true
	case op.ErrorCode != "":
		halt(ctx, u, fmt.Sprintf("optimization failed: %s", op.ErrorCode))
		return true
	}
	advance(ctx, u, domain.StageOptimized)
	return true
}

func (p *Pipeline) distribute(ctx context.Context, units []*domain.RouteUnit) {
	for _, u := range units {
		if !u.Status.Ready(domain.StageDistributed) {
			continue
		}
		if err := p.Dispatcher.DistributePlan(ctx, u.PlanID); err != nil {
			halt(ctx, u, fmt.Sprintf("distribute: %v", err))
			continue
		}
		advance(ctx, u, domain.StageDistributed)
	}
}

func advance(ctx context.Context, u *domain.RouteUnit, to domain.Stage) {
	if err := u.Status.Advance(to); err != nil {
		// Unreachable after a Ready check.
		halt(ctx, u, err.Error())
		return
	}
	log.Printf("run_id=%s title=%q plan_id=%s stage=%s", obs.RunID(ctx), u.Title, u.PlanID, to)
}

func halt(ctx context.Context, u *domain.RouteUnit, reason string) {
	_ = u.Status.Halt(reason)
	obs.Warn(ctx, "title=%q plan_id=%s halted_at=%s reason=%q", u.Title, u.PlanID, u.Status.Reached(), reason)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

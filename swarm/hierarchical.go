package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// HierarchicalOptions configures a Hierarchical swarm.
type HierarchicalOptions struct {
	// RetryPolicy governs retries for the director call and each worker
	// dispatch.
	RetryPolicy core.RetryPolicy
	// Timeout is the per-call timeout; 0 disables it.
	Timeout time.Duration
	// MaxCalls caps agent invocations per run; 0 means unlimited.
	MaxCalls int
	Logger   logging.Logger
}

// Hierarchical runs a director/worker swarm: the director agent receives
// the goal plus a worker roster and answers with assignment blocks, which
// are parsed and dispatched to the named workers one at a time. Assignments
// naming unknown workers are recorded as warnings and skipped; a worker
// failure is recorded and never blocks the remaining assignments.
type Hierarchical struct {
	name     string
	director core.Agent
	workers  []core.Agent
	byID     map[string]core.Agent
	disp     dispatcher
	maxCalls int
	logger   logging.Logger
}

// NewHierarchical creates a hierarchical swarm. The director must be
// non-nil and the worker roster non-empty; both are validated fail-fast.
// Workers are resolvable by id and, as a leniency toward directors that
// echo display names, by name.
func NewHierarchical(name string, director core.Agent, workers []core.Agent, optFns ...func(o *HierarchicalOptions)) (*Hierarchical, error) {
	if director == nil {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoDirector)
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoAgents)
	}

	opts := HierarchicalOptions{
		RetryPolicy: core.DefaultRetryPolicy(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	roster := make([]core.Agent, len(workers))
	copy(roster, workers)

	byID := make(map[string]core.Agent, len(roster)*2)
	for _, w := range roster {
		byID[w.ID()] = w
		if _, taken := byID[w.Name()]; !taken {
			byID[w.Name()] = w
		}
	}

	return &Hierarchical{
		name:     name,
		director: director,
		workers:  roster,
		byID:     byID,
		disp: dispatcher{
			timeout: opts.Timeout,
			policy:  opts.RetryPolicy,
			logger:  opts.Logger,
		},
		maxCalls: opts.MaxCalls,
		logger:   opts.Logger,
	}, nil
}

// Name implements core.Swarm.
func (s *Hierarchical) Name() string { return s.name }

// Run implements core.Swarm. The dispatch loop is single-threaded by
// contract; assignments execute in parse order, which follows the
// director's suggested order without strictly binding it to anything.
func (s *Hierarchical) Run(ctx context.Context, task core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, task)
	d := s.disp.withLimiter(s.maxCalls)

	directive := d.dispatch(ctx, s.director, core.NewTask(directorPrompt(task, s.workers)))
	conv.Append(directive)
	if directive.Failed() {
		conv.Finalize()
		return conv, fmt.Errorf("swarm %s: director: %w", s.name, directive.Err)
	}

	assignments := ParseAssignments(directive.Output)
	s.logger.Debug("director assignments parsed", "swarm", s.name, "count", len(assignments))

	for _, as := range assignments {
		if ctx.Err() != nil {
			conv.Finalize()
			return conv, ctx.Err()
		}

		worker, ok := s.byID[as.WorkerID]
		if !ok {
			s.logger.Warn("assignment names unknown worker", "swarm", s.name, "worker_id", as.WorkerID)
			now := time.Now()
			conv.Append(core.ExecutionRecord{
				AgentID:    as.WorkerID,
				Task:       core.NewTask(as.Task),
				StartedAt:  now,
				FinishedAt: now,
				Err:        fmt.Errorf("%w: %s", core.ErrUnknownWorker, as.WorkerID),
			})
			continue
		}

		rec := d.dispatch(ctx, worker, core.Task{Description: as.Task, Args: task.Args})
		conv.Append(rec)
		if rec.Failed() {
			s.logger.Warn("worker dispatch failed", "swarm", s.name, "worker", worker.Name(), "error", rec.Err)
		}
	}

	conv.Finalize()
	return conv, nil
}

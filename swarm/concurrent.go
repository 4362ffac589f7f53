package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// ConcurrentOptions configures a Concurrent swarm.
type ConcurrentOptions struct {
	// RetryPolicy governs per-agent retries inside the fan-out. Defaults
	// to a single attempt.
	RetryPolicy core.RetryPolicy
	// Timeout is the per-call timeout; 0 disables it.
	Timeout time.Duration
	// MaxCalls caps agent invocations per run; 0 means unlimited.
	MaxCalls int
	Logger   logging.Logger
}

// Concurrent dispatches tasks to all agents in parallel and collects the
// results in input order regardless of completion order. One agent's
// failure is captured in its record and does not cancel siblings.
type Concurrent struct {
	name     string
	agents   []core.Agent
	disp     dispatcher
	maxCalls int
	logger   logging.Logger
}

// NewConcurrent creates a concurrent fan-out swarm over the given roster.
// An empty roster fails fast with ErrNoAgents.
func NewConcurrent(name string, agents []core.Agent, optFns ...func(o *ConcurrentOptions)) (*Concurrent, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoAgents)
	}

	opts := ConcurrentOptions{
		RetryPolicy: core.NoRetry(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	roster := make([]core.Agent, len(agents))
	copy(roster, agents)

	return &Concurrent{
		name:   name,
		agents: roster,
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
func (s *Concurrent) Name() string { return s.name }

// Run implements core.Swarm: every agent receives the same task.
func (s *Concurrent) Run(ctx context.Context, task core.Task) (*core.Conversation, error) {
	return s.run(ctx, task, replicate(task, len(s.agents)))
}

// RunTasks pairs agents 1:1 with distinct tasks. A count mismatch is a
// configuration error and fails before any dispatch.
func (s *Concurrent) RunTasks(ctx context.Context, tasks []core.Task) (*core.Conversation, error) {
	if len(tasks) != len(s.agents) {
		return nil, fmt.Errorf("swarm %s: %d agents, %d tasks: %w", s.name, len(s.agents), len(tasks), core.ErrTaskCountMismatch)
	}
	batch := core.NewTask(fmt.Sprintf("batch of %d tasks", len(tasks)))
	return s.run(ctx, batch, tasks)
}

func (s *Concurrent) run(ctx context.Context, runTask core.Task, tasks []core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, runTask)
	start := time.Now()

	d := s.disp.withLimiter(s.maxCalls)
	records := fanOut(ctx, d, s.agents, tasks)

	failures := 0
	for _, rec := range records {
		conv.Append(rec)
		if rec.Failed() {
			failures++
		}
	}
	s.logger.Debug("concurrent fan-out completed", "swarm", s.name, "records", len(records), "failures", failures, "duration", time.Since(start))

	conv.Finalize()
	return conv, nil
}

package swarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// FailurePolicy selects how the round-robin cursor reacts to a failing
// agent. The corpus of multi-agent systems disagrees on this, so it is
// injectable rather than hardcoded.
type FailurePolicy int

const (
	// RetrySameAgent retries the failing agent up to the retry policy's
	// attempt budget before recording the error and advancing. The default.
	RetrySameAgent FailurePolicy = iota
	// AdvanceNextAgent gives each agent a single attempt and moves on
	// immediately after a failure.
	AdvanceNextAgent
)

// RoundRobinOptions configures a RoundRobin swarm.
type RoundRobinOptions struct {
	// MaxLoops is the number of full cycles over the roster per run.
	// Values <= 0 produce an empty conversation.
	MaxLoops int
	// RetryPolicy governs same-agent retries under RetrySameAgent.
	RetryPolicy core.RetryPolicy
	// FailurePolicy selects the cursor behavior on failure.
	FailurePolicy FailurePolicy
	// Timeout is the per-call timeout; 0 disables it.
	Timeout time.Duration
	// MaxCalls caps agent invocations per run; 0 means unlimited.
	MaxCalls int
	Logger   logging.Logger
}

// RoundRobin dispatches a task to agents cyclically in strict list order. A
// failing agent is retried per the failure policy and never stalls the
// cycle. The cursor persists across Run calls so successive runs continue
// where the previous one stopped.
type RoundRobin struct {
	name     string
	agents   []core.Agent
	maxLoops int
	failure  FailurePolicy
	disp     dispatcher
	maxCalls int
	logger   logging.Logger

	mu     sync.Mutex
	cursor int
}

// NewRoundRobin creates a round-robin swarm over the given roster. An empty
// roster fails fast with ErrNoAgents.
func NewRoundRobin(name string, agents []core.Agent, optFns ...func(o *RoundRobinOptions)) (*RoundRobin, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoAgents)
	}

	opts := RoundRobinOptions{
		MaxLoops:    1,
		RetryPolicy: core.DefaultRetryPolicy(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	roster := make([]core.Agent, len(agents))
	copy(roster, agents)

	return &RoundRobin{
		name:     name,
		agents:   roster,
		maxLoops: opts.MaxLoops,
		failure:  opts.FailurePolicy,
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
func (s *RoundRobin) Name() string { return s.name }

// Run implements core.Swarm. Dispatch order is strictly list order starting
// at the persisted cursor, independent of per-agent latency: the k-th
// dispatch of a run goes to agent (cursor+k) mod N. Run is single-threaded
// by contract; concurrent calls are serialized.
func (s *RoundRobin) Run(ctx context.Context, task core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, task)

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.disp.withLimiter(s.maxCalls)
	if s.failure == AdvanceNextAgent {
		d.policy = core.NoRetry()
	}

	for loop := 0; loop < s.maxLoops; loop++ {
		for range s.agents {
			if ctx.Err() != nil {
				conv.Finalize()
				return conv, ctx.Err()
			}

			rec := d.dispatch(ctx, s.agents[s.cursor], task)
			conv.Append(rec)
			if rec.Failed() {
				s.logger.Warn("round robin agent gave up", "swarm", s.name, "agent", rec.AgentName, "attempts", rec.Attempts, "error", rec.Err)
			}
			// Advance regardless of outcome so a failing agent cannot
			// stall the cycle.
			s.cursor = (s.cursor + 1) % len(s.agents)
		}
	}

	conv.Finalize()
	return conv, nil
}

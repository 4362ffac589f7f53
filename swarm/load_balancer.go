package swarm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// Stats holds the per-agent performance counters kept by the load balancer.
// Counters only ever increase while the balancer is live.
type Stats struct {
	Success int
	Failure int
}

// LoadBalancerOptions configures a LoadBalancer swarm.
type LoadBalancerOptions struct {
	// Cooldown is the wait between selection attempts when no agent is
	// available.
	Cooldown time.Duration
	// SelectionRetries is the number of selection attempts before giving
	// up with ErrNoAvailableAgent.
	SelectionRetries int
	// Timeout is the per-call timeout; 0 disables it.
	Timeout time.Duration
	// MaxCalls caps agent invocations per run; 0 means unlimited.
	MaxCalls int
	Logger   logging.Logger
}

// LoadBalancer selects an agent uniformly at random among those currently
// idle, guaranteeing at most one in-flight call per agent. The chosen agent
// is marked unavailable for the duration of the call and released on every
// exit path. Selection retries with a cooldown wait cover the all-busy
// case; they never re-dispatch a task to a second agent.
type LoadBalancer struct {
	name             string
	agents           []core.Agent
	byID             map[string]core.Agent
	cooldown         time.Duration
	selectionRetries int
	disp             dispatcher
	maxCalls         int
	logger           logging.Logger

	// mu guards available and stats together; it is scoped strictly to
	// the map updates and never held across an agent call.
	mu        sync.Mutex
	available map[string]bool
	stats     map[string]*Stats
}

// NewLoadBalancer creates a load-balancing swarm over the given roster. An
// empty roster fails fast with ErrNoAgents.
func NewLoadBalancer(name string, agents []core.Agent, optFns ...func(o *LoadBalancerOptions)) (*LoadBalancer, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoAgents)
	}

	opts := LoadBalancerOptions{
		Cooldown:         time.Second,
		SelectionRetries: 3,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	roster := make([]core.Agent, len(agents))
	copy(roster, agents)

	byID := make(map[string]core.Agent, len(roster))
	available := make(map[string]bool, len(roster))
	stats := make(map[string]*Stats, len(roster))
	for _, ag := range roster {
		byID[ag.ID()] = ag
		available[ag.ID()] = true
		stats[ag.ID()] = &Stats{}
	}

	return &LoadBalancer{
		name:             name,
		agents:           roster,
		byID:             byID,
		cooldown:         opts.Cooldown,
		selectionRetries: opts.SelectionRetries,
		disp: dispatcher{
			timeout: opts.Timeout,
			policy:  core.NoRetry(),
			logger:  opts.Logger,
		},
		maxCalls:  opts.MaxCalls,
		logger:    opts.Logger,
		available: available,
		stats:     stats,
	}, nil
}

// Name implements core.Swarm.
func (s *LoadBalancer) Name() string { return s.name }

// Run implements core.Swarm: select one idle agent, execute, release. The
// conversation carries the attempt record even when the call failed, so
// callers can distinguish "ran with a failure" (non-nil conversation plus
// error) from "could not run at all" (nil conversation).
func (s *LoadBalancer) Run(ctx context.Context, task core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, task)
	d := s.disp.withLimiter(s.maxCalls)

	rec, err := s.execute(ctx, d, task)
	if err != nil {
		return nil, err
	}
	conv.Append(rec)
	conv.Finalize()
	return conv, rec.Err
}

// RunBatch dispatches tasks sequentially, each going through the normal
// select/execute/release path. Per-task failures are captured in the
// conversation; only selection exhaustion aborts the batch.
func (s *LoadBalancer) RunBatch(ctx context.Context, tasks []core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, core.NewTask(fmt.Sprintf("batch of %d tasks", len(tasks))))
	d := s.disp.withLimiter(s.maxCalls)

	for _, task := range tasks {
		rec, err := s.execute(ctx, d, task)
		if err != nil {
			conv.Finalize()
			return conv, err
		}
		conv.Append(rec)
	}

	conv.Finalize()
	return conv, nil
}

// RunConcurrentBatch dispatches tasks in parallel; each goroutine acquires
// its own agent. Results are collected in task order regardless of
// completion order. Selection exhaustion for a task is captured in that
// task's record rather than aborting siblings.
func (s *LoadBalancer) RunConcurrentBatch(ctx context.Context, tasks []core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, core.NewTask(fmt.Sprintf("batch of %d tasks", len(tasks))))
	d := s.disp.withLimiter(s.maxCalls)

	records := make([]core.ExecutionRecord, len(tasks))
	var wg sync.WaitGroup
	for i := range tasks {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			rec, err := s.execute(ctx, d, tasks[slot])
			if err != nil {
				rec = core.ExecutionRecord{
					Task:       tasks[slot],
					StartedAt:  time.Now(),
					FinishedAt: time.Now(),
					Err:        err,
				}
			}
			records[slot] = rec
		}(i)
	}
	wg.Wait()

	for _, rec := range records {
		conv.Append(rec)
	}
	conv.Finalize()
	return conv, nil
}

// execute acquires an idle agent, dispatches and releases it. The release
// and the counter update happen together under the balancer mutex, on every
// exit path.
func (s *LoadBalancer) execute(ctx context.Context, d dispatcher, task core.Task) (core.ExecutionRecord, error) {
	ag, err := s.acquire(ctx)
	if err != nil {
		return core.ExecutionRecord{}, err
	}

	var rec core.ExecutionRecord
	func() {
		defer s.release(ag.ID(), &rec)
		rec = d.dispatch(ctx, ag, task)
	}()
	return rec, nil
}

// acquire picks a random idle agent, marking it busy. When every agent is
// busy it waits the cooldown and retries selection, up to the configured
// attempt count, then fails with ErrNoAvailableAgent.
func (s *LoadBalancer) acquire(ctx context.Context) (core.Agent, error) {
	attempts := s.selectionRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		var idle []string
		for id, ok := range s.available {
			if ok {
				idle = append(idle, id)
			}
		}
		if len(idle) > 0 {
			id := idle[rand.IntN(len(idle))]
			s.available[id] = false
			s.mu.Unlock()
			return s.byID[id], nil
		}
		s.mu.Unlock()

		if attempt >= attempts {
			return nil, fmt.Errorf("swarm %s: %w after %d attempts", s.name, core.ErrNoAvailableAgent, attempts)
		}
		s.logger.Debug("all agents busy, cooling down", "swarm", s.name, "attempt", attempt, "cooldown", s.cooldown)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cooldown):
		}
	}
}

// release marks the agent idle again and bumps its counters based on the
// record outcome. Availability and counters share one critical section.
func (s *LoadBalancer) release(id string, rec *core.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available[id] = true
	if st := s.stats[id]; st != nil {
		if rec.Err == nil && rec.Attempts > 0 {
			st.Success++
		} else {
			st.Failure++
		}
	}
}

// Stats returns a snapshot of the per-agent counters keyed by agent id.
func (s *LoadBalancer) Stats() map[string]Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Stats, len(s.stats))
	for id, st := range s.stats {
		out[id] = *st
	}
	return out
}

// AvailableAgents returns the ids of agents currently idle.
func (s *LoadBalancer) AvailableAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var idle []string
	for id, ok := range s.available {
		if ok {
			idle = append(idle, id)
		}
	}
	return idle
}

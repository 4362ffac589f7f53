package swarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// dispatcher bundles the call plumbing every policy shares: per-call timeout,
// retry policy, call budget and logging. A fresh limiter is attached per run
// so budgets never leak across runs.
type dispatcher struct {
	timeout time.Duration
	policy  core.RetryPolicy
	limiter *core.CallLimiter
	logger  logging.Logger
}

// withLimiter returns a copy of the dispatcher carrying a fresh call budget
// for one run. maxCalls == 0 means unlimited.
func (d dispatcher) withLimiter(maxCalls int) dispatcher {
	d.limiter = core.NewCallLimiter(maxCalls)
	return d
}

// dispatch invokes the agent with retries per the policy and returns the
// immutable record of the attempt sequence. It never returns an error; a
// final failure is captured in the record so batch policies can continue
// with sibling work.
func (d dispatcher) dispatch(ctx context.Context, ag core.Agent, task core.Task) core.ExecutionRecord {
	rec := core.ExecutionRecord{
		AgentID:   ag.ID(),
		AgentName: ag.Name(),
		Task:      task,
		StartedAt: time.Now(),
	}

	attempts := d.policy.Attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		rec.Attempts = attempt

		if d.limiter != nil {
			if err := d.limiter.Increment(); err != nil {
				rec.Err = err
				break
			}
		}

		out, err := d.runOnce(ctx, ag, task)
		if err == nil {
			rec.Output = out
			rec.Err = nil
			break
		}
		rec.Err = err
		d.logger.Warn("dispatch attempt failed", "agent", ag.Name(), "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			if delay := d.policy.Delay(attempt); delay > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(delay):
				}
			}
		}
	}

	rec.FinishedAt = time.Now()
	return rec
}

// runOnce performs a single invocation under the per-call timeout. A missed
// deadline surfaces as ErrAgentTimeout; no cancellation signal beyond the
// call context is propagated into an agent once started.
func (d dispatcher) runOnce(ctx context.Context, ag core.Agent, task core.Task) (string, error) {
	if d.timeout <= 0 {
		return ag.Run(ctx, task)
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := ag.Run(callCtx, task)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("agent %s: %w", ag.Name(), core.ErrAgentTimeout)
	}
}

// fanOut dispatches agents[i] on tasks[i] in parallel and returns the
// records indexed back to their origin slot. Completion order never affects
// result order, and one slot's failure does not cancel siblings. Callers
// must pass equal-length slices.
func fanOut(ctx context.Context, d dispatcher, agents []core.Agent, tasks []core.Task) []core.ExecutionRecord {
	records := make([]core.ExecutionRecord, len(agents))

	var wg sync.WaitGroup
	for i := range agents {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			records[slot] = d.dispatch(ctx, agents[slot], tasks[slot])
		}(i)
	}
	wg.Wait()

	return records
}

// replicate builds an N-element task list sharing one task, pairing a single
// task with every agent of a fan-out step.
func replicate(task core.Task, n int) []core.Task {
	tasks := make([]core.Task, n)
	for i := range tasks {
		tasks[i] = task
	}
	return tasks
}

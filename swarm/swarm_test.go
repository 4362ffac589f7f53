package swarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentswarm/core"
)

// stubAgent is a lightweight func-backed core.Agent used across the policy
// tests. It counts invocations and captures the tasks it received.
type stubAgent struct {
	id   string
	name string
	runFn func(ctx context.Context, task core.Task) (string, error)

	mu    sync.Mutex
	calls int
	tasks []core.Task
}

func newStubAgent(id string, runFn func(ctx context.Context, task core.Task) (string, error)) *stubAgent {
	return &stubAgent{id: id, name: id, runFn: runFn}
}

func (a *stubAgent) ID() string          { return a.id }
func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Description() string { return "stub agent " + a.name }

func (a *stubAgent) Run(ctx context.Context, task core.Task) (string, error) {
	a.mu.Lock()
	a.calls++
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()

	if a.runFn != nil {
		return a.runFn(ctx, task)
	}
	return fmt.Sprintf("%s: %s", a.name, task.Description), nil
}

func (a *stubAgent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *stubAgent) Tasks() []core.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Task, len(a.tasks))
	copy(out, a.tasks)
	return out
}

func roster(agents ...*stubAgent) []core.Agent {
	out := make([]core.Agent, len(agents))
	for i, a := range agents {
		out[i] = a
	}
	return out
}

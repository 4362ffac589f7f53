package core

import "context"

// Agent is the unit of work in a swarm: one call to a generative backend.
//
// Implementations must tolerate concurrent Run invocations from multiple
// callers without corrupting internal state. Run is not idempotent; two calls
// with the same task may yield different outputs. Retry policy is the
// caller's responsibility, not the agent's.
type Agent interface {
	// ID returns the unique, stable identifier used to address the agent.
	ID() string
	// Name returns the human-readable display name.
	Name() string
	// Description returns a short summary of the agent's purpose, used when
	// presenting a worker roster to a director agent.
	Description() string
	// Run executes the task against the backend and returns the produced
	// text. Implementations must respect context cancellation while waiting
	// on the backend.
	Run(ctx context.Context, task Task) (string, error)
}

// Swarm is a named collection of agents plus a coordination policy. All
// coordination policies in the swarm package implement it, and the registry
// stores swarms behind this interface.
type Swarm interface {
	Name() string
	// Run dispatches the task according to the swarm's policy and returns
	// the finalized conversation for the run. Per-agent failures inside a
	// batch are captured in the conversation; only pre-dispatch
	// configuration failures abort the run entirely.
	Run(ctx context.Context, task Task) (*Conversation, error)
}

// AgentInfo carries identifying details about an agent for logs and rosters.
type AgentInfo struct{ ID, Name, Description string }

// Info extracts an AgentInfo snapshot from an agent.
func Info(a Agent) AgentInfo {
	return AgentInfo{ID: a.ID(), Name: a.Name(), Description: a.Description()}
}

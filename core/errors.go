package core

import "errors"

// Sentinel errors shared across the coordination policies and the registry.
// Callers match them with errors.Is; dispatch sites wrap them with agent or
// swarm names for context.
var (
	// ErrNoAgents is returned when a swarm is constructed or run with an
	// empty agent roster. An empty roster is a configuration error and
	// fails fast rather than producing a silent no-op.
	ErrNoAgents = errors.New("no agents configured")

	// ErrNoAggregator is returned when a mixture swarm is missing its
	// aggregator agent.
	ErrNoAggregator = errors.New("no aggregator agent configured")

	// ErrNoDirector is returned when a hierarchical swarm is missing its
	// director agent.
	ErrNoDirector = errors.New("no director agent configured")

	// ErrInvalidLayers is returned when a mixture swarm is configured with
	// fewer than one layer.
	ErrInvalidLayers = errors.New("layers must be at least 1")

	// ErrTaskCountMismatch is returned when a concurrent dispatch receives
	// a task list whose length differs from the agent roster.
	ErrTaskCountMismatch = errors.New("agent and task counts do not match")

	// ErrNoAvailableAgent is returned by the load balancer when selection
	// retries are exhausted without finding an idle agent.
	ErrNoAvailableAgent = errors.New("no available agent")

	// ErrAgentTimeout marks an agent call that exceeded its per-call
	// timeout. It follows the same bookkeeping as any other failure.
	ErrAgentTimeout = errors.New("agent call timed out")

	// ErrUnknownWorker marks a director assignment that names a worker id
	// absent from the roster. It is recorded and skipped, never fatal.
	ErrUnknownWorker = errors.New("unknown worker id")

	// ErrLimitExceeded is returned when a run exceeds its call budget.
	ErrLimitExceeded = errors.New("exceeded max agent calls")

	// ErrConversationFinalized is returned when appending to a
	// conversation after the run completed.
	ErrConversationFinalized = errors.New("conversation is finalized")

	// ErrDuplicateName is returned by the registry when adding a swarm
	// under a name that is already taken.
	ErrDuplicateName = errors.New("swarm name already registered")

	// ErrNotFound is returned by the registry for lookups of unknown names.
	ErrNotFound = errors.New("swarm not found")
)

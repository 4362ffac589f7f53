package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
)

// Exchange is one prompt/output pair kept in an agent's private history.
type Exchange struct {
	Prompt string
	Output string
	At     time.Time
}

// Options configures a ModelAgent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// ID overrides the generated uuid. Must be unique within a swarm.
	ID string
	// Description summarizes the agent's purpose for director rosters.
	Description string
	// SystemPrompt is the role context sent with every backend call.
	SystemPrompt string
	// MaxHistory bounds the private exchange history. 0 disables history.
	MaxHistory int
	// Logger receives per-call debug output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ModelAgent wraps one generative backend call behind the core.Agent
// interface. It is safe for concurrent Run invocations; each call is
// independent and only the bounded history is shared state.
type ModelAgent struct {
	id           string
	name         string
	description  string
	systemPrompt string
	llm          model.Model
	logger       logging.Logger

	mu         sync.Mutex
	history    []Exchange
	maxHistory int
}

// New creates a model-backed agent.
//
// Defaults: generated uuid id, description derived from the name, a 20-entry
// history, no system prompt, no logging.
func New(name string, llm model.Model, optFns ...func(o *Options)) *ModelAgent {
	opts := Options{
		Description: fmt.Sprintf("Agent %s", name),
		MaxHistory:  20,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}

	return &ModelAgent{
		id:           opts.ID,
		name:         name,
		description:  opts.Description,
		systemPrompt: opts.SystemPrompt,
		llm:          llm,
		logger:       opts.Logger,
		maxHistory:   opts.MaxHistory,
	}
}

// ID returns the unique identifier for this agent.
func (a *ModelAgent) ID() string { return a.id }

// Name returns the human-readable name for this agent.
func (a *ModelAgent) Name() string { return a.name }

// Description returns a summary of this agent's purpose.
func (a *ModelAgent) Description() string { return a.description }

// Run implements core.Agent. It renders the task into a backend request,
// performs exactly one generation and records the exchange. Backend failures
// are wrapped with the agent name; retries are the caller's concern.
func (a *ModelAgent) Run(ctx context.Context, task core.Task) (string, error) {
	prompt := task.Prompt()
	start := time.Now()

	resp, err := a.llm.Generate(ctx, model.Request{
		System: a.systemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		a.logger.Warn("agent run failed", "agent", a.name, "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("agent %s: %w", a.name, err)
	}

	a.logger.Debug("agent run completed", "agent", a.name, "model", resp.Model, "duration", time.Since(start))
	a.remember(Exchange{Prompt: prompt, Output: resp.Text, At: time.Now()})
	return resp.Text, nil
}

// History returns a copy of the recorded exchanges, oldest first.
func (a *ModelAgent) History() []Exchange {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Exchange, len(a.history))
	copy(out, a.history)
	return out
}

func (a *ModelAgent) remember(ex Exchange) {
	if a.maxHistory <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, ex)
	if len(a.history) > a.maxHistory {
		a.history = a.history[len(a.history)-a.maxHistory:]
	}
}

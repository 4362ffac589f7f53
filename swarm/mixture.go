package swarm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// MixtureOptions configures a Mixture swarm.
type MixtureOptions struct {
	// Layers is the number of parallel refinement rounds before the
	// aggregation step. Must be at least 1.
	Layers int
	// RetryPolicy governs per-agent retries inside each layer.
	RetryPolicy core.RetryPolicy
	// Timeout is the per-call timeout; 0 disables it.
	Timeout time.Duration
	// MaxCalls caps agent invocations per run; 0 means unlimited.
	MaxCalls int
	Logger   logging.Logger
}

// Mixture implements layered response aggregation ("mixture of agents"):
// every agent answers the raw task in parallel, then each subsequent layer
// re-answers with all previous-layer responses in view, and a distinguished
// aggregator agent synthesizes the final answer in a single shot.
//
// Layer i sees only layer i-1: siblings within a layer never see each
// other's output, preventing order bias. A failed slot is replaced by an
// explicit error marker so every layer receives a fixed-arity input list.
type Mixture struct {
	name       string
	agents     []core.Agent
	aggregator core.Agent
	layers     int
	disp       dispatcher
	maxCalls   int
	logger     logging.Logger
}

// NewMixture creates a mixture swarm. The roster must be non-empty, the
// aggregator non-nil and the layer count at least 1; all three are
// validated fail-fast.
func NewMixture(name string, agents []core.Agent, aggregator core.Agent, optFns ...func(o *MixtureOptions)) (*Mixture, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoAgents)
	}
	if aggregator == nil {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrNoAggregator)
	}

	opts := MixtureOptions{
		Layers:      1,
		RetryPolicy: core.NoRetry(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Layers < 1 {
		return nil, fmt.Errorf("swarm %s: %w", name, core.ErrInvalidLayers)
	}

	roster := make([]core.Agent, len(agents))
	copy(roster, agents)

	return &Mixture{
		name:       name,
		agents:     roster,
		aggregator: aggregator,
		layers:     opts.Layers,
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
func (s *Mixture) Name() string { return s.name }

// Run implements core.Swarm. The conversation records every layer's
// dispatches in agent order followed by the aggregator dispatch; the
// aggregator output is the final answer. An aggregator failure is returned
// alongside the conversation.
func (s *Mixture) Run(ctx context.Context, task core.Task) (*core.Conversation, error) {
	conv := core.NewConversation(s.name, task)
	d := s.disp.withLimiter(s.maxCalls)

	// Layer 0 answers the raw task.
	outputs := s.runLayer(ctx, d, conv, task, nil)

	for layer := 1; layer < s.layers; layer++ {
		s.logger.Debug("mixture layer starting", "swarm", s.name, "layer", layer)
		outputs = s.runLayer(ctx, d, conv, task, outputs)
	}

	final := d.dispatch(ctx, s.aggregator, core.Task{
		Description: aggregationPrompt(task.Description, outputs),
		Args:        task.Args,
	})
	conv.Append(final)
	conv.Finalize()
	return conv, final.Err
}

// runLayer fans the task out to all agents. With previous-layer outputs in
// hand it augments the task so each agent sees the numbered responses of
// the entire previous layer. Returns the fixed-arity output list for the
// next layer, failed slots replaced by error markers.
func (s *Mixture) runLayer(ctx context.Context, d dispatcher, conv *core.Conversation, task core.Task, previous []string) []string {
	layerTask := task
	if previous != nil {
		layerTask = core.Task{
			Description: aggregationPrompt(task.Description, previous),
			Args:        task.Args,
		}
	}

	records := fanOut(ctx, d, s.agents, replicate(layerTask, len(s.agents)))

	outputs := make([]string, len(records))
	for i, rec := range records {
		conv.Append(rec)
		if rec.Failed() {
			outputs[i] = failureMarker(rec)
			continue
		}
		outputs[i] = rec.Output
	}
	return outputs
}

// aggregationPrompt builds the augmented prompt: the original task followed
// by the numbered concatenation of all previous responses.
func aggregationPrompt(task string, responses []string) string {
	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nResponses from the previous round:")
	for i, resp := range responses {
		fmt.Fprintf(&b, "\n%d. %s", i+1, resp)
	}
	return b.String()
}

// failureMarker is the fixed placeholder a failed slot contributes to the
// next layer, keeping the input list's arity stable.
func failureMarker(rec core.ExecutionRecord) string {
	return fmt.Sprintf("[agent %s failed: %v]", rec.AgentName, rec.Err)
}

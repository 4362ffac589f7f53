// Package agentswarm provides a high-level façade over the coordination
// policies, the swarm registry and the optional configuration snapshot,
// enabling rapid construction of multi-agent dispatch systems. Most
// applications interact with this package by:
//  1. Creating an AgentSwarm via New() (optionally bound to a config file)
//  2. Declaring agents and swarms (directly or through config entries)
//  3. Running swarms by name
//
// The façade delegates coordination to the swarm package while keeping
// setup and usage ergonomics concise. Defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger and hosted model backends.
package agentswarm

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/config"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
	anthropicmodel "github.com/hupe1980/agentswarm/model/anthropic"
	openaimodel "github.com/hupe1980/agentswarm/model/openai"
	"github.com/hupe1980/agentswarm/registry"
	"github.com/hupe1980/agentswarm/swarm"
)

// Options configures the AgentSwarm façade.
type Options struct {
	// ConfigPath binds the instance to a snapshot file. Empty disables
	// config handling entirely.
	ConfigPath string
	// Autosave rewrites the snapshot after every declared agent or swarm
	// change. Only meaningful with ConfigPath set.
	Autosave bool
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// AgentSwarm aggregates the registry, the declared agent roster and the
// optional config store.
type AgentSwarm struct {
	opts     Options
	registry *registry.Registry
	store    *config.Store // nil without ConfigPath
	agents   map[string]core.Agent
	logger   logging.Logger
}

// New creates an AgentSwarm instance. With a config path set, the snapshot
// is loaded and every agent and swarm it declares is instantiated and
// registered.
func New(optFns ...func(o *Options)) (*AgentSwarm, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &AgentSwarm{
		opts:     opts,
		registry: registry.New(func(o *registry.Options) { o.Logger = opts.Logger }),
		agents:   make(map[string]core.Agent),
		logger:   opts.Logger,
	}

	if opts.ConfigPath == "" {
		return a, nil
	}

	store, err := config.NewStore(opts.ConfigPath, func(o *config.StoreOptions) {
		o.Autosave = opts.Autosave
	})
	if err != nil {
		return nil, err
	}
	a.store = store

	snap := store.Snapshot()
	for _, ac := range snap.Agents {
		if err := a.addAgent(ac); err != nil {
			return nil, err
		}
	}
	for _, sc := range snap.Swarms {
		s, err := a.buildSwarm(sc)
		if err != nil {
			return nil, err
		}
		if err := a.registry.Add(sc.Name, s); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// DeclareAgent instantiates the configured agent, adds it to the roster
// and, when bound to a config file, records it in the snapshot.
func (a *AgentSwarm) DeclareAgent(cfg config.AgentConfig) error {
	if err := a.addAgent(cfg); err != nil {
		return err
	}
	if a.store == nil {
		return nil
	}
	return a.store.Update(func(snap *config.Snapshot) {
		snap.Agents = append(snap.Agents, cfg)
	})
}

// DeclareSwarm instantiates the configured swarm over previously declared
// agents, registers it and, when bound to a config file, records it in the
// snapshot.
func (a *AgentSwarm) DeclareSwarm(cfg config.SwarmConfig) error {
	s, err := a.buildSwarm(cfg)
	if err != nil {
		return err
	}
	if err := a.registry.Add(cfg.Name, s); err != nil {
		return err
	}
	if a.store == nil {
		return nil
	}
	return a.store.Update(func(snap *config.Snapshot) {
		snap.Swarms = append(snap.Swarms, cfg)
	})
}

// Register adds a pre-built swarm under its name. Swarms registered this
// way are not reflected in the config snapshot.
func (a *AgentSwarm) Register(s core.Swarm) error {
	return a.registry.Add(s.Name(), s)
}

// Remove drops the named swarm from the registry and the snapshot.
func (a *AgentSwarm) Remove(name string) error {
	if err := a.registry.Remove(name); err != nil {
		return err
	}
	if a.store == nil {
		return nil
	}
	return a.store.Update(func(snap *config.Snapshot) {
		kept := snap.Swarms[:0]
		for _, sc := range snap.Swarms {
			if sc.Name != name {
				kept = append(kept, sc)
			}
		}
		snap.Swarms = kept
	})
}

// Swarms returns the registered swarm names in sorted order.
func (a *AgentSwarm) Swarms() []string { return a.registry.Names() }

// Agent returns a declared agent by id.
func (a *AgentSwarm) Agent(id string) (core.Agent, bool) {
	ag, ok := a.agents[id]
	return ag, ok
}

// Run dispatches the task text to the named swarm.
func (a *AgentSwarm) Run(ctx context.Context, name, task string) (*core.Conversation, error) {
	return a.registry.Run(ctx, name, core.NewTask(task))
}

// RunTask dispatches a structured task to the named swarm.
func (a *AgentSwarm) RunTask(ctx context.Context, name string, task core.Task) (*core.Conversation, error) {
	return a.registry.Run(ctx, name, task)
}

func (a *AgentSwarm) addAgent(cfg config.AgentConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("agent %q: missing id", cfg.Name)
	}
	if _, exists := a.agents[cfg.ID]; exists {
		return fmt.Errorf("agent id %q already declared", cfg.ID)
	}

	llm, err := a.buildModel(cfg)
	if err != nil {
		return err
	}

	a.agents[cfg.ID] = agent.New(cfg.Name, llm, func(o *agent.Options) {
		o.ID = cfg.ID
		o.SystemPrompt = cfg.SystemPrompt
		o.Logger = a.logger
		if cfg.Description != "" {
			o.Description = cfg.Description
		}
	})
	return nil
}

func (a *AgentSwarm) buildModel(cfg config.AgentConfig) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
		}), nil
	case "mock", "":
		return model.NewMockModel(cfg.Name, "mock"), nil
	default:
		return nil, fmt.Errorf("agent %q: unknown provider %q", cfg.ID, cfg.Provider)
	}
}

func (a *AgentSwarm) resolveAgents(ids []string) ([]core.Agent, error) {
	agents := make([]core.Agent, 0, len(ids))
	for _, id := range ids {
		ag, ok := a.agents[id]
		if !ok {
			return nil, fmt.Errorf("agent id %q not declared", id)
		}
		agents = append(agents, ag)
	}
	return agents, nil
}

func (a *AgentSwarm) buildSwarm(cfg config.SwarmConfig) (core.Swarm, error) {
	agents, err := a.resolveAgents(cfg.Agents)
	if err != nil {
		return nil, fmt.Errorf("swarm %q: %w", cfg.Name, err)
	}

	retry := core.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}

	switch cfg.Kind {
	case config.KindRoundRobin:
		return swarm.NewRoundRobin(cfg.Name, agents, func(o *swarm.RoundRobinOptions) {
			if cfg.MaxLoops != 0 {
				o.MaxLoops = cfg.MaxLoops
			}
			o.RetryPolicy = retry
			o.Timeout = cfg.Timeout
			o.MaxCalls = cfg.MaxCalls
			o.Logger = a.logger
		})
	case config.KindConcurrent:
		return swarm.NewConcurrent(cfg.Name, agents, func(o *swarm.ConcurrentOptions) {
			o.Timeout = cfg.Timeout
			o.MaxCalls = cfg.MaxCalls
			o.Logger = a.logger
		})
	case config.KindLoadBalancer:
		return swarm.NewLoadBalancer(cfg.Name, agents, func(o *swarm.LoadBalancerOptions) {
			if cfg.Cooldown > 0 {
				o.Cooldown = cfg.Cooldown
			}
			if cfg.MaxRetries > 0 {
				o.SelectionRetries = cfg.MaxRetries
			}
			o.Timeout = cfg.Timeout
			o.MaxCalls = cfg.MaxCalls
			o.Logger = a.logger
		})
	case config.KindMixture:
		agg, ok := a.agents[cfg.Aggregator]
		if !ok {
			return nil, fmt.Errorf("swarm %q: aggregator id %q not declared", cfg.Name, cfg.Aggregator)
		}
		return swarm.NewMixture(cfg.Name, agents, agg, func(o *swarm.MixtureOptions) {
			if cfg.Layers != 0 {
				o.Layers = cfg.Layers
			}
			o.Timeout = cfg.Timeout
			o.MaxCalls = cfg.MaxCalls
			o.Logger = a.logger
		})
	case config.KindHierarchical:
		director, ok := a.agents[cfg.Director]
		if !ok {
			return nil, fmt.Errorf("swarm %q: director id %q not declared", cfg.Name, cfg.Director)
		}
		return swarm.NewHierarchical(cfg.Name, director, agents, func(o *swarm.HierarchicalOptions) {
			o.RetryPolicy = retry
			o.Timeout = cfg.Timeout
			o.MaxCalls = cfg.MaxCalls
			o.Logger = a.logger
		})
	default:
		return nil, fmt.Errorf("swarm %q: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

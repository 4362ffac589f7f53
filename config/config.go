// Package config implements the optional configuration snapshot: a YAML
// file holding a roster of agent definitions and the swarms built over
// them. A snapshot is read at startup if present and, when autosave is
// enabled, rewritten on every state change.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Swarm kinds accepted in a snapshot.
const (
	KindRoundRobin   = "round_robin"
	KindConcurrent   = "concurrent"
	KindLoadBalancer = "load_balancer"
	KindMixture      = "mixture"
	KindHierarchical = "hierarchical"
)

// AgentConfig describes one agent in the roster.
type AgentConfig struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description,omitempty"`
	Provider     string  `yaml:"provider"` // "anthropic", "openai" or "mock"
	Model        string  `yaml:"model,omitempty"`
	Temperature  float64 `yaml:"temperature,omitempty"`
	MaxTokens    int64   `yaml:"max_tokens,omitempty"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
}

// SwarmConfig describes one swarm and its policy parameters. Agent fields
// reference roster entries by id.
type SwarmConfig struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Agents   []string `yaml:"agents"`
	MaxLoops int      `yaml:"max_loops,omitempty"`
	// MaxRetries maps to the retry policy attempt budget (round robin,
	// hierarchical) or the selection attempt budget (load balancer).
	MaxRetries int           `yaml:"max_retries,omitempty"`
	Cooldown   time.Duration `yaml:"cooldown,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxCalls   int           `yaml:"max_calls,omitempty"`
	Layers     int           `yaml:"layers,omitempty"`
	Aggregator string        `yaml:"aggregator,omitempty"` // agent id (mixture)
	Director   string        `yaml:"director,omitempty"`   // agent id (hierarchical)
}

// Snapshot is the full on-disk configuration state.
type Snapshot struct {
	Agents []AgentConfig `yaml:"agents"`
	Swarms []SwarmConfig `yaml:"swarms"`
}

// Agent returns the roster entry with the given id, or false.
func (s *Snapshot) Agent(id string) (AgentConfig, bool) {
	for _, a := range s.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return AgentConfig{}, false
}

// Load reads and parses a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &snap, nil
}

// Save writes the snapshot to path, replacing any previous content.
func Save(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

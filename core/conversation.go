package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conversation is the append-only record of all dispatch attempts for one
// swarm run. Policies append ExecutionRecords as they dispatch; when the run
// completes the conversation is finalized and becomes read-only.
//
// Append is safe for concurrent use so parallel fan-out steps can log
// directly; record order within a fan-out is fixed by the policy appending
// slot-indexed results after fan-in, not by completion order.
type Conversation struct {
	mu         sync.Mutex
	id         string
	swarmName  string
	task       Task
	startedAt  time.Time
	finishedAt time.Time
	records    []ExecutionRecord
	finalized  bool
}

// NewConversation creates an empty conversation for one run of the named
// swarm, stamped with a fresh run id.
func NewConversation(swarmName string, task Task) *Conversation {
	return &Conversation{
		id:        uuid.NewString(),
		swarmName: swarmName,
		task:      task,
		startedAt: time.Now(),
	}
}

// ID returns the run id.
func (c *Conversation) ID() string { return c.id }

// SwarmName returns the name of the swarm that produced this conversation.
func (c *Conversation) SwarmName() string { return c.swarmName }

// Task returns the task the run was started with.
func (c *Conversation) Task() Task { return c.task }

// Append adds a record. It fails with ErrConversationFinalized once the run
// completed.
func (c *Conversation) Append(rec ExecutionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return ErrConversationFinalized
	}
	c.records = append(c.records, rec)
	return nil
}

// Finalize marks the run complete. Subsequent Appends fail. Finalize is
// idempotent.
func (c *Conversation) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finalized {
		c.finalized = true
		c.finishedAt = time.Now()
	}
}

// Finalized reports whether the run completed.
func (c *Conversation) Finalized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalized
}

// Records returns a copy of the ordered records for safe iteration.
func (c *Conversation) Records() []ExecutionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ExecutionRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of records.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Final returns the output of the last record, which by convention is the
// final answer of the run (for example the aggregator output of a mixture
// swarm). Empty if no records exist.
func (c *Conversation) Final() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) == 0 {
		return ""
	}
	return c.records[len(c.records)-1].Output
}

// Failures returns the records whose dispatch ultimately failed.
func (c *Conversation) Failures() []ExecutionRecord {
	var out []ExecutionRecord
	for _, rec := range c.Records() {
		if rec.Failed() {
			out = append(out, rec)
		}
	}
	return out
}

// String renders the history as readable text, one entry per record.
func (c *Conversation) String() string {
	var b strings.Builder
	for _, rec := range c.Records() {
		if rec.Failed() {
			fmt.Fprintf(&b, "%s: ERROR: %v\n", rec.AgentName, rec.Err)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", rec.AgentName, rec.Output)
	}
	return b.String()
}

// MarshalJSON exports the full run for audit: run metadata plus all records.
func (c *Conversation) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.Marshal(struct {
		ID         string            `json:"id"`
		SwarmName  string            `json:"swarm_name"`
		Task       string            `json:"task"`
		StartedAt  time.Time         `json:"started_at"`
		FinishedAt time.Time         `json:"finished_at,omitzero"`
		Records    []ExecutionRecord `json:"records"`
	}{
		ID:         c.id,
		SwarmName:  c.swarmName,
		Task:       c.task.Prompt(),
		StartedAt:  c.startedAt,
		FinishedAt: c.finishedAt,
		Records:    c.records,
	})
}

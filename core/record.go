package core

import (
	"encoding/json"
	"time"
)

// ExecutionRecord captures one dispatch attempt sequence against a single
// agent. A record is created per dispatch and never mutated afterwards; a
// later re-dispatch of the same task produces a new record.
type ExecutionRecord struct {
	AgentID    string
	AgentName  string
	Task       Task
	Output     string
	StartedAt  time.Time
	FinishedAt time.Time
	// Attempts is the number of invocations performed, including retries.
	// Zero means the record was created without invoking the agent (for
	// example an unassigned-task warning).
	Attempts int
	Err      error
}

// Failed reports whether the dispatch ultimately failed.
func (r ExecutionRecord) Failed() bool { return r.Err != nil }

// Duration returns the wall-clock time spent on the dispatch including
// retries and backoff waits.
func (r ExecutionRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarshalJSON renders the record with the error flattened to a string so
// conversations can be exported for audit.
func (r ExecutionRecord) MarshalJSON() ([]byte, error) {
	errText := ""
	if r.Err != nil {
		errText = r.Err.Error()
	}
	return json.Marshal(struct {
		AgentID    string    `json:"agent_id"`
		AgentName  string    `json:"agent_name"`
		Task       string    `json:"task"`
		Output     string    `json:"output,omitempty"`
		StartedAt  time.Time `json:"started_at"`
		FinishedAt time.Time `json:"finished_at"`
		Attempts   int       `json:"attempts"`
		Error      string    `json:"error,omitempty"`
	}{
		AgentID:    r.AgentID,
		AgentName:  r.AgentName,
		Task:       r.Task.Prompt(),
		Output:     r.Output,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Attempts:   r.Attempts,
		Error:      errText,
	})
}

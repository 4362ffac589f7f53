package core

import (
	"fmt"
	"sort"
	"strings"
)

// Task describes one unit of work handed to an agent. A task is immutable
// once dispatched; coordination policies that need to augment a task (for
// example to inject prior-layer responses) build a new Task instead of
// mutating the original.
type Task struct {
	// Description is the free-text instruction passed to the backend.
	Description string
	// Args carries optional structured arguments. They are rendered into
	// the prompt in deterministic key order.
	Args map[string]string
}

// NewTask creates a task from a plain description.
func NewTask(description string) Task {
	return Task{Description: description}
}

// WithArgs returns a copy of the task with the given arguments attached.
// The receiver is left untouched.
func (t Task) WithArgs(args map[string]string) Task {
	cp := make(map[string]string, len(args))
	for k, v := range args {
		cp[k] = v
	}
	t.Args = cp
	return t
}

// Prompt renders the task as the text sent to a backend: the description
// followed by any arguments in sorted key order.
func (t Task) Prompt() string {
	if len(t.Args) == 0 {
		return t.Description
	}
	keys := make([]string, 0, len(t.Args))
	for k := range t.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(t.Description)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, t.Args[k])
	}
	return b.String()
}

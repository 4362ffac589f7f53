package swarm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/agentswarm/core"
)

// Assignment is one (worker id, task) pair extracted from a director
// response.
type Assignment struct {
	WorkerID string
	Task     string
}

// assignmentPattern matches <worker_id><task>...</task></worker_id> blocks
// embedded in arbitrary prose. The closing tag is captured separately so a
// mismatched pair can be rejected instead of silently mispaired.
var assignmentPattern = regexp.MustCompile(`(?s)<([A-Za-z0-9_.:-]+)>\s*<task>(.*?)</task>\s*</([A-Za-z0-9_.:-]+)>`)

// ParseAssignments extracts assignments from free director text. The parser
// is deliberately lenient: unrecognized or malformed fragments are skipped,
// never fatal, and parsed text is data only, never executed. Assignment
// order follows appearance order in the text.
func ParseAssignments(text string) []Assignment {
	var assignments []Assignment
	for _, m := range assignmentPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != m[3] {
			continue
		}
		task := strings.TrimSpace(m[2])
		if task == "" {
			continue
		}
		assignments = append(assignments, Assignment{WorkerID: m[1], Task: task})
	}
	return assignments
}

// directorPrompt composes the goal, the worker roster and the assignment
// protocol the director must answer in.
func directorPrompt(task core.Task, workers []core.Agent) string {
	var b strings.Builder
	b.WriteString("You are the director of a team of worker agents. ")
	b.WriteString("Break the goal below into subtasks and assign each to a worker.\n\n")
	b.WriteString("Workers:\n")
	for _, w := range workers {
		info := core.Info(w)
		fmt.Fprintf(&b, "- id: %s, name: %s (%s)\n", info.ID, info.Name, info.Description)
	}
	b.WriteString("\nAnswer with zero or more assignment blocks of the form\n")
	b.WriteString("<worker_id><task>the subtask</task></worker_id>\n")
	b.WriteString("using the worker ids listed above.\n\nGoal: ")
	b.WriteString(task.Prompt())
	return b.String()
}

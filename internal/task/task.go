package task

import (
	"fmt"
	"strings"
)

// Task is the annotation task displayed by the console. The hosting
// application owns it; identity never changes.
type Task struct {
	ID         int64
	Name       string
	ProjectID  *int64
	Subset     string
	BugTracker string
}

// HasProject reports whether the task belongs to a project.
func (t Task) HasProject() bool {
	return t.ProjectID != nil
}

// HasBugTracker reports whether a bug tracker link is set.
func (t Task) HasBugTracker() bool {
	return strings.TrimSpace(t.BugTracker) != ""
}

// Validate checks the fields the console relies on.
func (t Task) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("task id must be positive, got %d", t.ID)
	}
	return nil
}

// ProjectSubsets returns the distinct non-empty subsets in first-seen order.
func ProjectSubsets(subsets []string) []string {
	seen := make(map[string]struct{}, len(subsets))
	out := make([]string, 0, len(subsets))
	for _, s := range subsets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

package workorder

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the server-reported state of a task's work order.
type Status string

const (
	StatusCreated        Status = "created"
	StatusUploadedToCVAT Status = "uploaded_to_cvat"
	StatusAnnotated      Status = "annotated"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusRequireInput   Status = "require_input"
)

var allStatuses = []Status{
	StatusCreated,
	StatusUploadedToCVAT,
	StatusAnnotated,
	StatusCompleted,
	StatusFailed,
	StatusRequireInput,
}

// forwardRank orders the main processing path.
var forwardRank = map[Status]int{
	StatusCreated:        0,
	StatusUploadedToCVAT: 1,
	StatusAnnotated:      2,
	StatusCompleted:      3,
}

var titleCaser = cases.Title(language.English)

// AllStatuses returns every wire status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(value string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown work order status %q", value)
}

// Known reports whether s is one of the wire statuses.
func (s Status) Known() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// IsTerminal reports whether the UI may only leave s through require_input.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Label returns a human readable form, e.g. "Uploaded To Cvat".
func (s Status) Label() string {
	if s == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether the UI may request a move from one status to
// another. An unknown current status permits every known target because the
// server is authoritative.
func CanTransition(from, to Status) bool {
	if !to.Known() {
		return false
	}
	if !from.Known() {
		return true
	}
	// require_input may be re-sent with a new justification from any state.
	if to == StatusRequireInput {
		return true
	}
	if from == to || from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	if from == StatusRequireInput {
		return to == StatusCompleted
	}
	fromRank, okFrom := forwardRank[from]
	toRank, okTo := forwardRank[to]
	return okFrom && okTo && toRank > fromRank
}

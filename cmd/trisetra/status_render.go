package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"trisetra/internal/workorder"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// workOrderKind maps a view onto a status line severity.
func workOrderKind(view workorder.View) statusKind {
	if view.Err != nil {
		return statusError
	}
	switch view.Status {
	case workorder.StatusCompleted:
		return statusOK
	case workorder.StatusFailed:
		return statusError
	case workorder.StatusRequireInput:
		return statusWarn
	default:
		return statusInfo
	}
}

// renderWorkOrder returns the status block printed for a view.
func renderWorkOrder(view workorder.View, colorize bool) []string {
	lines := renderSectionHeader(fmt.Sprintf("Task %d", view.TaskID), colorize)
	lines = append(lines, renderStatusLine("Work order", workOrderKind(view), view.Text, colorize))
	if view.Status != "" {
		lines = append(lines, renderStatusLine("Status", statusInfo, view.Status.Label(), colorize))
	}
	if view.HelpText != "" {
		lines = append(lines, renderStatusLine("Help text", statusWarn, view.HelpText, colorize))
	}
	if view.Err != nil {
		lines = append(lines, renderStatusLine("Error", statusError, view.Err.Error(), colorize))
	}
	return lines
}

// workOrderJSON is the machine readable form of a view.
type workOrderJSON struct {
	TaskID    int64  `json:"task_id"`
	Status    string `json:"status,omitempty"`
	Label     string `json:"label"`
	HelpText  string `json:"help_text,omitempty"`
	Text      string `json:"text"`
	FetchedAt string `json:"fetched_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

func toWorkOrderJSON(view workorder.View) workOrderJSON {
	out := workOrderJSON{
		TaskID:   view.TaskID,
		Status:   view.Status.String(),
		Label:    view.Status.Label(),
		HelpText: view.HelpText,
		Text:     view.Text,
		Error:    errorText(view.Err),
	}
	if !view.FetchedAt.IsZero() {
		out.FetchedAt = view.FetchedAt.UTC().Format(time.RFC3339)
	}
	return out
}

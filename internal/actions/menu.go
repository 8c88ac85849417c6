package actions

import (
	"strings"

	"trisetra/internal/config"
	"trisetra/internal/task"
)

// Built-in task action keys.
const (
	LoadTaskAnnotations     = "load_task_anno"
	ExportTaskDataset       = "export_task_dataset"
	ExportTaskAnnotations   = "export_task_annotations"
	GenerateBlendAndPreview = "generate_blend_and_preview"
	GenerateGLBAndHDRs      = "generate_glb_and_hdrs"
	OpenBugTracker          = "open_bug_tracker"
	RunAutoAnnotation       = "run_auto_annotation"
	BackupTask              = "backup_task"
	ViewAnalytics           = "view_analytics"
	MoveTaskToProject       = "move_task_to_project"
	DeleteTask              = "delete_task"
)

// Action is one entry of the task action menu.
type Action struct {
	Key         string
	Label       string
	Weight      int
	Disabled    bool
	Contributed bool
}

// MenuState is what the menu depends on besides the task itself.
type MenuState struct {
	Task            task.Task
	InferenceActive bool
	BackupActive    bool
}

// Builtins returns the built-in actions applicable to the state.
func Builtins(state MenuState) []Weighted[Action] {
	var out []Weighted[Action]
	add := func(key, label string, weight int, disabled bool) {
		out = append(out, Weighted[Action]{
			Entry:  Action{Key: key, Label: label, Weight: weight, Disabled: disabled},
			Weight: weight,
		})
	}

	add(LoadTaskAnnotations, "Upload annotations", 0, false)
	add(ExportTaskDataset, "Export task dataset", 10, false)
	add(ExportTaskAnnotations, "Export Annotations & Reconstruct", 11, false)
	add(GenerateBlendAndPreview, "Generate Preview & Blend File", 12, false)
	add(GenerateGLBAndHDRs, "Generate & Upload GLB + HDRs", 13, false)
	if state.Task.HasBugTracker() {
		add(OpenBugTracker, "Open bug tracker", 20, false)
	}
	add(RunAutoAnnotation, "Automatic annotation", 30, state.InferenceActive)
	add(BackupTask, "Backup Task", 40, state.BackupActive)
	add(ViewAnalytics, "View analytics", 50, false)
	if !state.Task.HasProject() {
		add(MoveTaskToProject, "Move to project", 60, false)
	}
	add(DeleteTask, "Delete", 70, false)
	return out
}

// NewTaskMenu builds a registry holding the builtins for state and the
// configured contributions.
func NewTaskMenu(state MenuState, contributions []config.Contribution) *Registry[Action] {
	registry := NewRegistry(Builtins(state)...)
	for _, c := range contributions {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			continue
		}
		registry.Contribute(c.Weight, Action{
			Key:         key,
			Label:       strings.TrimSpace(c.Label),
			Weight:      c.Weight,
			Contributed: true,
		})
	}
	return registry
}

// TaskMenu returns the ordered task action menu.
func TaskMenu(state MenuState, contributions []config.Contribution) []Action {
	return NewTaskMenu(state, contributions).Resolve()
}

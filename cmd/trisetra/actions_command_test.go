package main

import (
	"encoding/json"
	"testing"

	"trisetra/internal/actions"
	"trisetra/internal/testsupport"
)

func TestActionsCommandMergesContributions(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithContribution("open_in_blender", "Open in Blender", 15))

	out, _, err := env.run(t, "--json", "actions", "5")
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	var got []actionJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 11 {
		t.Fatalf("expected 11 actions, got %d: %+v", len(got), got)
	}
	if got[4].Key != actions.GenerateGLBAndHDRs || got[5].Key != "open_in_blender" || !got[5].Contributed {
		t.Fatalf("contribution not placed by weight: %+v", got)
	}
	if got[len(got)-1].Key != actions.DeleteTask {
		t.Fatalf("expected delete last, got %+v", got[len(got)-1])
	}
}

func TestActionsCommandReflectsTaskState(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "actions", "5",
		"--name", "Kitchen",
		"--project-id", "3",
		"--bug-tracker", "https://bugs.example/5",
		"--backup-active",
		"--project-subsets", "train,,validation,train",
	)
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	requireContains(t, out, "Task 5 Kitchen")
	requireContains(t, out, "train, validation")
	requireContains(t, out, "Open bug tracker")
	requireContains(t, out, "disabled")
	requireNotContains(t, out, "Move to project")
}

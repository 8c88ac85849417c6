package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
)

func TestWatchCommandPrintsChangedViews(t *testing.T) {
	env := setupCLITestEnv(t)
	env.remote.Respond(http.MethodGet, "tasks/42", http.StatusOK, workOrderBody("annotated", ""))
	env.remote.Respond(http.MethodGet, "tasks/42/reconstruction-previews", http.StatusOK, map[string]any{
		"previews": []string{},
		"message":  "Reconstruction pending",
	})

	out, _, err := env.run(t, "watch", "42", "--interval", "1ms", "--max-polls", "3")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	requireContains(t, out, "Reconstruction pending")
	if got := strings.Count(out, "Work order status: annotated"); got != 1 {
		t.Fatalf("expected the unchanged view once, got %d in %q", got, out)
	}
	if got := env.remote.CallCount(http.MethodGet, "tasks/42"); got != 3 {
		t.Fatalf("expected 3 polls, got %d", got)
	}
}

func TestWatchCommandRefusesSecondWatcher(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.MkdirAll(env.cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	lock := flock.New(filepath.Join(env.cfg.Paths.StateDir, "watch-42.lock"))
	if err := lock.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	_, _, err := env.run(t, "watch", "42", "--max-polls", "1")
	if err == nil {
		t.Fatal("expected error while another watcher holds the lock")
	}
	requireContains(t, err.Error(), "already being watched")
	if got := len(env.remote.Calls()); got != 0 {
		t.Fatalf("expected no remote calls, got %d", got)
	}
}

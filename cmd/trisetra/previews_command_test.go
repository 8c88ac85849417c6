package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"trisetra/internal/testsupport"
)

func TestPreviewsCommandListsMeshAndImages(t *testing.T) {
	env := setupCLITestEnv(t)
	png := testsupport.PNG(t, 40, 20)
	env.remote.HandleFunc(http.MethodGet, "media/wide.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	})
	env.remote.Respond(http.MethodGet, "tasks/12/reconstruction-previews", http.StatusOK, map[string]any{
		"previews": []string{
			env.remote.URL() + "/media/wide.png",
			env.remote.URL() + "/media/room.ply",
		},
		"last_modified": "2026-10-01T10:00:00Z",
	})

	out, _, err := env.run(t, "previews", "12")
	if err != nil {
		t.Fatalf("previews: %v", err)
	}
	requireContains(t, out, "Previews for task 12")
	requireContains(t, out, "room.ply (modified 2026-10-01T10:00:00Z)")
	requireContains(t, out, "wide.png")
	requireContains(t, out, "40x20")
	requireContains(t, out, "width")
}

func TestPreviewsCommandEmptyListingShowsPlaceholder(t *testing.T) {
	env := setupCLITestEnv(t)
	env.remote.Respond(http.MethodGet, "tasks/12/reconstruction-previews", http.StatusOK, map[string]any{
		"previews": []string{},
		"message":  "Reconstruction is still running",
	})

	out, _, err := env.run(t, "previews", "12")
	if err != nil {
		t.Fatalf("previews: %v", err)
	}
	requireContains(t, out, "Reconstruction is still running")
}

func TestPreviewsCommandJSONMarksFailedImages(t *testing.T) {
	env := setupCLITestEnv(t)
	env.remote.Respond(http.MethodGet, "tasks/12/reconstruction-previews", http.StatusOK, map[string]any{
		"previews": []string{env.remote.URL() + "/media/missing.png"},
	})

	out, _, err := env.run(t, "--json", "previews", "12")
	if err != nil {
		t.Fatalf("previews: %v", err)
	}
	var got galleryJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got.Assets) != 1 {
		t.Fatalf("expected one asset, got %+v", got.Assets)
	}
	if got.Assets[0].Description != "Could not load missing.png" || got.Assets[0].Error == "" {
		t.Fatalf("unexpected asset %+v", got.Assets[0])
	}
}

package testsupport

import (
	"context"
	"testing"

	"trisetra/internal/config"
	"trisetra/internal/rotation"
)

// MustOpenStore opens the local storage database for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *rotation.Store {
	t.Helper()

	store, err := rotation.Open(cfg)
	if err != nil {
		t.Fatalf("rotation.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SetItems writes key/value pairs in order.
func SetItems(t testing.TB, store *rotation.Store, pairs ...string) {
	t.Helper()

	if len(pairs)%2 != 0 {
		t.Fatalf("SetItems: odd number of arguments")
	}
	for i := 0; i < len(pairs); i += 2 {
		if err := store.SetItem(context.Background(), pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("SetItem(%q): %v", pairs[i], err)
		}
	}
}

package prefs

import (
	"context"
	"testing"

	"github.com/reportdeck/backend/internal/infrastructure/config"
)

func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Missing key
	_, ok, err := store.Get(ctx, "alice", "reportdeck.reportwidgets.dashboard")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Missing key should report not present")
	}

	// Round trip
	payload := []byte(`{"a":{"class":"x","configuration":{},"sortOrder":1}}`)
	if err := store.Set(ctx, "alice", "reportdeck.reportwidgets.dashboard", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := store.Get(ctx, "alice", "reportdeck.reportwidgets.dashboard")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Stored key should be present")
	}
	if string(got) != string(payload) {
		t.Errorf("Value mismatch: got %s", got)
	}

	// Overwrite
	updated := []byte(`{"b":{"class":"y","configuration":{},"sortOrder":2}}`)
	if err := store.Set(ctx, "alice", "reportdeck.reportwidgets.dashboard", updated); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	got, _, _ = store.Get(ctx, "alice", "reportdeck.reportwidgets.dashboard")
	if string(got) != string(updated) {
		t.Errorf("Overwrite lost: got %s", got)
	}

	// User isolation
	_, ok, err = store.Get(ctx, "bob", "reportdeck.reportwidgets.dashboard")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Keys should be scoped per user")
	}

	// Delete
	if err := store.Delete(ctx, "alice", "reportdeck.reportwidgets.dashboard"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, ok, _ = store.Get(ctx, "alice", "reportdeck.reportwidgets.dashboard")
	if ok {
		t.Error("Deleted key should not be present")
	}

	// Delete of absent key is a no-op
	if err := store.Delete(ctx, "alice", "never-set"); err != nil {
		t.Errorf("Delete of absent key should not error: %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	runStoreContract(t, store)
}

func TestFileStoreContract(t *testing.T) {
	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	defer store.Close()
	runStoreContract(t, store)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	payload := []byte(`{"widget":{"class":"x","configuration":{},"sortOrder":1}}`)
	if err := store.Set(ctx, "alice", "reportdeck.reportwidgets.dashboard", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.Close()

	reopened, err := NewFile(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "alice", "reportdeck.reportwidgets.dashboard")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !ok {
		t.Fatal("Entry should survive reopen")
	}
	if string(got) != string(payload) {
		t.Errorf("Value mismatch after reopen: got %s", got)
	}
}

func TestFileStoreRejectsNonJSON(t *testing.T) {
	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	defer store.Close()

	if err := store.Set(context.Background(), "alice", "key", []byte("not json")); err == nil {
		t.Error("Non-JSON value should be rejected")
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	payload := []byte(`{"a":1}`)
	if err := store.Set(ctx, "alice", "key", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	payload[0] = 'X'

	got, _, _ := store.Get(ctx, "alice", "key")
	if string(got) != `{"a":1}` {
		t.Errorf("Stored value should be isolated from caller's buffer, got %s", got)
	}

	got[0] = 'Y'
	again, _, _ := store.Get(ctx, "alice", "key")
	if string(again) != `{"a":1}` {
		t.Errorf("Returned value should be isolated from store, got %s", again)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.PrefsConfig{Driver: "cassandra"}, nil)
	if err == nil {
		t.Error("Unknown driver should error")
	}
}

func TestOpenDefaultsToMemory(t *testing.T) {
	store, err := Open(config.PrefsConfig{}, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := store.(*Memory); !ok {
		t.Errorf("Empty driver should select memory, got %T", store)
	}
}

func TestWithMetricsNilPassthrough(t *testing.T) {
	store := NewMemory()
	if got := WithMetrics(store, DriverMemory, nil); got != Store(store) {
		t.Error("Nil metrics should return the store unchanged")
	}
}

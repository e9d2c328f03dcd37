package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.HasChanged() {
		t.Fatalf("fresh store should not be dirty")
	}

	key := Key{Image: "centos8", Target: "rpm"}
	entry := Entry{ImageID: "sha256:abc", Tag: "pkger-centos8", DepHash: "deadbeef", Timestamp: time.Unix(1000, 0).UTC()}
	s.Update(key, entry)

	if !s.HasChanged() {
		t.Fatalf("store should be dirty after Update")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.HasChanged() {
		t.Fatalf("store should not be dirty after Save")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get(key)
	if !ok {
		t.Fatalf("entry not found after reopen")
	}
	if got.ImageID != entry.ImageID || got.DepHash != entry.DepHash {
		t.Fatalf("got %#v, want %#v", got, entry)
	}
}

func TestStoreUpdateSameValueDoesNotDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, _ := Open(path)

	key := Key{Image: "alpine", Target: "apk"}
	entry := Entry{ImageID: "sha256:1"}
	s.Update(key, entry)
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s.Update(key, entry)
	if s.HasChanged() {
		t.Fatalf("re-setting an identical entry should not mark dirty")
	}
}

func TestStoreMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.Get(Key{Image: "x", Target: "rpm"}); ok {
		t.Fatalf("expected no entries")
	}
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, _ := Open(path)
	key := Key{Image: "debian", Target: "deb"}
	s.Update(key, Entry{ImageID: "sha256:2"})
	_ = s.Save()

	s.Clear()
	if !s.HasChanged() {
		t.Fatalf("Clear should dirty a non-empty store")
	}
	if _, ok := s.Get(key); ok {
		t.Fatalf("entry should be gone after Clear")
	}
}

func TestStoreUnknownSchemaVersionStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, _ := Open(path)
	s.Update(Key{Image: "a", Target: "rpm"}, Entry{ImageID: "x"})
	_ = s.Save()

	raw := fileFormat{Version: schemaVersion + 99, Entries: s.entries}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(reopened.entries) != 0 {
		t.Fatalf("expected empty store for unrecognized schema version, got %#v", reopened.entries)
	}
}

package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// ErrState is the sentinel category for cache load/save failures (§7).
var ErrState = errors.New("state error")

// schemaVersion is bumped whenever Entry's on-disk shape changes
// incompatibly. Load ignores (rather than errors on) a version it
// doesn't recognize, discarding the stale cache and starting fresh —
// a cold cache only costs a rebuild, never correctness.
const schemaVersion = 1

// Key identifies one cached image build: the image directory name and
// the package target it was built for (an image can be reused across
// recipe versions, but not across targets, since dependency sets and
// base images differ per target).
type Key struct {
	Image  string
	Target string
}

func (k Key) String() string {
	return k.Image + "/" + k.Target
}

// Entry is the cached record for one (image, target) build.
type Entry struct {
	ImageID   string    `json:"image_id"`
	Tag       string    `json:"tag"`
	OS        string    `json:"os"`
	DepHash   string    `json:"dep_hash"`
	Deps      []string  `json:"deps"`
	Simple    bool      `json:"simple"`
	Timestamp time.Time `json:"timestamp"`
}

type fileFormat struct {
	Version int             `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Store is a process-wide handle on the on-disk cache, safe for
// concurrent use by the scheduler's build workers.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	dirty   bool
}

// Open loads path if present, or starts an empty store if it doesn't
// exist yet or carries an unrecognized schema version.
func Open(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errctx.Wrap(ErrState, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errctx.Wrapf(ErrState, "parse %s: %w", path, err)
	}
	if f.Version != schemaVersion {
		return s, nil
	}
	if f.Entries != nil {
		s.entries = f.Entries
	}
	return s, nil
}

// Get returns the cached entry for key, if any.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	return e, ok
}

// Update records a new entry for key, marking the store dirty only when
// the entry actually differs from what was cached.
func (s *Store) Update(key Key, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if old, ok := s.entries[k]; ok && entriesEqual(old, entry) {
		return
	}
	s.entries[k] = entry
	s.dirty = true
}

// entriesEqual compares two Entry values field by field. Entry carries
// a Deps slice, so it isn't comparable with ==.
func entriesEqual(a, b Entry) bool {
	return a.ImageID == b.ImageID &&
		a.Tag == b.Tag &&
		a.OS == b.OS &&
		a.DepHash == b.DepHash &&
		a.Simple == b.Simple &&
		a.Timestamp.Equal(b.Timestamp) &&
		slices.Equal(a.Deps, b.Deps)
}

// Delete drops a stale cache entry (e.g. when its image no longer exists
// in the engine), marking the store dirty if it was present.
func (s *Store) Delete(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	if _, ok := s.entries[k]; !ok {
		return
	}
	delete(s.entries, k)
	s.dirty = true
}

// Clear removes every cached entry (backing `pkger clean-cache`, §5).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return
	}
	s.entries = make(map[string]Entry)
	s.dirty = true
}

// HasChanged reports whether any Update/Delete/Clear has mutated the
// store since it was opened or last saved.
func (s *Store) HasChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save writes the store to disk if it has unsaved changes, via a
// temp-file-then-rename so a crash mid-write never corrupts the existing
// cache.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	f := fileFormat{Version: schemaVersion, Entries: s.entries}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errctx.Wrap(ErrState, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errctx.Wrap(ErrState, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return errctx.Wrap(ErrState, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errctx.Wrap(ErrState, err)
	}
	if err := tmp.Close(); err != nil {
		return errctx.Wrap(ErrState, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errctx.Wrap(ErrState, err)
	}

	s.dirty = false
	return nil
}

// Path returns the file this store loads from and saves to.
func (s *Store) Path() string {
	return s.path
}

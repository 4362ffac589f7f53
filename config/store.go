package config

import (
	"errors"
	"os"
	"sync"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Autosave rewrites the backing file after every Update.
	Autosave bool
}

// Store keeps an in-memory snapshot bound to a file. It loads the file at
// construction if it exists and, with autosave enabled, rewrites it on
// every mutation. Safe for concurrent use.
type Store struct {
	path     string
	autosave bool

	mu   sync.Mutex
	snap Snapshot
}

// NewStore binds a store to a snapshot file. A missing file yields an
// empty snapshot; any other read or parse failure is returned.
func NewStore(path string, optFns ...func(o *StoreOptions)) (*Store, error) {
	opts := StoreOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	st := &Store{path: path, autosave: opts.Autosave}

	snap, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return st, nil
	}
	st.snap = *snap
	return st, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Update applies fn to the snapshot under the store lock and, with
// autosave enabled, persists the result.
func (s *Store) Update(fn func(snap *Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	if !s.autosave {
		return nil
	}
	cp := s.copyLocked()
	return Save(s.path, &cp)
}

// Flush persists the snapshot regardless of the autosave setting.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.copyLocked()
	return Save(s.path, &cp)
}

// copyLocked deep-copies the snapshot; caller must hold the lock.
func (s *Store) copyLocked() Snapshot {
	cp := Snapshot{
		Agents: make([]AgentConfig, len(s.snap.Agents)),
		Swarms: make([]SwarmConfig, len(s.snap.Swarms)),
	}
	copy(cp.Agents, s.snap.Agents)
	for i, sw := range s.snap.Swarms {
		agents := make([]string, len(sw.Agents))
		copy(agents, sw.Agents)
		sw.Agents = agents
		cp.Swarms[i] = sw
	}
	return cp
}

// Package history persists the ordered list of task ids the user has
// monitored, across sessions. The store is the only writer of its durable
// record; persistence failures are logged and swallowed so history never
// takes the monitor down.
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const recordFile = "task_history.json"

// The task_history key namespaces the record so unrelated tooling sharing
// the state dir cannot collide with it.
type record struct {
	TaskHistory []string `json:"task_history"`
}

type Store struct {
	path string
	logf func(format string, args ...any)

	mu  sync.Mutex
	ids []string
}

// NewStore hydrates the history from stateDir. A missing or corrupt record
// yields an empty history; hydration never fails.
func NewStore(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s := &Store{
		path: filepath.Join(stateDir, recordFile),
		logf: log.Printf,
	}
	s.hydrate()
	return s, nil
}

func (s *Store) hydrate() {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logf("history: read %s: %v", s.path, err)
		}
		return
	}
	var rec record
	if err := json.Unmarshal(blob, &rec); err != nil {
		s.logf("history: corrupt record at %s, starting empty: %v", s.path, err)
		return
	}
	s.ids = rec.TaskHistory
}

// AddTask inserts id at the front, removing any prior occurrence. Blank ids
// are ignored. The durable record is rewritten on every mutation.
func (s *Store) AddTask(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.ids)+1)
	next = append(next, id)
	for _, existing := range s.ids {
		if existing != id {
			next = append(next, existing)
		}
	}
	s.ids = next
	s.persistLocked()
}

// ClearHistory empties the list and removes the durable record.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logf("history: remove %s: %v", s.path, err)
	}
}

// History returns the ordered id list, most recent first.
func (s *Store) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func (s *Store) persistLocked() {
	blob, err := json.MarshalIndent(record{TaskHistory: s.ids}, "", "  ")
	if err != nil {
		s.logf("history: marshal record: %v", err)
		return
	}
	if err := os.WriteFile(s.path, blob, 0o644); err != nil {
		s.logf("history: write %s: %v", s.path, err)
	}
}

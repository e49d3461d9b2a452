// Package memory provides Goliath's persistent memory: recent conversation
// turns fed back to the model as context, and durable key-value facts
// injected into every system prompt until explicitly forgotten.
//
// State lives in a single JSON file so it survives across sessions:
//
//	{"history": [{"role": "...", "content": "..."}, ...], "facts": {"k": "v"}}
//
// Every mutation rewrites the whole file. Memory is small and bounded by the
// history cap, so write-through is cheaper than it sounds and a crash loses
// at most the in-flight mutation.
package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/zdevelops1/goliath/pkg/types"
)

// Store is a persistent memory with conversation history and fact storage.
// One Store owns its backing file exclusively; concurrent use of the same
// path from multiple processes is not supported.
type Store struct {
	path       string
	maxHistory int

	mu   sync.Mutex
	data state
}

// state is the exact on-disk shape.
type state struct {
	History []types.Turn      `json:"history"`
	Facts   map[string]string `json:"facts"`
}

// Open loads the store at path, creating empty state when the file does not
// exist. A file that exists but cannot be read or parsed is also treated as
// empty: corrupt memory must never block task execution. The corruption is
// logged so the discard is at least visible.
func Open(path string, maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Store{
		path:       path,
		maxHistory: maxHistory,
		data:       load(path),
	}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// AddTurn appends a conversation turn, trims history to the configured
// maximum (oldest first), and persists.
func (s *Store) AddTurn(role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.History = append(s.data.History, types.Turn{Role: role, Content: content})
	if len(s.data.History) > s.maxHistory {
		s.data.History = s.data.History[len(s.data.History)-s.maxHistory:]
	}
	return s.save()
}

// History returns a copy of the conversation history, oldest first.
func (s *Store) History() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]types.Turn, len(s.data.History))
	copy(history, s.data.History)
	return history
}

// ClearHistory empties the conversation history but keeps facts.
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.History = []types.Turn{}
	return s.save()
}

// Remember stores a persistent fact, overwriting any existing value.
func (s *Store) Remember(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Facts[key] = value
	return s.save()
}

// Recall retrieves a fact by key. The second return value reports whether
// the key exists.
func (s *Store) Recall(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data.Facts[key]
	return value, ok
}

// Facts returns a copy of all stored facts.
func (s *Store) Facts() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	facts := make(map[string]string, len(s.data.Facts))
	for k, v := range s.data.Facts {
		facts[k] = v
	}
	return facts
}

// Forget removes a fact by key. Forgetting an absent key is a no-op.
func (s *Store) Forget(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data.Facts, key)
	return s.save()
}

// ClearAll resets history and facts to empty.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = emptyState()
	return s.save()
}

// Summary returns a one-line human-readable description of memory state.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fmt.Sprintf("%d conversation turns, %d stored facts",
		len(s.data.History), len(s.data.Facts))
}

// FactsAsContext renders all facts as a text block for injection into the
// system prompt. It returns the empty string when no facts are stored.
// Facts are listed in key order so the rendered block is stable.
func (s *Store) FactsAsContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data.Facts) == 0 {
		return ""
	}

	keys := make([]string, 0, len(s.data.Facts))
	for k := range s.data.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Known facts:")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("\n- %s: %s", k, s.data.Facts[k]))
	}
	return b.String()
}

// save writes the full state to disk, creating parent directories on first
// write. Callers hold s.mu. A write failure propagates: silently losing a
// fact or turn must not look like success.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("memory: failed to create directory: %w", err)
	}

	blob, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: failed to encode state: %w", err)
	}

	if err := os.WriteFile(s.path, blob, 0o644); err != nil {
		return fmt.Errorf("memory: failed to write %s: %w", s.path, err)
	}
	return nil
}

// load reads state from disk, falling back to empty state on any failure.
func load(path string) state {
	blob, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("memory: cannot read %s, starting empty: %v", path, err)
		}
		return emptyState()
	}

	var data state
	if err := json.Unmarshal(blob, &data); err != nil {
		log.Printf("memory: %s is corrupt, starting empty: %v", path, err)
		return emptyState()
	}

	// Tolerate a file missing either top-level key.
	if data.History == nil {
		data.History = []types.Turn{}
	}
	if data.Facts == nil {
		data.Facts = map[string]string{}
	}
	return data
}

func emptyState() state {
	return state{
		History: []types.Turn{},
		Facts:   map[string]string{},
	}
}

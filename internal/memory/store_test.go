package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdevelops1/goliath/pkg/types"
)

func newTestStore(t *testing.T, maxHistory int) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "memory.json"), maxHistory)
}

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	store := newTestStore(t, 20)

	assert.Empty(t, store.History())
	assert.Empty(t, store.Facts())
}

func TestOpen_CreatesParentDirectoriesOnFirstWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "memory.json")
	store := Open(path, 20)

	require.NoError(t, store.Remember("name", "GOLIATH"))

	_, err := os.Stat(path)
	assert.NoError(t, err, "memory file must exist after first write")
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := Open(path, 20)

	assert.Empty(t, store.History())
	assert.Empty(t, store.Facts())
}

func TestOpen_ToleratesMissingTopLevelKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"facts": {"name": "GOLIATH"}}`), 0o644))

	store := Open(path, 20)

	assert.Empty(t, store.History())
	value, ok := store.Recall("name")
	assert.True(t, ok)
	assert.Equal(t, "GOLIATH", value)
}

// TestRoundTrip verifies that re-opening a store against the same path after
// a "restart" yields exactly the state before the restart.
func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")

	store := Open(path, 20)
	require.NoError(t, store.AddTurn(types.RoleUser, "What is Python?"))
	require.NoError(t, store.AddTurn(types.RoleAssistant, "Python is a programming language."))
	require.NoError(t, store.Remember("name", "GOLIATH"))
	require.NoError(t, store.Remember("owner", "zdevelops1"))
	require.NoError(t, store.Forget("owner"))

	reopened := Open(path, 20)
	assert.Equal(t, store.History(), reopened.History())
	assert.Equal(t, store.Facts(), reopened.Facts())
}

func TestAddTurn_TrimsOldestBeyondMax(t *testing.T) {
	store := newTestStore(t, 4)

	for i := 0; i < 7; i++ {
		require.NoError(t, store.AddTurn(types.RoleUser, fmt.Sprintf("turn %d", i)))
	}

	history := store.History()
	require.Len(t, history, 4)
	assert.Equal(t, "turn 3", history[0].Content, "oldest turns must be dropped first")
	assert.Equal(t, "turn 6", history[3].Content)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.AddTurn(types.RoleUser, "original"))

	history := store.History()
	history[0].Content = "mutated"

	assert.Equal(t, "original", store.History()[0].Content)
}

func TestFacts_ReturnsCopy(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.Remember("k", "v"))

	facts := store.Facts()
	facts["k"] = "mutated"

	value, _ := store.Recall("k")
	assert.Equal(t, "v", value)
}

func TestRemember_OverwritesSilently(t *testing.T) {
	store := newTestStore(t, 20)

	require.NoError(t, store.Remember("k", "v1"))
	require.NoError(t, store.Remember("k", "v2"))

	value, ok := store.Recall("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", value)
	assert.Len(t, store.Facts(), 1)
}

func TestRecall_MissingKey(t *testing.T) {
	store := newTestStore(t, 20)

	_, ok := store.Recall("nope")
	assert.False(t, ok)
}

func TestForget_AbsentKeyIsNoOp(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.Remember("keep", "me"))

	require.NoError(t, store.Forget("never-existed"))

	assert.Equal(t, map[string]string{"keep": "me"}, store.Facts())
}

func TestClearHistory_PreservesFacts(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.AddTurn(types.RoleUser, "hi"))
	require.NoError(t, store.Remember("name", "GOLIATH"))

	require.NoError(t, store.ClearHistory())

	assert.Empty(t, store.History())
	assert.Equal(t, map[string]string{"name": "GOLIATH"}, store.Facts())
}

func TestClearAll(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.AddTurn(types.RoleUser, "hi"))
	require.NoError(t, store.Remember("name", "GOLIATH"))

	require.NoError(t, store.ClearAll())

	assert.Empty(t, store.History())
	assert.Empty(t, store.Facts())
}

func TestFactsAsContext(t *testing.T) {
	store := newTestStore(t, 20)

	assert.Equal(t, "", store.FactsAsContext(), "no facts must render as the empty string")

	require.NoError(t, store.Remember("name", "X"))
	rendered := store.FactsAsContext()
	assert.Contains(t, rendered, "name")
	assert.Contains(t, rendered, "X")
	assert.Contains(t, rendered, "Known facts:")
}

func TestFactsAsContext_StableKeyOrder(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.Remember("b", "2"))
	require.NoError(t, store.Remember("a", "1"))

	assert.Equal(t, "Known facts:\n- a: 1\n- b: 2", store.FactsAsContext())
}

func TestSummary(t *testing.T) {
	store := newTestStore(t, 20)
	require.NoError(t, store.AddTurn(types.RoleUser, "hi"))
	require.NoError(t, store.Remember("name", "GOLIATH"))

	assert.Equal(t, "1 conversation turns, 1 stored facts", store.Summary())
}

// TestPersistenceFormat pins the on-disk shape: exactly two top-level fields,
// history as an ordered list of {role, content} and facts as a flat mapping.
func TestPersistenceFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store := Open(path, 20)
	require.NoError(t, store.AddTurn(types.RoleUser, "hello"))
	require.NoError(t, store.Remember("name", "GOLIATH"))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blob, &raw))
	assert.Len(t, raw, 2)
	assert.Contains(t, raw, "history")
	assert.Contains(t, raw, "facts")

	var history []map[string]string
	require.NoError(t, json.Unmarshal(raw["history"], &history))
	assert.Equal(t, []map[string]string{{"role": "user", "content": "hello"}}, history)

	var facts map[string]string
	require.NoError(t, json.Unmarshal(raw["facts"], &facts))
	assert.Equal(t, map[string]string{"name": "GOLIATH"}, facts)
}

func TestSave_UnwritablePathPropagatesError(t *testing.T) {
	dir := t.TempDir()
	// A directory at the memory path makes every write fail.
	path := filepath.Join(dir, "memory.json")
	require.NoError(t, os.MkdirAll(path, 0o755))

	store := Open(path, 20)
	err := store.Remember("k", "v")
	assert.Error(t, err, "losing a fact must not look like success")
}

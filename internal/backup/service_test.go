package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMemory = `{
  "history": [
    {"role": "user", "content": "what is 6*7"},
    {"role": "assistant", "content": "42"}
  ],
  "facts": {"name": "Ada"}
}`

func writeMemoryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestService(t *testing.T, memoryPath string, verify bool) *Service {
	t.Helper()
	svc, err := NewService(Config{
		MemoryPath: memoryPath,
		Dir:        filepath.Join(t.TempDir(), "backups"),
		Verify:     verify,
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresPaths(t *testing.T) {
	_, err := NewService(Config{Dir: t.TempDir()})
	assert.ErrorContains(t, err, "memory path")

	_, err = NewService(Config{MemoryPath: "/tmp/memory.json"})
	assert.ErrorContains(t, err, "backup directory")
}

func TestNewService_AppliesDefaults(t *testing.T) {
	svc := newTestService(t, writeMemoryFile(t, validMemory), true)

	assert.Equal(t, 24*time.Hour, svc.interval)
	assert.Equal(t, RetentionPolicy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}, svc.retention)
}

func TestSnapshotNow(t *testing.T) {
	memoryPath := writeMemoryFile(t, validMemory)
	svc := newTestService(t, memoryPath, true)

	result, err := svc.SnapshotNow()
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, int64(len(validMemory)), result.Size)

	blob, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, validMemory, string(blob))
}

func TestSnapshotNow_MissingMemoryFile(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "nope.json"), false)

	_, err := svc.SnapshotNow()
	assert.ErrorContains(t, err, "memory file not found")
}

func TestSnapshotNow_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t, writeMemoryFile(t, "not json at all"), true)

	_, err := svc.SnapshotNow()
	assert.ErrorContains(t, err, "verification failed")
}

func TestSnapshotNow_NoVerifyAcceptsGarbage(t *testing.T) {
	svc := newTestService(t, writeMemoryFile(t, "not json at all"), false)

	result, err := svc.SnapshotNow()
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestList_NewestFirst(t *testing.T) {
	svc := newTestService(t, writeMemoryFile(t, validMemory), false)

	first, err := svc.SnapshotNow()
	require.NoError(t, err)
	second, err := svc.SnapshotNow()
	require.NoError(t, err)

	// ModTime drives ordering; make the gap unambiguous.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(first.Path, past, past))

	snapshots, err := svc.List()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, second.Path, snapshots[0].Path)
	assert.Equal(t, first.Path, snapshots[1].Path)
}

func TestList_IgnoresForeignFiles(t *testing.T) {
	svc := newTestService(t, writeMemoryFile(t, validMemory), false)
	require.NoError(t, os.WriteFile(filepath.Join(svc.dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(svc.dir, "other.json"), []byte("{}"), 0o644))

	_, err := svc.SnapshotNow()
	require.NoError(t, err)

	snapshots, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestRestore(t *testing.T) {
	memoryPath := writeMemoryFile(t, validMemory)
	svc := newTestService(t, memoryPath, true)

	result, err := svc.SnapshotNow()
	require.NoError(t, err)

	// Wreck the live memory file, then restore from the snapshot.
	require.NoError(t, os.WriteFile(memoryPath, []byte("corrupted"), 0o644))
	require.NoError(t, svc.Restore(result.Path))

	blob, err := os.ReadFile(memoryPath)
	require.NoError(t, err)
	assert.Equal(t, validMemory, string(blob))

	// The pre-restore copy is cleaned up on success.
	_, err = os.Stat(memoryPath + ".pre-restore")
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_MissingMemoryFile(t *testing.T) {
	memoryPath := writeMemoryFile(t, validMemory)
	svc := newTestService(t, memoryPath, true)

	result, err := svc.SnapshotNow()
	require.NoError(t, err)
	require.NoError(t, os.Remove(memoryPath))

	require.NoError(t, svc.Restore(result.Path))
	blob, err := os.ReadFile(memoryPath)
	require.NoError(t, err)
	assert.Equal(t, validMemory, string(blob))
}

func TestRestore_RejectsUnparseableSnapshot(t *testing.T) {
	memoryPath := writeMemoryFile(t, validMemory)
	svc := newTestService(t, memoryPath, true)

	bad := filepath.Join(svc.dir, "goliath-memory-bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("}{"), 0o644))

	err := svc.Restore(bad)
	assert.ErrorContains(t, err, "unparseable snapshot")

	// The live memory file is untouched.
	blob, err := os.ReadFile(memoryPath)
	require.NoError(t, err)
	assert.Equal(t, validMemory, string(blob))
}

func TestRestore_MissingSnapshot(t *testing.T) {
	svc := newTestService(t, writeMemoryFile(t, validMemory), true)
	err := svc.Restore(filepath.Join(svc.dir, "goliath-memory-nope.json"))
	assert.ErrorContains(t, err, "snapshot not found")
}

func TestApplyRetention_TrimsHourlyTier(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	// Five recent snapshots; keep only the newest two.
	var paths []string
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, filepath.Base(
			"goliath-memory-"+now.Add(-time.Duration(i)*time.Minute).Format("20060102-150405.000000")+".json"))
		require.NoError(t, os.WriteFile(path, []byte(validMemory), 0o644))
		ts := now.Add(-time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, ts, ts))
		paths = append(paths, path)
	}

	policy := RetentionPolicy{Hourly: 2, Daily: 7, Weekly: 4, Monthly: 12}
	require.NoError(t, applyRetention(dir, policy))

	snapshots, err := listSnapshots(dir)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, paths[0], snapshots[0].Path)
	assert.Equal(t, paths[1], snapshots[1].Path)
}

func TestApplyRetention_DeletesAncientSnapshots(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "goliath-memory-20200101-000000.000000.json")
	require.NoError(t, os.WriteFile(path, []byte(validMemory), 0o644))
	ancient := time.Now().Add(-2 * 365 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, ancient, ancient))

	require.NoError(t, applyRetention(dir, RetentionPolicy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}))

	snapshots, err := listSnapshots(dir)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

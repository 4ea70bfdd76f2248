package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLock_LockUnlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.db")
	lock := NewStoreLock(path)

	require.NoError(t, lock.Lock())
	_, err := os.Stat(lock.Path())
	assert.NoError(t, err, "lock file should exist once held")
	assert.True(t, lock.IsLocked())

	require.NoError(t, lock.Unlock())
	assert.False(t, lock.IsLocked())
}

func TestStoreLock_UnlockWithoutLockIsNoop(t *testing.T) {
	dir := t.TempDir()
	lock := NewStoreLock(filepath.Join(dir, "snapshot.db"))
	assert.NoError(t, lock.Unlock())
}

func TestStoreLock_DoubleUnlockIsNoop(t *testing.T) {
	dir := t.TempDir()
	lock := NewStoreLock(filepath.Join(dir, "snapshot.db"))
	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
	assert.NoError(t, lock.Unlock())
}

func TestStoreLock_TryLockFailsWhileHeldElsewhere(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.db")
	holder := NewStoreLock(path)
	require.NoError(t, holder.Lock())
	defer holder.Unlock()

	contender := NewStoreLock(path)
	acquired, err := contender.TryLock()
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestStoreLock_LockTimeoutFailsFast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.db")
	holder := NewStoreLock(path)
	require.NoError(t, holder.Lock())
	defer holder.Unlock()

	contender := NewStoreLock(path)
	err := contender.LockTimeout(50 * time.Millisecond)
	require.Error(t, err)
}

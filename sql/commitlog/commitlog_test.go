package commitlog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestCommitSequence(t *testing.T) {
	log := openTestLog(t)

	_, ok, err := log.Latest()
	require.NoError(t, err)
	assert.False(t, ok, "fresh log should be empty")

	committed, err := log.Commit(1, []byte("batch-1"))
	require.NoError(t, err)
	assert.True(t, committed)

	committed, err = log.Commit(5, []byte("batch-5"))
	require.NoError(t, err)
	assert.True(t, committed, "identifiers may skip forward")

	latest, ok, err := log.Latest()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), latest)
}

func TestStaleRedeliveryIsNoop(t *testing.T) {
	log := openTestLog(t)

	committed, err := log.Commit(3, []byte("first"))
	require.NoError(t, err)
	require.True(t, committed)

	// Re-delivering the same identifier is acknowledged without error
	committed, err = log.Commit(3, []byte("duplicate"))
	require.NoError(t, err)
	assert.False(t, committed)

	// An identifier below the latest is equally a no-op, even if never seen
	committed, err = log.Commit(2, []byte("late straggler"))
	require.NoError(t, err)
	assert.False(t, committed)

	// The original payload is untouched
	payload, err := log.Payload(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), payload)

	ok, err := log.Committed(2)
	require.NoError(t, err)
	assert.False(t, ok, "rejected identifiers are not recorded")
}

func TestCommittedLookup(t *testing.T) {
	log := openTestLog(t)

	_, err := log.Commit(1, nil)
	require.NoError(t, err)
	_, err = log.Commit(2, nil)
	require.NoError(t, err)

	ok, err := log.Committed(1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = log.Committed(9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir, err := os.MkdirTemp("", "commitlog-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	log, err := Open(dir)
	require.NoError(t, err)
	_, err = log.Commit(7, []byte("durable"))
	require.NoError(t, err)
	require.NoError(t, log.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	latest, ok, err := reopened.Latest()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), latest)

	committed, err := reopened.Commit(7, []byte("again"))
	require.NoError(t, err)
	assert.False(t, committed, "re-delivery must stay a no-op across restarts")
}

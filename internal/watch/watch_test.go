package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct{ n atomic.Int32 }

func (c *counter) OnDataChanged() { c.n.Add(1) }

func TestWatcherNotifiesOnDatabaseWrite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nycschools.db")
	c := &counter{}
	w, err := New(dbPath, c, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(dbPath, []byte("x"), 0o600))
	require.Eventually(t, func() bool { return c.n.Load() > 0 }, 2*time.Second, 10*time.Millisecond)

	before := c.n.Load()
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("y"), 0o600))
	require.Eventually(t, func() bool { return c.n.Load() > before }, 2*time.Second, 10*time.Millisecond)

	events, _ := w.Stats()
	assert.GreaterOrEqual(t, events, uint64(2))
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	c := &counter{}
	w, err := New(filepath.Join(dir, "nycschools.db"), c, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("a: 1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nycschools.log"), []byte("line"), 0o600))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Stop())
	assert.Zero(t, c.n.Load())
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	c := &counter{}
	w, err := New(filepath.Join(t.TempDir(), "x.db"), c, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx), "second Start is a no-op")
	cancel()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "x.db"), &counter{}, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

func TestNewRejectsNilNotifier(t *testing.T) {
	_, err := New("x.db", nil, nil)
	assert.Error(t, err)
}

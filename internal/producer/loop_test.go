package producer

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/store"
)

// failingAppender forwards to a collection until failAfter appends, then
// reports the session as unreachable.
type failingAppender struct {
	target    *store.Collection
	failAfter int32
	calls     atomic.Int32
}

func (f *failingAppender) AppendFunc(build func(int) model.Item) (model.Item, error) {
	if f.calls.Add(1) > f.failAfter {
		return model.Item{}, store.ErrUnreachable
	}
	return f.target.AppendFunc(build)
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not stop")
	}
}

func TestNew_Defaults(t *testing.T) {
	l := New(store.NewCollection(), Options{})
	assert.Equal(t, DefaultLatency, l.Period())

	l = New(store.NewCollection(), Options{Latency: -time.Second, Interval: 5 * time.Millisecond})
	assert.Equal(t, 5*time.Millisecond, l.Period())
	assert.Nil(t, l.Done())
}

func TestAddItem(t *testing.T) {
	c := store.NewCollection()
	defer c.Close()

	item, err := AddItem(c)
	require.NoError(t, err)
	assert.Equal(t, model.Synthetic(0), item)

	item, err = AddItem(c)
	require.NoError(t, err)
	assert.Equal(t, "Item 1", item.Title)
	assert.Equal(t, model.PlaceholderSubtitle, item.Subtitle)
}

func TestLoop_ProducesUntilCancelled(t *testing.T) {
	c := store.NewCollection()
	defer c.Close()

	var produced atomic.Int32
	l := New(c, Options{
		Latency:  time.Millisecond,
		OnAppend: func(model.Item) { produced.Add(1) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return c.Len() >= 5 }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, c.Len(), l.Appended())
	assert.Equal(t, int32(c.Len()), produced.Load())
	for i, item := range c.Snapshot().Items() {
		assert.Equal(t, model.Synthetic(i), item)
	}
}

func TestLoop_StopsOnAppendFailure(t *testing.T) {
	c := store.NewCollection()
	var buf bytes.Buffer
	l := New(c, Options{Latency: time.Millisecond, Logger: testLogger(&buf)})

	l.Start(context.Background())
	require.Eventually(t, func() bool { return c.Len() >= 2 }, 5*time.Second, time.Millisecond)

	require.NoError(t, c.Close())
	waitDone(t, l.Done())

	assert.ErrorIs(t, l.Err(), store.ErrUnreachable)
	assert.False(t, l.Running())
	assert.Contains(t, buf.String(), "producer stopped")

	// No appends after termination.
	n := c.Len()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, c.Len())
}

func TestLoop_FailureContainment(t *testing.T) {
	c := store.NewCollection()
	defer c.Close()

	fa := &failingAppender{target: c, failAfter: 3}
	l := New(fa, Options{Latency: time.Millisecond, Logger: testLogger(&bytes.Buffer{})})

	err := l.Run(context.Background())
	require.ErrorIs(t, err, store.ErrUnreachable)

	// Terminated within one iteration of the failure.
	assert.Equal(t, int32(4), fa.calls.Load())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, l.Appended())

	// The UI action still works.
	item, err := AddItem(c)
	require.NoError(t, err)
	assert.Equal(t, "Item 3", item.Title)
	assert.Equal(t, 4, c.Len())
}

func TestLoop_Trigger(t *testing.T) {
	c := store.NewCollection()
	defer c.Close()

	// Long period so only triggers produce.
	l := New(c, Options{Latency: time.Hour})
	l.Start(context.Background())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Trigger())
	}
	require.Eventually(t, func() bool { return c.Len() == 3 }, 5*time.Second, time.Millisecond)
	assert.True(t, l.Running())
}

func TestLoop_StartStop(t *testing.T) {
	c := store.NewCollection()
	defer c.Close()

	l := New(c, Options{Latency: time.Millisecond})
	l.Stop() // not started

	l.Start(context.Background())
	l.Start(context.Background()) // second start is a no-op
	require.Eventually(t, func() bool { return c.Len() >= 1 }, 5*time.Second, time.Millisecond)

	l.Stop()
	waitDone(t, l.Done())
	assert.NoError(t, l.Err())
	assert.False(t, l.Running())

	n := c.Len()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, c.Len())
}

func TestLoop_ConcurrentWithUserAction(t *testing.T) {
	c := store.NewCollection()
	defer c.Close()

	const loops = 3
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	producers := make([]*Loop, loops)
	for i := range producers {
		producers[i] = New(c, Options{Latency: time.Millisecond})
		wg.Add(1)
		go func(l *Loop) {
			defer wg.Done()
			assert.NoError(t, l.Run(ctx))
		}(producers[i])
	}

	userAdds := 0
	for i := 0; i < 20; i++ {
		_, err := AddItem(c)
		require.NoError(t, err)
		userAdds++
	}

	require.Eventually(t, func() bool { return c.Len() >= 50 }, 5*time.Second, time.Millisecond)
	cancel()
	wg.Wait()

	total := userAdds
	for _, l := range producers {
		total += l.Appended()
	}
	require.Equal(t, total, c.Len())

	seen := make(map[string]bool)
	for i, item := range c.Snapshot().Items() {
		assert.Equal(t, model.Synthetic(i), item)
		assert.False(t, seen[item.Title], "duplicate %s", item.Title)
		seen[item.Title] = true
	}
}

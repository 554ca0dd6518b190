package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popfeed/internal/model"
)

func TestNewCollection(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	assert.Equal(t, 0, c.Len())
	assert.Len(t, c.SessionID(), 26)
	assert.False(t, c.Closed())
}

func TestCollection_AppendScenario(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	require.NoError(t, c.Append(model.Item{Title: "Item 0", Subtitle: "Subtitle"}))
	require.NoError(t, c.Append(model.Item{Title: "Item 1", Subtitle: "Subtitle"}))

	assert.Equal(t, 2, c.Len())

	first, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Item 0", first.Title)

	second, err := c.Get(1)
	require.NoError(t, err)
	assert.NotEqual(t, "Subtitle", second.Title)
	assert.Equal(t, "Item 1", second.Title)
	assert.Equal(t, "Subtitle", second.Subtitle)
}

func TestCollection_AppendOnlyMonotonicity(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	var want []model.Item
	for n := 0; n < 50; n++ {
		item := model.NewItem("title", string(rune('a'+n%26)))
		want = append(want, item)
		require.NoError(t, c.Append(item))
		require.Equal(t, n+1, c.Len())

		// Every earlier item is unchanged.
		for i, w := range want {
			got, err := c.Get(i)
			require.NoError(t, err)
			require.Equal(t, w, got)
		}
	}
}

func TestCollection_Get_OutOfRange(t *testing.T) {
	c := NewCollection()
	defer c.Close()
	require.NoError(t, c.Append(model.Synthetic(0)))

	for _, idx := range []int{1, 2, -1} {
		_, err := c.Get(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}
}

func TestCollection_AppendFunc_UsesLengthAtConstruction(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	for i := 0; i < 3; i++ {
		item, err := c.AppendFunc(model.Synthetic)
		require.NoError(t, err)
		assert.Equal(t, model.Synthetic(i), item)
	}
}

func TestCollection_Snapshot_IsImmutable(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	for i := 0; i < 3; i++ {
		_, err := c.AppendFunc(model.Synthetic)
		require.NoError(t, err)
	}

	snap := c.Snapshot()
	for i := 0; i < 10; i++ {
		_, err := c.AppendFunc(model.Synthetic)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, snap.Len())
	_, err := snap.Get(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	items := snap.Items()
	items[0].Title = "mutated"
	got, err := snap.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Item 0", got.Title)

	last, ok := snap.Last()
	require.True(t, ok)
	assert.Equal(t, "Item 2", last.Title)

	_, ok = Snapshot{}.Last()
	assert.False(t, ok)
}

func TestCollection_Subscribe(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	var first, second []int
	subA := c.Subscribe(func(s Snapshot) { first = append(first, s.Len()) })
	subB := c.Subscribe(func(s Snapshot) {
		// Observers see the committed state.
		assert.Equal(t, s.Len(), c.Len())
		second = append(second, s.Len())
	})
	assert.Equal(t, 2, c.SubscriberCount())

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Append(model.Synthetic(i)))
	}
	assert.Equal(t, []int{1, 2, 3}, first)
	assert.Equal(t, []int{1, 2, 3}, second)

	subA.Cancel()
	subA.Cancel()
	require.NoError(t, c.Append(model.Synthetic(3)))
	assert.Equal(t, []int{1, 2, 3}, first)
	assert.Equal(t, []int{1, 2, 3, 4}, second)

	subB.Cancel()
	assert.Equal(t, 0, c.SubscriberCount())
}

func TestCollection_ConcurrentAppends(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	var (
		mu      sync.Mutex
		lengths []int
	)
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		lengths = append(lengths, s.Len())
		mu.Unlock()
	})

	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := c.AppendFunc(model.Synthetic)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	total := writers * perWriter
	require.Equal(t, total, c.Len())

	// Each title appears exactly once, in serial order.
	seen := make(map[string]bool, total)
	for i, item := range c.Snapshot().Items() {
		assert.Equal(t, model.Synthetic(i), item)
		assert.False(t, seen[item.Title])
		seen[item.Title] = true
	}

	// One notification per append, delivered in commit order.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, lengths, total)
	for i, n := range lengths {
		assert.Equal(t, i+1, n)
	}
}

func TestCollection_AppendFromObserver(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	var lengths []int
	c.Subscribe(func(s Snapshot) {
		lengths = append(lengths, s.Len())
		if s.Len() == 1 {
			_, err := c.AppendFunc(model.Synthetic)
			assert.NoError(t, err)
			// Queued until this notification completes.
			assert.Equal(t, []int{1}, lengths)
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.AppendFunc(model.Synthetic)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append from observer never returned")
	}

	assert.Equal(t, []int{1, 2}, lengths)
	assert.Equal(t, 2, c.Len())
}

func TestCollection_ObserverPanicReleasesDelivery(t *testing.T) {
	c := NewCollection()
	defer c.Close()

	var lengths []int
	c.Subscribe(func(s Snapshot) {
		lengths = append(lengths, s.Len())
		if s.Len() == 1 {
			panic("observer failed")
		}
	})

	assert.Panics(t, func() { _ = c.Append(model.Synthetic(0)) })
	require.NoError(t, c.Append(model.Synthetic(1)))
	assert.Equal(t, []int{1, 2}, lengths)
}

func TestCollection_Close(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Append(model.Synthetic(0)))

	notified := 0
	c.Subscribe(func(Snapshot) { notified++ })

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, c.Closed())

	err := c.Append(model.Synthetic(1))
	assert.ErrorIs(t, err, ErrUnreachable)
	_, err = c.AppendFunc(model.Synthetic)
	assert.ErrorIs(t, err, ErrUnreachable)

	assert.Equal(t, 0, notified)
	assert.Equal(t, 1, c.Len())
	item, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Item 0", item.Title)
}

func TestStoreError(t *testing.T) {
	assert.Equal(t, "collection is no longer reachable", ErrUnreachable.Error())
	assert.Equal(t, "index out of range", ErrIndexOutOfRange.Error())
}

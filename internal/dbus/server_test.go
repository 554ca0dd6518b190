package dbus

import (
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
)

type emitted struct {
	path dbus.ObjectPath
	name string
	body []interface{}
}

type fakeEmitter struct {
	mu    sync.Mutex
	calls []emitted
	err   error
}

func (f *fakeEmitter) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emitted{path: path, name: name, body: values})
	return f.err
}

func (f *fakeEmitter) signals(t *testing.T) []ItemAdded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]ItemAdded, 0, len(f.calls))
	for _, c := range f.calls {
		assert.Equal(t, Path, c.path)
		e, err := ParseItemAdded(&dbus.Signal{Path: c.path, Name: c.name, Body: c.body})
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestFeedServer_AddItem(t *testing.T) {
	coll := store.NewCollection()
	s := NewFeedServer(coll, nil)

	title, dErr := s.AddItem()
	require.Nil(t, dErr)
	assert.Equal(t, "Item 0", title)

	title, dErr = s.AddItem()
	require.Nil(t, dErr)
	assert.Equal(t, "Item 1", title)

	count, dErr := s.Count()
	require.Nil(t, dErr)
	assert.Equal(t, uint32(2), count)
}

func TestFeedServer_AddItemAfterClose(t *testing.T) {
	coll := store.NewCollection()
	require.NoError(t, coll.Close())
	s := NewFeedServer(coll, nil)

	_, dErr := s.AddItem()
	require.NotNil(t, dErr)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", dErr.Name)
}

func TestFeedServer_Trigger(t *testing.T) {
	s := NewFeedServer(store.NewCollection(), nil)

	accepted, dErr := s.Trigger()
	require.Nil(t, dErr)
	assert.False(t, accepted, "no producer attached")

	calls := 0
	s.SetTriggerHandler(func() bool {
		calls++
		return true
	})
	accepted, dErr = s.Trigger()
	require.Nil(t, dErr)
	assert.True(t, accepted)
	assert.Equal(t, 1, calls)
}

func TestFeedServer_TriggerDrivesProducer(t *testing.T) {
	coll := store.NewCollection()
	loop := producer.New(coll, producer.Options{Latency: 1 << 40})
	s := NewFeedServer(coll, nil)
	s.SetTriggerHandler(loop.Trigger)

	added := make(chan struct{}, 1)
	sub := coll.Subscribe(func(store.Snapshot) { added <- struct{}{} })
	defer sub.Cancel()

	loop.Start(t.Context())
	defer loop.Stop()

	accepted, dErr := s.Trigger()
	require.Nil(t, dErr)
	require.True(t, accepted)

	<-added
	assert.Equal(t, 1, coll.Len())
}

func TestFeedServer_GetSession(t *testing.T) {
	coll := store.NewCollection()
	s := NewFeedServer(coll, nil)

	session, dErr := s.GetSession()
	require.Nil(t, dErr)
	assert.Equal(t, coll.SessionID(), session)
}

func TestFeedServer_AnnouncesAppendsInOrder(t *testing.T) {
	coll := store.NewCollection()
	// Existing items are not announced.
	require.NoError(t, coll.Append(model.NewItem("old", "")))

	s := NewFeedServer(coll, nil)
	em := &fakeEmitter{}
	s.attach(em)
	defer func() { _ = s.Stop() }()

	for range 3 {
		_, dErr := s.AddItem()
		require.Nil(t, dErr)
	}

	got := em.signals(t)
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, i+1, e.Index)
		assert.Equal(t, model.Synthetic(i+1), e.Item)
		assert.Equal(t, coll.SessionID(), e.Session)
	}
}

func TestFeedServer_StopEndsAnnouncements(t *testing.T) {
	coll := store.NewCollection()
	s := NewFeedServer(coll, nil)
	em := &fakeEmitter{}
	s.attach(em)

	require.NoError(t, coll.Append(model.Synthetic(0)))
	require.NoError(t, s.Stop())
	require.NoError(t, coll.Append(model.Synthetic(1)))

	assert.Len(t, em.signals(t), 1)
	assert.Error(t, s.EmitItemAdded(ItemAdded{}))
	assert.NoError(t, s.Stop())
}

func TestFeedServer_EmitFailureIsLogged(t *testing.T) {
	coll := store.NewCollection()
	s := NewFeedServer(coll, nil)
	em := &fakeEmitter{err: errors.New("bus gone")}
	s.attach(em)
	defer func() { _ = s.Stop() }()

	// The append itself still succeeds.
	_, dErr := s.AddItem()
	require.Nil(t, dErr)
	assert.Equal(t, 1, coll.Len())

	err := s.EmitItemAdded(ItemAdded{Item: model.Synthetic(0)})
	assert.ErrorContains(t, err, "bus gone")
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/store"
)

func TestProduce(t *testing.T) {
	cfg = config.DefaultConfig()
	dumpOpts.latency = time.Millisecond
	dumpOpts.interval = 0
	t.Cleanup(func() { dumpOpts.latency = 0 })

	coll := store.NewCollection()
	snap, err := produce(t.Context(), coll, 3)
	require.NoError(t, err)

	assert.Equal(t, []model.Item{
		model.Synthetic(0),
		model.Synthetic(1),
		model.Synthetic(2),
	}, snap.Items())
}

func TestProduce_Zero(t *testing.T) {
	cfg = config.DefaultConfig()

	snap, err := produce(t.Context(), store.NewCollection(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestProduce_ClosedCollection(t *testing.T) {
	cfg = config.DefaultConfig()
	dumpOpts.latency = time.Millisecond
	t.Cleanup(func() { dumpOpts.latency = 0 })

	coll := store.NewCollection()
	require.NoError(t, coll.Close())

	_, err := produce(t.Context(), coll, 2)
	require.ErrorIs(t, err, store.ErrUnreachable)
}

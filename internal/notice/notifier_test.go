package notice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []Notice
	err  error
}

func (f *fakeSender) Send(n Notice) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestNotifier(s Sender) (*Notifier, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n := NewNotifier(s, nil)
	n.now = func() time.Time { return now }
	return n, &now
}

func TestNotifier_RateLimitsPerKey(t *testing.T) {
	sender := &fakeSender{}
	n, now := newTestNotifier(sender)

	assert.True(t, n.Notify("config", Notice{Summary: "a"}))
	assert.False(t, n.Notify("config", Notice{Summary: "b"}))
	assert.True(t, n.Notify("theme", Notice{Summary: "c"}))

	*now = now.Add(DefaultMinInterval)
	assert.True(t, n.Notify("config", Notice{Summary: "d"}))

	require.Len(t, sender.sent, 3)
	assert.Equal(t, "d", sender.sent[2].Summary)
}

func TestNotifier_Disabled(t *testing.T) {
	sender := &fakeSender{}
	n, _ := newTestNotifier(sender)
	n.SetEnabled(false)

	assert.False(t, n.Notify("config", Notice{Summary: "a"}))
	assert.Empty(t, sender.sent)
}

func TestNotifier_MinInterval(t *testing.T) {
	sender := &fakeSender{}
	n, now := newTestNotifier(sender)
	n.SetMinInterval(time.Second)

	n.Notify("k", Notice{})
	*now = now.Add(time.Second)
	assert.True(t, n.Notify("k", Notice{}))
}

func TestNotifier_SenderError(t *testing.T) {
	n, _ := newTestNotifier(&fakeSender{err: errors.New("no daemon")})
	assert.False(t, n.Notify("k", Notice{Summary: "a"}))
}

func TestNotifier_NilSenderLogs(t *testing.T) {
	n, _ := newTestNotifier(nil)
	assert.True(t, n.Notify("k", Notice{Summary: "a"}))
}

func TestNotifier_ProducerStopped(t *testing.T) {
	sender := &fakeSender{}
	n, _ := newTestNotifier(sender)

	n.ProducerStopped(errors.New("append item: collection unreachable"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, LevelError, sender.sent[0].Level)
	assert.Equal(t, "append item: collection unreachable", sender.sent[0].Body)
}

func TestNotifier_ConfigShareKey(t *testing.T) {
	sender := &fakeSender{}
	n, _ := newTestNotifier(sender)

	n.ConfigError(errors.New("bad anchor"))
	n.ConfigReloaded()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, LevelWarning, sender.sent[0].Level)
}

func TestHintsFor(t *testing.T) {
	assert.Equal(t, byte(0), hintsFor(LevelInfo)["urgency"].Value())
	assert.Equal(t, byte(1), hintsFor(LevelWarning)["urgency"].Value())
	assert.Equal(t, byte(2), hintsFor(LevelError)["urgency"].Value())
	assert.Equal(t, true, hintsFor(LevelInfo)["transient"].Value())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(9).String())
}

package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/store"
)

// DefaultMinGap is the shortest time between two chimes.
const DefaultMinGap = 250 * time.Millisecond

// Chime plays a sound when the collection grows. Bursts of appends closer
// together than the minimum gap produce a single chime.
type Chime struct {
	mu     sync.Mutex
	logger *slog.Logger
	player *Player
	play   func(path string) error
	now    func() time.Time

	enabled bool
	sound   string
	minGap  time.Duration

	seen   int
	last   time.Time
	played int

	sub *store.Subscription
}

// NewChime creates a chime configured from cfg.
func NewChime(cfg config.AudioConfig, logger *slog.Logger) *Chime {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	c := &Chime{
		logger: logger,
		player: player,
		play:   player.Play,
		now:    time.Now,
		minGap: DefaultMinGap,
	}
	c.ApplyConfig(cfg)
	return c
}

// Attach subscribes the chime to coll. Items already present are not
// announced.
func (c *Chime) Attach(coll *store.Collection) {
	c.mu.Lock()
	c.seen = coll.Len()
	enabled, sound := c.enabled, c.sound
	c.mu.Unlock()

	if enabled {
		if err := c.player.Preload(sound); err != nil {
			c.logger.Warn("failed to preload chime", "sound", sound, "error", err)
		}
	}

	sub := coll.Subscribe(c.OnCollectionChanged)

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()
}

// OnCollectionChanged plays the chime if snap holds new items.
func (c *Chime) OnCollectionChanged(snap store.Snapshot) {
	c.mu.Lock()
	if snap.Len() <= c.seen {
		c.mu.Unlock()
		return
	}
	c.seen = snap.Len()

	now := c.now()
	if !c.enabled || (!c.last.IsZero() && now.Sub(c.last) < c.minGap) {
		c.mu.Unlock()
		return
	}
	c.last = now
	c.played++
	play, sound := c.play, c.sound
	c.mu.Unlock()

	if err := play(sound); err != nil {
		c.logger.Debug("chime failed", "sound", sound, "error", err)
	}
}

// ApplyConfig updates the chime from a (re)loaded configuration.
func (c *Chime) ApplyConfig(cfg config.AudioConfig) {
	c.mu.Lock()
	old := c.sound
	c.enabled = cfg.Enabled
	c.sound = cfg.Sound
	c.mu.Unlock()

	c.player.SetVolume(float64(cfg.Volume) / 100.0)
	// The file may have been replaced even if the path is unchanged.
	c.player.InvalidateCache(old)
	c.player.InvalidateCache(cfg.Sound)

	c.logger.Debug("chime configured", "enabled", cfg.Enabled, "sound", cfg.Sound, "volume", cfg.Volume)
}

// SetMinGap sets the shortest time between two chimes.
func (c *Chime) SetMinGap(gap time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minGap = gap
}

// Played returns how many chimes have been started.
func (c *Chime) Played() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played
}

// Stop unsubscribes and releases the audio device.
func (c *Chime) Stop() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	sub.Cancel()
	c.player.Close()
}

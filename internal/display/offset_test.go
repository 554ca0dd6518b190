package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/popfeed/internal/config"
)

func TestDefaultOffset(t *testing.T) {
	assert.Equal(t, ViewOffset{AtEnd: true}, defaultOffset(config.AnchorBottom))
	assert.Equal(t, ViewOffset{}, defaultOffset(config.AnchorTop))
}

func TestOffsetFromAdjustment(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		upper float64
		page  float64
		want  ViewOffset
	}{
		{"content fits", 0, 300, 600, ViewOffset{Value: 0}},
		{"at bottom", 400, 1000, 600, ViewOffset{Value: 400, AtEnd: true}},
		{"within slack", 397, 1000, 600, ViewOffset{Value: 397, AtEnd: true}},
		{"scrolled up", 120, 1000, 600, ViewOffset{Value: 120}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, offsetFromAdjustment(tt.value, tt.upper, tt.page))
		})
	}
}

func TestTargetValue(t *testing.T) {
	tests := []struct {
		name  string
		off   ViewOffset
		upper float64
		page  float64
		want  float64
	}{
		{"follow grows with content", ViewOffset{AtEnd: true}, 1200, 600, 600},
		{"follow short content", ViewOffset{AtEnd: true}, 300, 600, 0},
		{"kept position", ViewOffset{Value: 120}, 1200, 600, 120},
		{"clamped to end", ViewOffset{Value: 900}, 1200, 600, 600},
		{"clamped to start", ViewOffset{Value: -5}, 1200, 600, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetValue(tt.off, tt.upper, tt.page))
		})
	}
}

func TestScrollPositionSurvivesGrowth(t *testing.T) {
	// User scrolled away from the end; more content arrives below.
	off := offsetFromAdjustment(200, 1000, 600)
	assert.False(t, off.AtEnd)
	assert.Equal(t, 200.0, targetValue(off, 1600, 600))

	// User at the end keeps following.
	off = offsetFromAdjustment(400, 1000, 600)
	assert.Equal(t, 1000.0, targetValue(off, 1600, 600))
}

func TestThemeFor(t *testing.T) {
	assert.Equal(t, "default", ThemeFor("default", true))
	assert.Equal(t, "light", ThemeFor("default", false))
	assert.Equal(t, "default", ThemeFor("", true))
	assert.Equal(t, "light", ThemeFor("", false))
	assert.Equal(t, "mine", ThemeFor("mine", false))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "0 items", statusText(0, ""))
	assert.Equal(t, "1 item", statusText(1, ""))
	assert.Equal(t, "12,345 items · producer idle", statusText(12345, "producer idle"))
}

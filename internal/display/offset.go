package display

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/theme"
)

// endSlack is how close to the bottom, in pixels, still counts as following.
const endSlack = 4.0

// ViewOffset is the GTK host's scroll offset.
type ViewOffset struct {
	Value float64 // Vertical adjustment value in pixels
	AtEnd bool    // Pinned to the newest item
}

// defaultOffset returns the offset a fresh window starts with.
func defaultOffset(anchor config.Anchor) ViewOffset {
	if anchor == config.AnchorTop {
		return ViewOffset{}
	}
	return ViewOffset{AtEnd: true}
}

// offsetFromAdjustment records where the user scrolled to.
func offsetFromAdjustment(value, upper, page float64) ViewOffset {
	maxValue := math.Max(upper-page, 0)
	return ViewOffset{Value: value, AtEnd: maxValue > 0 && value >= maxValue-endSlack}
}

// targetValue converts an offset back to an adjustment value for the
// current content height.
func targetValue(off ViewOffset, upper, page float64) float64 {
	maxValue := math.Max(upper-page, 0)
	if off.AtEnd {
		return maxValue
	}
	return math.Min(math.Max(off.Value, 0), maxValue)
}

// ThemeFor picks the CSS theme. The bundled default is dark, so a light
// desktop gets the light variant unless a theme was chosen explicitly.
func ThemeFor(name string, dark bool) string {
	if (name == "" || name == theme.DefaultThemeName) && !dark {
		return "light"
	}
	if name == "" {
		return theme.DefaultThemeName
	}
	return name
}

// statusText summarizes the list for the status label.
func statusText(count int, producer string) string {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	s := humanize.Comma(int64(count)) + " " + noun
	if producer != "" {
		s += " · " + producer
	}
	return s
}

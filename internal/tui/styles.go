package tui

import (
	"github.com/charmbracelet/lipgloss"
	reflowtruncate "github.com/muesli/reflow/truncate"

	"github.com/jmylchreest/popfeed/internal/model"
)

// cardHeight is the number of terminal lines one rendered item occupies:
// a rounded border around a title line and a subtitle line.
const cardHeight = 4

// Styles holds the lipgloss styles used by the list.
type Styles struct {
	Header    lipgloss.Style
	Card      lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Muted     lipgloss.Style
	Key       lipgloss.Style
}

// NewStyles builds the styles for the given card background colour.
func NewStyles(accent string) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(accent)).
			Background(lipgloss.Color(accent)).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		StatusErr: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
	}
}

// cardRenderer turns items into card strings. It is shared by pointer
// between model copies so width and colour changes apply to every window.
type cardRenderer struct {
	styles Styles
	width  int
}

// render draws one item as a card. The output always spans cardHeight lines.
func (r *cardRenderer) render(item model.Item) string {
	inner := r.width - r.styles.Card.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	title := r.styles.Title.Render(truncate(item.Title, inner))
	subtitle := r.styles.Subtitle.Render(truncate(item.Subtitle, inner))

	return r.styles.Card.
		Width(inner + r.styles.Card.GetHorizontalPadding()).
		Render(title + "\n" + subtitle)
}

// truncate shortens s to at most maxWidth terminal cells, marking the cut
// with an ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || lipgloss.Width(s) <= maxWidth {
		return s
	}
	return reflowtruncate.StringWithTail(s, uint(maxWidth), "…")
}

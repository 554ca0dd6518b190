// Package output provides output formatters for collection items.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/popfeed/internal/model"
)

// Formatter formats items for output.
type Formatter interface {
	// Format writes formatted items to the writer.
	Format(w io.Writer, items []model.Item) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatTable FormatType = "table"
)

// FormatTypes lists every supported format.
var FormatTypes = []FormatType{FormatDmenu, FormatJSON, FormatYAML, FormatPlain, FormatTable}

// ParseFormatType validates a user-supplied format name.
func ParseFormatType(s string) (FormatType, error) {
	for _, f := range FormatTypes {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: %v", s, FormatTypes)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		return NewPlainFormatter(opts)
	case FormatTable:
		return NewTableFormatter(opts)
	case FormatDmenu:
		fallthrough
	default:
		return NewDmenuFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string // Custom template for dmenu/plain format
	ShowIndex      bool   // Show 1-based index prefix
	SubtitleMaxLen int    // Maximum subtitle length (0 = unlimited)
	Separator      string // Field separator for dmenu format
	Session        string // Session id included in structured output
}

// DefaultFormatterOptions returns sensible defaults for dmenu output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:      true,
		SubtitleMaxLen: 80,
		Separator:      " | ",
	}
}

// document is the envelope used by structured formats.
type document struct {
	Session string       `json:"session,omitempty" yaml:"session,omitempty"`
	Count   int          `json:"count" yaml:"count"`
	Items   []model.Item `json:"items" yaml:"items"`
}

func newDocument(opts FormatterOptions, items []model.Item) document {
	if items == nil {
		items = []model.Item{}
	}
	return document{Session: opts.Session, Count: len(items), Items: items}
}

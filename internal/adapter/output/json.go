package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/popfeed/internal/model"
)

// JSONFormatter formats items as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes items wrapped in a document object.
func (f *JSONFormatter) Format(w io.Writer, items []model.Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newDocument(f.opts, items))
}

// FormatSingle writes a single item as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, item model.Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(item)
}

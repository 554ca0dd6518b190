package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popfeed/internal/model"
)

// YAMLFormatter formats items as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes items wrapped in a document mapping.
func (f *YAMLFormatter) Format(w io.Writer, items []model.Item) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(newDocument(f.opts, items)); err != nil {
		return err
	}
	return encoder.Close()
}

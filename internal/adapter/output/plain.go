package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/popfeed/internal/model"
)

// PlainFormatter formats items as plain text, title on one line and the
// subtitle indented below it.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes items as plain text.
func (f *PlainFormatter) Format(w io.Writer, items []model.Item) error {
	for i, item := range items {
		if err := f.formatItem(w, i+1, item); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatItem(w io.Writer, index int, item model.Item) error {
	if f.template != nil {
		return f.template.Execute(w, templateData{Index: index, Item: item})
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", index))
	}
	sb.WriteString(item.Title)
	sb.WriteString("\n")

	if item.Subtitle != "" {
		sb.WriteString("    " + sanitize(item.Subtitle, f.opts.SubtitleMaxLen) + "\n")
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FormatField outputs a specific field from an item.
func FormatField(item model.Item, field string) string {
	switch strings.ToLower(field) {
	case "title":
		return item.Title
	case "subtitle":
		return item.Subtitle
	case "all", "full":
		return fmt.Sprintf("%s\n%s", item.Title, item.Subtitle)
	default:
		return item.Title
	}
}

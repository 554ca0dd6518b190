package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/popfeed/internal/model"
)

// DmenuFormatter formats items one per line for dmenu/rofi/fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes items in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, items []model.Item) error {
	for i, item := range items {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, item)); err != nil {
			return err
		}
	}
	return nil
}

// Line formats the item at the 0-based index as a single line.
func (f *DmenuFormatter) Line(index int, item model.Item) string {
	return f.formatLine(index+1, item)
}

func (f *DmenuFormatter) formatLine(index int, item model.Item) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, templateData{Index: index, Item: item}); err == nil {
			return buf.String()
		}
	}

	// Default format: index | title: subtitle
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}

	content := item.Title
	if sub := sanitize(item.Subtitle, f.opts.SubtitleMaxLen); sub != "" {
		content += ": " + sub
	}
	parts = append(parts, content)

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	Item  model.Item
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"upper":    strings.ToUpper,
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// sanitize flattens text for single-line display.
func sanitize(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, maxLen)
}

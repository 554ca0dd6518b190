package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/jmylchreest/popfeed/internal/model"
)

// TableFormatter formats items as aligned columns for reading in a terminal.
type TableFormatter struct {
	opts FormatterOptions
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(opts FormatterOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// Format writes a header row and one row per item. The header is bold when
// color output is enabled.
func (f *TableFormatter) Format(w io.Writer, items []model.Item) error {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if f.opts.SubtitleMaxLen > 0 {
		tbl.MaxColWidth = uint(f.opts.SubtitleMaxLen)
	}

	if f.opts.ShowIndex {
		tbl.AddRow(bold.Sprint("#"), bold.Sprint("TITLE"), bold.Sprint("SUBTITLE"))
	} else {
		tbl.AddRow(bold.Sprint("TITLE"), bold.Sprint("SUBTITLE"))
	}

	for i, item := range items {
		if f.opts.ShowIndex {
			tbl.AddRow(i+1, item.Title, item.Subtitle)
		} else {
			tbl.AddRow(item.Title, item.Subtitle)
		}
	}

	_, err := fmt.Fprintln(w, tbl)
	return err
}

package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popfeed/internal/model"
)

// maxInputSize bounds how much input is read.
const maxInputSize = 10 * 1024 * 1024

// StdinAdapter reads items from a reader, standard input by default.
type StdinAdapter struct {
	name   string
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{name: "stdin", reader: os.Stdin}
}

// NewReaderAdapter creates an adapter with a custom reader.
func NewReaderAdapter(name string, r io.Reader) *StdinAdapter {
	return &StdinAdapter{name: name, reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return a.name
}

// Import reads all input and parses it. Supported formats, tried in order:
//  1. a JSON document ({"items": [...]}) or array of items
//  2. a YAML document or list of items
//  3. one item per line, "title: subtitle", optionally "N | " prefixed
func (a *StdinAdapter) Import(ctx context.Context) ([]model.Item, error) {
	data, err := io.ReadAll(io.LimitReader(a.reader, maxInputSize+1))
	if err != nil {
		return nil, &AdapterError{Source: a.name, Message: "failed to read input", Err: err}
	}
	if len(data) > maxInputSize {
		return nil, &AdapterError{Source: a.name, Message: "input too large"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		items, err := parseJSON(trimmed)
		if err != nil {
			return nil, &AdapterError{Source: a.name, Message: "failed to parse JSON input", Err: err}
		}
		return items, nil
	}

	if items, ok := parseYAML(trimmed); ok {
		return items, nil
	}

	return parseLines(trimmed)
}

// document mirrors the envelope written by the structured output formats.
type document struct {
	Items []entry `json:"items" yaml:"items"`
}

type entry struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

func (e entry) item() model.Item {
	return model.NewItem(sanitizeString(e.Title), sanitizeString(e.Subtitle))
}

func parseJSON(data []byte) ([]model.Item, error) {
	var entries []entry
	if data[0] == '{' {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		entries = doc.Items
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return convertEntries(entries), nil
}

// parseYAML accepts a document with an items key or a plain list.
// Anything else is left to the line parser.
func parseYAML(data []byte) ([]model.Item, bool) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Items) > 0 {
		return convertEntries(doc.Items), true
	}

	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err == nil && len(entries) > 0 {
		return convertEntries(entries), true
	}
	return nil, false
}

func convertEntries(entries []entry) []model.Item {
	items := make([]model.Item, 0, len(entries))
	for _, e := range entries {
		item := e.item()
		if item.IsZero() {
			continue
		}
		items = append(items, item)
	}
	return items
}

// indexPrefix matches the "N | " prefix of dmenu output.
var indexPrefix = regexp.MustCompile(`^\d+\s*\|\s*`)

func parseLines(data []byte) ([]model.Item, error) {
	var items []model.Item

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxInputSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		line = indexPrefix.ReplaceAllString(line, "")

		title, subtitle, _ := strings.Cut(line, ": ")
		items = append(items, model.NewItem(sanitizeString(title), sanitizeString(subtitle)))
	}
	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{Source: "lines", Message: "failed to read lines", Err: err}
	}
	return items, nil
}

// sanitizeString drops control characters and surrounding whitespace.
func sanitizeString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s))
}

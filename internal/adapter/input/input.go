// Package input reads items to seed a feed with.
package input

import (
	"context"
	"os"

	"github.com/jmylchreest/popfeed/internal/model"
)

// InputAdapter fetches items from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin", a file path).
	Name() string

	// Import reads every item from the source.
	Import(ctx context.Context) ([]model.Item, error)
}

// NewAdapter creates an InputAdapter for source: "-" or "stdin" for
// standard input, anything else is a file path.
func NewAdapter(source string) (InputAdapter, error) {
	switch source {
	case "":
		return nil, &AdapterError{Source: source, Message: "no input source"}
	case "-", "stdin":
		return NewStdinAdapter(), nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, &AdapterError{Source: source, Message: "failed to open input", Err: err}
	}
	return &fileAdapter{StdinAdapter: NewReaderAdapter(source, f), file: f}, nil
}

// Seed imports items from source and appends them to target in order.
// It returns how many items were appended.
func Seed(ctx context.Context, source string, target interface{ Append(model.Item) error }) (int, error) {
	adapter, err := NewAdapter(source)
	if err != nil {
		return 0, err
	}
	if c, ok := adapter.(interface{ Close() error }); ok {
		defer func() { _ = c.Close() }()
	}

	items, err := adapter.Import(ctx)
	if err != nil {
		return 0, err
	}
	for i, item := range items {
		if err := target.Append(item); err != nil {
			return i, &AdapterError{Source: adapter.Name(), Message: "failed to append seed item", Err: err}
		}
	}
	return len(items), nil
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// fileAdapter reads from a file it owns.
type fileAdapter struct {
	*StdinAdapter
	file *os.File
}

func (a *fileAdapter) Close() error {
	return a.file.Close()
}

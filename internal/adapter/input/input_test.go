package input

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popfeed/internal/adapter/output"
	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/store"
)

func importString(t *testing.T, s string) []model.Item {
	t.Helper()
	items, err := NewReaderAdapter("test", strings.NewReader(s)).Import(t.Context())
	require.NoError(t, err)
	return items
}

func TestImport_Formats(t *testing.T) {
	want := []model.Item{
		model.NewItem("Item 0", "Subtitle"),
		model.NewItem("Deploy finished", "api-gateway rolled out"),
	}

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "json document",
			input: `{"session":"x","count":2,"items":[{"title":"Item 0","subtitle":"Subtitle"},{"title":"Deploy finished","subtitle":"api-gateway rolled out"}]}`,
		},
		{
			name:  "json array",
			input: `[{"title":"Item 0","subtitle":"Subtitle"},{"title":"Deploy finished","subtitle":"api-gateway rolled out"}]`,
		},
		{
			name: "yaml document",
			input: `count: 2
items:
  - title: Item 0
    subtitle: Subtitle
  - title: Deploy finished
    subtitle: api-gateway rolled out
`,
		},
		{
			name:  "dmenu lines",
			input: "1 | Item 0: Subtitle\n2 | Deploy finished: api-gateway rolled out\n",
		},
		{
			name:  "bare lines",
			input: "Item 0: Subtitle\n\nDeploy finished: api-gateway rolled out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, importString(t, tt.input))
		})
	}
}

func TestImport_Empty(t *testing.T) {
	assert.Nil(t, importString(t, "  \n"))
}

func TestImport_LineWithoutSubtitle(t *testing.T) {
	assert.Equal(t, []model.Item{model.NewItem("just a title", "")}, importString(t, "just a title\n"))
}

func TestImport_InvalidJSON(t *testing.T) {
	_, err := NewReaderAdapter("test", strings.NewReader(`{"items": [`)).Import(t.Context())

	var ae *AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "test", ae.Source)
}

func TestImport_SkipsEmptyEntries(t *testing.T) {
	items := importString(t, `[{"title":""},{"title":"a","subtitle":"b"}]`)
	assert.Equal(t, []model.Item{model.NewItem("a", "b")}, items)
}

func TestImport_ReadsDumpOutput(t *testing.T) {
	src := []model.Item{model.Synthetic(0), model.Synthetic(1)}

	for _, format := range []output.FormatType{output.FormatDmenu, output.FormatJSON, output.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.NewFormatter(format, output.DefaultFormatterOptions()).Format(&buf, src))
			assert.Equal(t, src, importString(t, buf.String()))
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "ab", sanitizeString(" a\x00b\x1b "))
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter("-")
	require.NoError(t, err)
	assert.Equal(t, "stdin", a.Name())

	_, err = NewAdapter("")
	require.Error(t, err)

	_, err = NewAdapter(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(path, []byte("first: one\nsecond: two\n"), 0o644))

	coll := store.NewCollection()
	n, err := Seed(t.Context(), path, coll)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	item, err := coll.Get(1)
	require.NoError(t, err)
	assert.Equal(t, model.NewItem("second", "two"), item)
}

func TestSeed_ClosedCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(path, []byte("first: one\n"), 0o644))

	coll := store.NewCollection()
	require.NoError(t, coll.Close())

	n, err := Seed(t.Context(), path, coll)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, store.ErrUnreachable))
}

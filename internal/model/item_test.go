package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewItem(t *testing.T) {
	item := NewItem("Item 0", "Subtitle")
	assert.Equal(t, "Item 0", item.Title)
	assert.Equal(t, "Subtitle", item.Subtitle)
	assert.Equal(t, Item{"Item 0", "Subtitle"}, item)
}

func TestSynthetic(t *testing.T) {
	tests := []struct {
		length int
		want   Item
	}{
		{0, Item{Title: "Item 0", Subtitle: PlaceholderSubtitle}},
		{1, Item{Title: "Item 1", Subtitle: PlaceholderSubtitle}},
		{1024, Item{Title: "Item 1024", Subtitle: PlaceholderSubtitle}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Synthetic(tt.length))
	}
}

func TestItem_ValueSemantics(t *testing.T) {
	a := Synthetic(3)
	b := a
	b.Title = "changed"

	assert.Equal(t, "Item 3", a.Title, "copies must not alias")
	assert.True(t, a == Synthetic(3))
	assert.False(t, a == b)
}

func TestItem_String(t *testing.T) {
	assert.Equal(t, "Item 2 - Subtitle", Synthetic(2).String())
	assert.Equal(t, "only", NewItem("only", "").String())
	assert.True(t, Item{}.IsZero())
	assert.False(t, Synthetic(0).IsZero())
}

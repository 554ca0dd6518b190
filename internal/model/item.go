// Package model defines the core data structures for popfeed.
package model

import "fmt"

// PlaceholderSubtitle is the subtitle given to synthetic items.
const PlaceholderSubtitle = "Subtitle"

// Item is one row of the list.
// Items are plain values: they are never mutated after construction and
// compare equal with ==.
type Item struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

// NewItem creates an Item.
func NewItem(title, subtitle string) Item {
	return Item{Title: title, Subtitle: subtitle}
}

// Synthetic builds the item appended when the collection holds length items.
// Both the "Add Item" action and the background producer use it.
func Synthetic(length int) Item {
	return Item{
		Title:    fmt.Sprintf("Item %d", length),
		Subtitle: PlaceholderSubtitle,
	}
}

// IsZero reports whether the item carries no text at all.
func (i Item) IsZero() bool {
	return i.Title == "" && i.Subtitle == ""
}

// String returns "title - subtitle".
func (i Item) String() string {
	if i.Subtitle == "" {
		return i.Title
	}
	return i.Title + " - " + i.Subtitle
}

// Package display hosts the live list in a GTK4/libadwaita window.
// Rows are GTK widgets built from the current list window; collection
// changes reach the window through the GTK main loop.
package display

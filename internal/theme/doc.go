// Package theme provides CSS theming for the popup window. Bundled themes
// are embedded; a file of the same name in the user's themes directory
// overrides them and is hot-reloaded on change.
package theme

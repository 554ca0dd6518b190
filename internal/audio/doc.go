// Package audio plays a short chime when items are appended to the feed.
// It uses the beep library to play WAV, OGG, and MP3 files, and falls back to
// a synthesized tone when no file is configured.
package audio

// Package editor holds the editing session: the Surface the user types into,
// the Controller that loads, auto-saves and guards a document, and the
// HTML helpers behind text projection, statistics, search, outline and
// export.
package editor

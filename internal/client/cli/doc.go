// Package cli provides the interactive EUTYPE command-line client.
//
// It wires configuration, the local state database, the API gateway, the
// session gate and the editor into a REPL. Startup validates the session
// first; without a valid session only the login portal URL is printed.
//
// Two command sets exist:
//   - File Picker: list, new, open, rename, delete, info, download, usage,
//     recent, whoami, logout
//   - Editor (while a document is open): show, text, set, append, replace,
//     find, stats, outline, save, name, export, back
//
// Leaving a document with unsaved changes asks for confirmation. Any
// rejection by the backend ends the REPL with the login portal URL.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

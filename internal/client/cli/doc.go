// Package cli provides the interactive gophnotes command-line client.
//
// It wires configuration, the local session database, the remote store
// client, the note sync store and an interactive REPL. Signing in starts
// background syncing of the user's notes; signing out stops it.
//
// Key features:
//   - Register / Login / Logout
//   - List, show, add, edit, tag and delete notes
//   - Share notes with other users or everyone, revoke access
//   - Audit history of a note
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli

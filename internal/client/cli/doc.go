// Package cli provides the interactive SmartQ command-line client.
//
// It wires configuration and the auth client into a small REPL:
// signup, login, whoami, logout, status and exit. A background watcher pings
// the server and flips the prompt between online and offline.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli

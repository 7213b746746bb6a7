// Package app wires the whole dashboard engine together: it loads the
// declaration files into the config model, registers and validates Go
// handlers, assembles runtime blocks, compiles bindings into the local
// runtime, and serves the WebSocket gateway.
package app

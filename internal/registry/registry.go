// Package registry stores the mappings between handler names used in
// dashboard declarations and the compiled Go functions that implement them.
//
// During startup the registry is populated by modules and then validated
// against the loaded configuration, so a declaration naming a handler that
// was never compiled in fails before any binding is installed.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/dashwire/internal/depgraph"
)

// Module is the interface that all built-in handler modules implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered handlers for a single application instance.
type Registry struct {
	handlers map[string]depgraph.Handler
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{handlers: make(map[string]depgraph.Handler)}
}

// RegisterHandler registers a Go function under a declaration-facing name.
func (r *Registry) RegisterHandler(name string, fn depgraph.Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering handler.", "name", name)
	r.handlers[name] = fn
}

// Handler looks up a registered function by name.
func (r *Registry) Handler(name string) (depgraph.Handler, bool) {
	fn, ok := r.handlers[name]
	return fn, ok
}

// Len reports how many handlers are registered.
func (r *Registry) Len() int {
	return len(r.handlers)
}

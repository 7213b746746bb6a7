package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads dashboard declarations from the given paths and translates
	// them into the format-agnostic model. Control defaults arrive as native
	// Go values regardless of the source format.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

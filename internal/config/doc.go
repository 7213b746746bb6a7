// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading dashboard
// declarations from various sources.
//
// The config.Model is the single source of truth for the registry and app
// packages. Concrete implementations of Loader, such as for HCL, are
// provided in separate packages.
package config

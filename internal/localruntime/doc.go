// Package localruntime provides an in-process host runtime for compiled
// bindings.
//
// It stores component property values, installs bindings, and dispatches
// them whenever a publishing value changes, resolving templated identifiers
// against the section instance the triggering event came from. It also owns
// lazily loaded sections: each section's blocks are created by a factory on
// first access, cached for the process lifetime, and identified by a freshly
// minted instance id.
//
// The runtime delivers exactly one event at a time per session; a mutex
// enforces that, since callers such as the gateway deliver events from
// connection goroutines.
package localruntime

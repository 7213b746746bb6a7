// Package depgraph holds the dependency graph a dashboard declares before
// compilation: per abstract state identifier, one publisher and zero or more
// subscribers.
//
// The store is mutated only during declaration and compilation passes and is
// read-only once the host runtime starts delivering events, so it carries no
// internal locking. States iterate in first-registration order; the compiler
// relies on that order when it fixes a binding's input sequence.
package depgraph

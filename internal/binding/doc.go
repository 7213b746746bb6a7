// Package binding defines the compiled artifact the compiler installs into a
// host runtime (one output, an ordered list of inputs, one composed handler)
// and the execution wrapper that keeps a broken handler from crashing the
// surrounding UI tree.
package binding

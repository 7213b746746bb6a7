package compiler

import (
	"fmt"
	"strings"

	"github.com/vk/dashwire/internal/identity"
)

// OutputConflict records two blocks that would produce bindings for the same
// output without either opting into sharing.
type OutputConflict struct {
	Output identity.Target
	BlockA string
	BlockB string
}

// ConfigurationError is a fatal compile-time error: unresolved duplicate
// outputs or a block missing a required collaborator declaration. It aborts
// the whole compilation pass before any binding is installed.
type ConfigurationError struct {
	Reason    string
	Conflicts []OutputConflict
}

func (e *ConfigurationError) Error() string {
	if len(e.Conflicts) == 0 {
		return "configuration error: " + e.Reason
	}
	var sb strings.Builder
	sb.WriteString("duplicate output targets detected:\n")
	for _, c := range e.Conflicts {
		fmt.Fprintf(&sb, "  - %s: blocks %q and %q\n", c.Output, c.BlockA, c.BlockB)
	}
	sb.WriteString("to resolve this, allow shared outputs on one or both blocks")
	return sb.String()
}

// StateGraphError wraps an unexpected failure raised while building bindings
// from the dependency graph, preserving the original cause.
type StateGraphError struct {
	Op  string
	Err error
}

func (e *StateGraphError) Error() string {
	return fmt.Sprintf("state graph compilation failed during %s: %v", e.Op, e.Err)
}

func (e *StateGraphError) Unwrap() error {
	return e.Err
}

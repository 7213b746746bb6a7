package binding

import (
	"context"
	"errors"

	"github.com/vk/dashwire/internal/identity"
)

// ErrNoUpdate is the designated no-update signal. A handler returns it
// (directly or wrapped) to tell the host runtime the output should keep its
// current value. It is an intentional no-op, not a failure, and the
// execution wrapper propagates it unchanged.
var ErrNoUpdate = errors.New("no update")

// HandlerFunc is a composed binding handler. values arrives with one entry
// per binding input, in the fixed order established at compile time.
type HandlerFunc func(ctx context.Context, values []any) (any, error)

// Input is one value source of a binding. StateID is the originating
// abstract state for external inputs and empty for a block's own control
// inputs.
type Input struct {
	ID       identity.ID
	Property string
	StateID  string
}

// Target returns the input's component target.
func (in Input) Target() identity.Target {
	return identity.NewTarget(in.ID, in.Property)
}

// Binding connects one or more inputs to one output via one handler. After
// compilation bindings are immutable and safely shared by all invocations.
type Binding struct {
	// BlockID names the block the binding was compiled for, for logs and
	// error context.
	BlockID string

	// Section names the section the owning block was declared in. Templated
	// bindings resolve only against instances of this section; a templated
	// binding with an empty Section is never dispatched by concrete events.
	Section string

	// Output is the unique target this binding writes. It may be templated
	// when the owning block lives in a replicated section.
	Output identity.Target

	// Inputs is the ordered value list the handler receives: external
	// concrete inputs first, then the block's own (possibly templated)
	// control inputs.
	Inputs []Input

	// Handle is the composed, wrapped handler.
	Handle HandlerFunc
}

package block

import (
	"context"

	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/identity"
)

// Publication declares that a block's component property is the single
// source of truth for an abstract state.
type Publication struct {
	StateID  string
	ID       identity.ID
	Property string
	// Alias, when non-empty, is the canonical parameter name subscribers
	// receive for this state instead of the state id.
	Alias string

	// Default, when non-nil, is the state's value before the first event.
	Default any
}

// Block is the contract the compiler consumes. Implementations outside this
// package render charts, text or metrics; the compiler only cares which
// values they expose and which handler recomputes them.
type Block interface {
	// BlockID identifies the block in logs and configuration errors.
	BlockID() string

	// Section names the section the block was declared in, empty for blocks
	// assembled outside any section. The host runtime confines templated
	// dispatch to instances of this section.
	Section() string

	// OutputTarget names the reactive value the block renders. ok is false
	// for blocks that render nothing reactive.
	OutputTarget() (identity.Target, bool)

	// OwnControlInputs lists the block's own control inputs in declaration
	// order, empty when the block owns no controls.
	OwnControlInputs() []identity.Target

	// Controls returns the full control declarations backing
	// OwnControlInputs, in the same order.
	Controls() []Control

	// UpdateFromControls recomputes the block's output from the normalized
	// {canonical name: value} map.
	UpdateFromControls(ctx context.Context, values map[string]any) (any, error)

	// Publishes lists the states this block is authoritative for.
	Publishes() []Publication

	// Subscribes maps each consumed state id to the handler that recomputes
	// the block's output when that state changes.
	Subscribes() map[string]depgraph.Handler

	// AllowSharedOutput opts the block into sharing its output target with
	// another block instead of failing compilation.
	AllowSharedOutput() bool

	// Replicated reports whether the block lives inside a replicated
	// (cloned-per-instance) section. Only such blocks get their own control
	// identifiers templated.
	Replicated() bool
}

// Spec carries everything needed to construct a Declared block.
type Spec struct {
	BlockID     string
	Section     string
	Output      identity.Target
	HasOutput   bool
	Controls    []Control
	Publishes   []Publication
	Subscribes  map[string]depgraph.Handler
	Update      depgraph.Handler
	AllowShared bool
	Replicated  bool
}

// Declared is the Block implementation for blocks described in dashboard
// declaration files, with handlers resolved through the registry.
type Declared struct {
	spec Spec
}

// NewDeclared constructs a declared block from its spec.
func NewDeclared(spec Spec) *Declared {
	return &Declared{spec: spec}
}

func (d *Declared) BlockID() string { return d.spec.BlockID }

func (d *Declared) Section() string { return d.spec.Section }

func (d *Declared) OutputTarget() (identity.Target, bool) {
	return d.spec.Output, d.spec.HasOutput
}

func (d *Declared) OwnControlInputs() []identity.Target {
	inputs := make([]identity.Target, len(d.spec.Controls))
	for i, c := range d.spec.Controls {
		inputs[i] = c.Target()
	}
	return inputs
}

func (d *Declared) Controls() []Control { return d.spec.Controls }

func (d *Declared) UpdateFromControls(ctx context.Context, values map[string]any) (any, error) {
	if d.spec.Update == nil {
		return nil, nil
	}
	return d.spec.Update(ctx, values)
}

func (d *Declared) Publishes() []Publication { return d.spec.Publishes }

func (d *Declared) Subscribes() map[string]depgraph.Handler { return d.spec.Subscribes }

func (d *Declared) AllowSharedOutput() bool { return d.spec.AllowShared }

func (d *Declared) Replicated() bool { return d.spec.Replicated }

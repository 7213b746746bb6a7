package localruntime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/dashwire/internal/binding"
	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/identity"
)

// SectionFactory builds a section's blocks the first time the section is
// shown. instanceID is the concrete section instance minted for this load.
type SectionFactory func(ctx context.Context, instanceID string) ([]block.Block, error)

// UpdateFunc observes every output value the runtime computes.
type UpdateFunc func(output identity.Target, value any)

type section struct {
	factory    SectionFactory
	instanceID string
	blocks     []block.Block
	loaded     bool
}

// Runtime is the in-process Host implementation.
type Runtime struct {
	mu       sync.Mutex
	bindings []*binding.Binding
	values   map[identity.Target]any
	sections map[string]*section
	onUpdate []UpdateFunc
}

// New returns an empty runtime.
func New() *Runtime {
	return &Runtime{
		values:   make(map[identity.Target]any),
		sections: make(map[string]*section),
	}
}

// Install accepts a compiled binding. Bindings are immutable once installed.
func (r *Runtime) Install(ctx context.Context, b *binding.Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = append(r.bindings, b)
	ctxlog.FromContext(ctx).Debug("Binding installed.",
		"output", b.Output.String(), "inputs", len(b.Inputs))
	return nil
}

// Bindings returns the installed bindings in installation order.
func (r *Runtime) Bindings() []*binding.Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*binding.Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// OnUpdate registers an observer for computed output values. The gateway
// uses this to push updates to connected clients.
func (r *Runtime) OnUpdate(fn UpdateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = append(r.onUpdate, fn)
}

// Seed copies the last known publisher values out of the dependency graph
// so bindings see sensible inputs before the first real event arrives.
func (r *Runtime) Seed(ctx context.Context, graph *depgraph.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stateID := range graph.StateIDs() {
		publisher, ok := graph.Publisher(stateID)
		if !ok {
			continue
		}
		if value, known := graph.PublisherValue(stateID); known {
			r.values[publisher] = value
		}
	}
	ctxlog.FromContext(ctx).Debug("Runtime seeded with initial publisher values.")
}

// Value returns the current value of a component property.
func (r *Runtime) Value(id identity.ID, property string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[identity.NewTarget(id, property)]
	return v, ok
}

// update is one computed output held back until the runtime lock is
// released.
type update struct {
	output identity.Target
	value  any
}

// SetValue records a new value for a concrete component property and
// dispatches every binding that takes it as an input. Outputs computed by
// those bindings are stored and dispatched in turn, so chained bindings
// settle within the same call; a visited set stops circular chains.
//
// Observers run after the lock is released. A slow observer cannot stall
// dispatch, and an observer that reads the runtime back does not deadlock.
func (r *Runtime) SetValue(ctx context.Context, id identity.ID, property string, value any) {
	r.mu.Lock()
	var pending []update
	r.setValueLocked(ctx, id, property, value, make(map[identity.Target]bool), &pending)
	observers := make([]UpdateFunc, len(r.onUpdate))
	copy(observers, r.onUpdate)
	r.mu.Unlock()

	for _, u := range pending {
		for _, fn := range observers {
			fn(u.output, u.value)
		}
	}
}

func (r *Runtime) setValueLocked(ctx context.Context, id identity.ID, property string, value any, visited map[identity.Target]bool, pending *[]update) {
	logger := ctxlog.FromContext(ctx)

	eventTarget := identity.NewTarget(id, property)
	if visited[eventTarget] {
		logger.Warn("Circular binding chain stopped.", "target", eventTarget.String())
		return
	}
	visited[eventTarget] = true
	r.values[eventTarget] = value

	// Templated inputs resolve against the section instance the event came
	// from; events from plain components resolve nothing.
	eventSection := id.Section

	for _, b := range r.bindings {
		if !bindingListens(b, id, property) {
			continue
		}

		// An event from a templated component dispatches only within its own
		// section instance. A concrete event feeding a templated binding
		// dispatches against the loaded instances of the binding's own
		// section, which is what makes cross-section reactivity work without
		// the binding ever writing into another section's instances.
		targetSections := []string{eventSection}
		if eventSection == "" && bindingTemplated(b) {
			targetSections = r.instancesOfLocked(b.Section)
		}

		for _, sect := range targetSections {
			args := make([]any, len(b.Inputs))
			for i, in := range b.Inputs {
				args[i] = r.values[in.Target().Resolve(sect)]
			}

			result, err := b.Handle(ctx, args)
			if err != nil {
				if errors.Is(err, binding.ErrNoUpdate) {
					continue
				}
				// The execution wrapper contains handler failures; anything
				// else is a host-level problem worth logging, never
				// propagating.
				logger.Error("Binding dispatch failed.", "output", b.Output.String(), "error", err)
				continue
			}

			output := b.Output.Resolve(sect)
			logger.Debug("Binding produced output.", "output", output.String())
			*pending = append(*pending, update{output: output, value: result})
			r.setValueLocked(ctx, output.ID, output.Property, result, visited, pending)
		}
	}
}

// bindingTemplated reports whether any part of the binding still carries the
// wildcard placeholder.
func bindingTemplated(b *binding.Binding) bool {
	if b.Output.ID.IsTemplated() {
		return true
	}
	for _, in := range b.Inputs {
		if in.ID.IsTemplated() {
			return true
		}
	}
	return false
}

// instancesOfLocked returns the loaded instance ids of the named section.
// An empty or unknown name matches nothing, so a templated binding without
// a section attribution never fires on concrete events.
func (r *Runtime) instancesOfLocked(name string) []string {
	sec, ok := r.sections[name]
	if !ok || !sec.loaded {
		return nil
	}
	return []string{sec.instanceID}
}

// bindingListens reports whether the binding has an input fed by events for
// the given concrete component property.
func bindingListens(b *binding.Binding, id identity.ID, property string) bool {
	for _, in := range b.Inputs {
		if in.Property == property && in.ID.Matches(id) {
			return true
		}
	}
	return false
}

// RegisterSection declares a lazily loaded section and the factory that
// builds its blocks on first access.
func (r *Runtime) RegisterSection(name string, factory SectionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections[name] = &section{factory: factory}
}

// ShowSection loads a registered section on first access and returns its
// cached blocks afterwards. first reports whether this call created the
// blocks; callers re-run compilation only in that case.
func (r *Runtime) ShowSection(ctx context.Context, name string) (blocks []block.Block, first bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sec, ok := r.sections[name]
	if !ok {
		return nil, false, fmt.Errorf("unknown section %q", name)
	}
	if sec.loaded {
		return sec.blocks, false, nil
	}

	sec.instanceID = uuid.NewString()
	blocks, err = sec.factory(ctx, sec.instanceID)
	if err != nil {
		return nil, false, fmt.Errorf("loading section %q: %w", name, err)
	}
	sec.blocks = blocks
	sec.loaded = true

	ctxlog.FromContext(ctx).Info("Section loaded.",
		"section", name, "instance", sec.instanceID, "blocks", len(blocks))
	return blocks, true, nil
}

// SectionInstance returns the concrete instance id minted for a loaded
// section, or ok=false while the section has not been shown yet.
func (r *Runtime) SectionInstance(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sec, ok := r.sections[name]
	if !ok || !sec.loaded {
		return "", false
	}
	return sec.instanceID, true
}

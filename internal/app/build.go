// This file assembles runtime blocks from the loaded config model and feeds
// the dependency graph that binding compilation consumes.

package app

import (
	"context"
	"fmt"

	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/config"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/identity"
)

// assembleSection builds runtime blocks for one declared section.
// instanceID is empty for sections assembled at startup; replicated sections
// receive the instance id minted by the runtime, and their blocks get
// compound component identifiers scoped to that instance.
func (a *App) assembleSection(sec *config.Section, instanceID string) ([]block.Block, error) {
	replicated := sec.Replicated && instanceID != ""

	blocks := make([]block.Block, 0, len(sec.Blocks))
	for _, cb := range sec.Blocks {
		b, err := a.assembleBlock(sec.Name, cb, instanceID, replicated)
		if err != nil {
			return nil, fmt.Errorf("in section %q: %w", sec.Name, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (a *App) assembleBlock(sectionName string, cb *config.Block, instanceID string, replicated bool) (block.Block, error) {
	var id identity.ID
	if replicated {
		id = identity.Compound(instanceID, cb.Name)
	} else {
		id = identity.Plain(cb.Name)
	}

	// The section-qualified id keeps same-named blocks from different
	// sections distinguishable, which is what output conflict detection
	// keys on.
	spec := block.Spec{
		BlockID:     sectionName + "." + cb.Name,
		Section:     sectionName,
		AllowShared: cb.AllowShared,
		Replicated:  replicated,
	}
	if cb.HasOutput {
		spec.Output = identity.NewTarget(id, cb.OutputProperty)
		spec.HasOutput = true
	}

	if cb.Handler != "" {
		fn, ok := a.registry.Handler(cb.Handler)
		if !ok {
			return nil, fmt.Errorf("block %q: handler %q is not registered", cb.Name, cb.Handler)
		}
		spec.Update = fn
	}

	for _, c := range cb.Controls {
		kind, err := block.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", cb.Name, err)
		}
		role := cb.Name + "-" + c.Name
		controlID := identity.Plain(role)
		if replicated {
			controlID = identity.Compound(instanceID, role)
		}
		spec.Controls = append(spec.Controls, block.Control{
			ID:       controlID,
			Property: c.Property,
			Name:     c.Name,
			Kind:     kind,
			Alias:    c.Alias,
			Default:  c.Default,
		})
	}

	for _, p := range cb.Publishes {
		spec.Publishes = append(spec.Publishes, block.Publication{
			StateID:  p.StateID,
			ID:       id,
			Property: p.Property,
			Alias:    p.Alias,
			Default:  p.Default,
		})
	}

	if len(cb.Subscribes) > 0 {
		spec.Subscribes = make(map[string]depgraph.Handler, len(cb.Subscribes))
	}
	for _, sub := range cb.Subscribes {
		fn, ok := a.registry.Handler(sub.Handler)
		if !ok {
			return nil, fmt.Errorf("block %q: handler %q is not registered", cb.Name, sub.Handler)
		}
		spec.Subscribes[sub.StateID] = fn
	}

	return block.NewDeclared(spec), nil
}

// registerBlocks feeds every publication and subscription the blocks declare
// into the dependency graph. Publishers are registered first so state
// discovery order follows block declaration order.
func (a *App) registerBlocks(ctx context.Context, blocks []block.Block) {
	for _, b := range blocks {
		for _, p := range b.Publishes() {
			a.graph.RegisterPublisher(ctx, p.StateID, p.ID, p.Property, p.Alias)
			if p.Default != nil {
				a.graph.SetPublisherValue(p.StateID, p.Default)
			}
		}
	}
	for _, b := range blocks {
		output, ok := b.OutputTarget()
		if !ok {
			continue
		}
		for stateID, fn := range b.Subscribes() {
			a.graph.RegisterSubscriber(ctx, stateID, output, fn)
		}
	}
}

// seedBlockDefaults pushes declared control defaults into the runtime so
// freshly compiled bindings render from a populated state.
func (a *App) seedBlockDefaults(ctx context.Context, blocks []block.Block) {
	for _, b := range blocks {
		for _, c := range b.Controls() {
			if c.Default != nil {
				a.runtime.SetValue(ctx, c.ID, c.Property, c.Default)
			}
		}
	}
}

package compiler

import (
	"context"

	"github.com/vk/dashwire/internal/binding"
	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/keynorm"
)

// compileBlocks runs the block-centric path over every block that owns at
// least one control. Each such block gets exactly one binding whose inputs
// are its external state inputs followed by its own control inputs, a fixed
// ordering contract the composed handler parses positionally.
//
// External inputs stay concrete even when the block lives in a replicated
// section, because external states may originate from a different,
// non-replicated section. Only the block's own control identifiers are
// rewritten to their templated form there.
func compileBlocks(ctx context.Context, host Host, graph *depgraph.Store, blocks []block.Block, cc *CompilationContext) (int, error) {
	logger := ctxlog.FromContext(ctx)

	installed := 0
	for _, b := range blocks {
		controls := b.Controls()
		if len(controls) == 0 {
			continue
		}
		output, ok := b.OutputTarget()
		if !ok {
			// validateBlocks already rejected this shape.
			continue
		}

		var external []binding.Input
		stateAliases := make(map[string]string)
		for _, stateID := range graph.StateIDs() {
			for _, sub := range graph.Subscribers(stateID) {
				if sub.Output != output {
					continue
				}
				publisher, hasPublisher := graph.Publisher(stateID)
				if !hasPublisher {
					continue
				}
				external = append(external, binding.Input{
					ID:       publisher.ID,
					Property: publisher.Property,
					StateID:  stateID,
				})
				alias, _ := graph.Alias(stateID)
				stateAliases[stateID] = alias
			}
		}

		own := make([]binding.Input, len(controls))
		controlAliases := make(map[string]string, len(controls))
		for i, c := range controls {
			id := c.ID
			if b.Replicated() {
				id = id.Templated()
			}
			own[i] = binding.Input{ID: id, Property: c.Property}
			controlAliases[c.Name] = c.Alias
		}

		installTarget := installForm(b, output)
		if cc.Compiled(installTarget) {
			logger.Warn("Block output already bound by a previous pass, skipping.",
				"block", b.BlockID(), "output", installTarget.String())
			continue
		}

		inputs := make([]binding.Input, 0, len(external)+len(own))
		inputs = append(inputs, external...)
		inputs = append(inputs, own...)

		norm := keynorm.New(keynorm.Config{
			StateAliases:   stateAliases,
			ControlAliases: controlAliases,
		})

		bnd := &binding.Binding{
			BlockID: b.BlockID(),
			Section: b.Section(),
			Output:  installTarget,
			Inputs:  inputs,
			Handle:  binding.Wrap(b.BlockID(), installTarget, cc.metrics, newBlockHandler(b, external, own, norm)),
		}
		if err := host.Install(ctx, bnd); err != nil {
			return installed, err
		}
		cc.markCompiled(installTarget)
		cc.metrics.ObserveBindingInstalled("block")
		installed++

		logger.Debug("Installed block binding.",
			"block", b.BlockID(), "output", installTarget.String(),
			"external_inputs", len(external), "own_inputs", len(own))
	}

	return installed, nil
}

// newBlockHandler composes the dispatch handler for one block-owned output.
// The received values are split at len(external): the leading values map
// back to their state ids, the rest to each control's raw identifier, and
// the normalizer rewrites both into canonical parameter names before the
// block's update runs.
func newBlockHandler(b block.Block, external, own []binding.Input, norm *keynorm.Normalizer) binding.HandlerFunc {
	split := len(external)
	return func(ctx context.Context, values []any) (any, error) {
		raw := make(map[string]any, len(external)+len(own))
		for i, in := range external {
			if i < len(values) {
				raw[in.StateID] = values[i]
			}
		}
		for i, in := range own {
			if split+i < len(values) {
				raw[in.ID.RoleName()] = values[split+i]
			}
		}
		return b.UpdateFromControls(ctx, norm.Normalize(raw))
	}
}

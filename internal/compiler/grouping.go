package compiler

import (
	"context"

	"github.com/vk/dashwire/internal/binding"
	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/identity"
	"github.com/vk/dashwire/internal/keynorm"
)

// groupEntry is one (state, publisher, handler) contribution to an output's
// grouped binding.
type groupEntry struct {
	stateID   string
	publisher identity.Target
	handle    depgraph.Handler
}

// compileGrouped runs the state-centric path: for every state with both a
// publisher and subscribers, subscriptions are grouped by output target so
// each unique output gets exactly one binding with one input per
// contributing state, ordered by first registration of the originating
// state.
func compileGrouped(ctx context.Context, host Host, graph *depgraph.Store, blocks []block.Block, cc *CompilationContext) (int, error) {
	logger := ctxlog.FromContext(ctx)

	blocksByOutput := make(map[identity.Target]block.Block)
	for _, b := range blocks {
		if target, ok := b.OutputTarget(); ok {
			blocksByOutput[target] = b
		}
	}

	groups := make(map[identity.Target][]groupEntry)
	var order []identity.Target

	for _, stateID := range graph.StateIDs() {
		publisher, ok := graph.Publisher(stateID)
		if !ok {
			logger.Debug("Skipping state without publisher.", "state", stateID)
			continue
		}
		subscribers := graph.Subscribers(stateID)
		if len(subscribers) == 0 {
			logger.Debug("Skipping state without subscribers.", "state", stateID)
			continue
		}
		for _, sub := range subscribers {
			if _, seen := groups[sub.Output]; !seen {
				order = append(order, sub.Output)
			}
			groups[sub.Output] = append(groups[sub.Output], groupEntry{
				stateID:   stateID,
				publisher: publisher,
				handle:    sub.Handle,
			})
		}
	}

	installed := 0
	for _, output := range order {
		entries := groups[output]

		// A block that declares any own controls owns its output fully; the
		// block-centric path binds it together with its external inputs.
		ownerBlock := blocksByOutput[output]
		if ownerBlock != nil && len(ownerBlock.OwnControlInputs()) > 0 {
			logger.Debug("Output owned by a block with controls, leaving it to the block path.",
				"output", output.String(), "block", ownerBlock.BlockID())
			continue
		}

		// Compound subscriber IDs belong to section-replicated components;
		// the installed output is templated so the host resolves it against
		// the event's section instance. Publisher inputs stay exact, which
		// is what allows cross-section subscriptions.
		installTarget := output
		if output.ID.IsCompound() {
			installTarget = output.Templated()
		}

		if cc.Compiled(installTarget) {
			logger.Warn("Output already bound by a previous pass, skipping.", "output", installTarget.String())
			continue
		}

		inputs := make([]binding.Input, len(entries))
		stateAliases := make(map[string]string, len(entries))
		for i, e := range entries {
			inputs[i] = binding.Input{ID: e.publisher.ID, Property: e.publisher.Property, StateID: e.stateID}
			alias, _ := graph.Alias(e.stateID)
			stateAliases[e.stateID] = alias
		}
		norm := keynorm.New(keynorm.Config{StateAliases: stateAliases})

		blockID, sectionName := "", ""
		if ownerBlock != nil {
			blockID = ownerBlock.BlockID()
			sectionName = ownerBlock.Section()
		}

		bnd := &binding.Binding{
			BlockID: blockID,
			Section: sectionName,
			Output:  installTarget,
			Inputs:  inputs,
			Handle:  binding.Wrap(blockID, installTarget, cc.metrics, newGroupedHandler(entries, norm)),
		}
		if err := host.Install(ctx, bnd); err != nil {
			return installed, err
		}
		cc.markCompiled(installTarget)
		cc.metrics.ObserveBindingInstalled("grouped")
		installed++

		logger.Debug("Installed grouped binding.",
			"output", installTarget.String(), "inputs", len(inputs))
	}

	return installed, nil
}

// newGroupedHandler composes the dispatch handler for one grouped output.
// Taking the loop state as parameters pins each binding to its own
// immutable inputs.
func newGroupedHandler(entries []groupEntry, norm *keynorm.Normalizer) binding.HandlerFunc {
	return func(ctx context.Context, values []any) (any, error) {
		raw := make(map[string]any, len(entries))
		for i, e := range entries {
			if i < len(values) {
				raw[e.stateID] = values[i]
			}
		}
		// Every entry of a group targets the same output and therefore
		// carries the same subscriber handler.
		return entries[0].handle(ctx, norm.Normalize(raw))
	}
}

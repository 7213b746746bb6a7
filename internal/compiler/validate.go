package compiler

import (
	"context"
	"fmt"

	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/ctxlog"
)

// validateBlocks runs the duplicate-output validator over the whole block
// list before any binding is installed. Ownership from previous compilation
// passes is considered too, so a block added by a later lazy section load
// cannot silently steal an output. Ownership is committed to the context
// only when the pass validates.
func validateBlocks(ctx context.Context, blocks []block.Block, cc *CompilationContext) error {
	logger := ctxlog.FromContext(ctx)

	// Start from what earlier passes bound.
	pending := make(map[string]owner, len(cc.owners))
	for t, o := range cc.owners {
		pending[t.String()] = o
	}

	var conflicts []OutputConflict
	for _, b := range blocks {
		output, ok := b.OutputTarget()
		if !ok {
			if len(b.Controls()) > 0 || len(b.Subscribes()) > 0 {
				return &ConfigurationError{Reason: fmt.Sprintf(
					"block %q declares controls or subscriptions but no output target", b.BlockID())}
			}
			continue
		}

		// Replicated blocks are compared in their install form: two sections
		// reusing a block name collide on the same templated output even
		// though their concrete instance ids differ.
		target := installForm(b, output)
		key := target.String()
		prev, exists := pending[key]
		if exists && prev.blockID != b.BlockID() {
			if prev.allowShared || b.AllowSharedOutput() {
				logger.Warn("Duplicate output target allowed by explicit opt-in.",
					"output", target.String(), "block_a", prev.blockID, "block_b", b.BlockID())
			} else {
				cc.metrics.ObserveOutputConflict()
				conflicts = append(conflicts, OutputConflict{
					Output: target,
					BlockA: prev.blockID,
					BlockB: b.BlockID(),
				})
				logger.Error("Duplicate output target detected.",
					"output", target.String(), "block_a", prev.blockID, "block_b", b.BlockID())
			}
		}
		pending[key] = owner{blockID: b.BlockID(), allowShared: b.AllowSharedOutput()}
	}

	if len(conflicts) > 0 {
		return &ConfigurationError{Conflicts: conflicts}
	}

	// Commit ownership now that the pass is known to be consistent.
	for _, b := range blocks {
		if output, ok := b.OutputTarget(); ok {
			cc.owners[installForm(b, output)] = owner{blockID: b.BlockID(), allowShared: b.AllowSharedOutput()}
		}
	}
	logger.Debug("Output validation passed.", "unique_targets", len(pending))
	return nil
}

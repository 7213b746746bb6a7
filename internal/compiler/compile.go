package compiler

import (
	"context"

	"github.com/vk/dashwire/internal/binding"
	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/identity"
)

// Host is the runtime compiled bindings install into. The compiler never
// invokes bindings itself; it only decides which handler runs when, with
// which inputs, and hands the result over.
type Host interface {
	Install(ctx context.Context, b *binding.Binding) error
}

// Compile runs both compilation paths and installs every resulting binding
// into the host. It is safe to call repeatedly with a growing block list as
// lazily loaded sections are discovered: the context's idempotency tracker
// keeps already-bound outputs untouched.
//
// A *ConfigurationError aborts the pass before any binding is installed; a
// *StateGraphError wraps unexpected failures from either path.
// installForm returns the output identity a block's binding is installed
// under. Blocks in replicated sections install templated outputs, so the
// validator and the idempotency tracker must key on the templated form or
// two sections reusing a block name would bind the same output twice.
func installForm(b block.Block, output identity.Target) identity.Target {
	if b.Replicated() && output.ID.IsCompound() {
		return output.Templated()
	}
	return output
}

func Compile(ctx context.Context, host Host, graph *depgraph.Store, blocks []block.Block, cc *CompilationContext) error {
	logger := ctxlog.FromContext(ctx)
	cc.metrics.ObserveCompilePass()

	if err := validateBlocks(ctx, blocks, cc); err != nil {
		return err
	}

	grouped, err := compileGrouped(ctx, host, graph, blocks, cc)
	if err != nil {
		return &StateGraphError{Op: "grouped binding compilation", Err: err}
	}

	fromBlocks, err := compileBlocks(ctx, host, graph, blocks, cc)
	if err != nil {
		return &StateGraphError{Op: "block binding compilation", Err: err}
	}

	logger.Info("Compilation pass finished.",
		"grouped_bindings", grouped,
		"block_bindings", fromBlocks,
		"total_bound_outputs", cc.CompiledCount())
	return nil
}

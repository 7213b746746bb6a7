// Package compiler turns the declared dependency graph and block list into
// the minimal set of event bindings a host runtime executes.
//
// Two compilation paths exist. The grouped (state-centric) path merges all
// subscriptions targeting the same output into one binding with multiple
// inputs. The block-centric path handles blocks that own their own controls:
// it concatenates the block's external state inputs with its own control
// inputs into one binding with a fixed external-then-own ordering contract.
// A block that declares any own controls owns its output fully; the grouped
// path skips such outputs to avoid double-binding.
//
// Compilation is idempotent: the CompilationContext records every bound
// output, so repeated passes triggered by lazy section loading are additive
// and side-effect-free for already-bound outputs.
package compiler

package compiler

import (
	"github.com/vk/dashwire/internal/identity"
	"github.com/vk/dashwire/internal/metric"
)

// owner records which block last compiled a binding for an output.
type owner struct {
	blockID     string
	allowShared bool
}

// CompilationContext carries the compile-time state shared by all passes of
// one dashboard process: the idempotency tracker of already-bound outputs
// and the output ownership map the duplicate validator consults. It is an
// explicit object rather than process-global state, so several independent
// dashboards can coexist in one process.
type CompilationContext struct {
	compiled map[identity.Target]bool
	owners   map[identity.Target]owner
	metrics  *metric.Metrics
}

// NewContext returns a fresh context with empty tracker and ownership map.
func NewContext() *CompilationContext {
	return &CompilationContext{
		compiled: make(map[identity.Target]bool),
		owners:   make(map[identity.Target]owner),
	}
}

// UseMetrics attaches prometheus instrumentation. Passing nil disables it.
func (cc *CompilationContext) UseMetrics(m *metric.Metrics) {
	cc.metrics = m
}

// Compiled reports whether a binding for the output was already installed.
func (cc *CompilationContext) Compiled(output identity.Target) bool {
	return cc.compiled[output]
}

// CompiledCount returns the number of outputs bound so far.
func (cc *CompilationContext) CompiledCount() int {
	return len(cc.compiled)
}

// ClearCompiledOutputs empties the idempotency tracker and the ownership
// map. It must only be called when no live bindings reference the cleared
// outputs, such as test teardown or a forced section unload.
func (cc *CompilationContext) ClearCompiledOutputs() {
	cc.compiled = make(map[identity.Target]bool)
	cc.owners = make(map[identity.Target]owner)
}

func (cc *CompilationContext) markCompiled(output identity.Target) {
	cc.compiled[output] = true
}

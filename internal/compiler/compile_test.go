package compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dashwire/internal/binding"
	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/identity"
)

// recordingHost collects installed bindings without executing anything.
type recordingHost struct {
	bindings []*binding.Binding
}

func (h *recordingHost) Install(_ context.Context, b *binding.Binding) error {
	h.bindings = append(h.bindings, b)
	return nil
}

func (h *recordingHost) byOutput(t identity.Target) *binding.Binding {
	for _, b := range h.bindings {
		if b.Output == t {
			return b
		}
	}
	return nil
}

func echoHandler(_ context.Context, params map[string]any) (any, error) {
	return params, nil
}

func TestCompileOnePublisherTwoSubscribers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "filterA", identity.Plain("control-1"), "value", "")

	chartOut := identity.NewTarget(identity.Plain("chart-1"), "figure")
	textOut := identity.NewTarget(identity.Plain("text-1"), "children")
	graph.RegisterSubscriber(ctx, "filterA", chartOut, echoHandler)
	graph.RegisterSubscriber(ctx, "filterA", textOut, echoHandler)

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, nil, NewContext()))

	require.Len(t, host.bindings, 2)
	wantInput := binding.Input{ID: identity.Plain("control-1"), Property: "value", StateID: "filterA"}
	for _, b := range host.bindings {
		require.Len(t, b.Inputs, 1)
		assert.Equal(t, wantInput, b.Inputs[0])
	}
	assert.NotNil(t, host.byOutput(chartOut))
	assert.NotNil(t, host.byOutput(textOut))
}

func TestCompileGroupsMultiStateSubscriptionsByDiscoveryOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := depgraph.New()
	// Registration order fixes the input order, not alphabetical order.
	graph.RegisterPublisher(ctx, "zeta", identity.Plain("pz"), "value", "")
	graph.RegisterPublisher(ctx, "alpha", identity.Plain("pa"), "value", "")

	out := identity.NewTarget(identity.Plain("chart-1"), "figure")
	graph.RegisterSubscriber(ctx, "zeta", out, echoHandler)
	graph.RegisterSubscriber(ctx, "alpha", out, echoHandler)

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, nil, NewContext()))

	require.Len(t, host.bindings, 1, "two subscriptions to one output must merge into one binding")
	b := host.bindings[0]
	require.Len(t, b.Inputs, 2)
	assert.Equal(t, "zeta", b.Inputs[0].StateID)
	assert.Equal(t, "alpha", b.Inputs[1].StateID)
}

func TestCompileIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "s1", identity.Plain("p1"), "value", "")
	graph.RegisterSubscriber(ctx, "s1", identity.NewTarget(identity.Plain("chart-1"), "figure"), echoHandler)

	host := &recordingHost{}
	cc := NewContext()
	require.NoError(t, Compile(ctx, host, graph, nil, cc))
	afterFirst := len(host.bindings)
	require.NoError(t, Compile(ctx, host, graph, nil, cc))

	assert.Equal(t, afterFirst, len(host.bindings), "second pass must not double-bind")
}

func TestClearCompiledOutputsAllowsRebinding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "s1", identity.Plain("p1"), "value", "")
	graph.RegisterSubscriber(ctx, "s1", identity.NewTarget(identity.Plain("chart-1"), "figure"), echoHandler)

	host := &recordingHost{}
	cc := NewContext()
	require.NoError(t, Compile(ctx, host, graph, nil, cc))
	cc.ClearCompiledOutputs()
	require.NoError(t, Compile(ctx, host, graph, nil, cc))

	assert.Len(t, host.bindings, 2, "clearing the tracker must allow a fresh binding")
}

func TestCompileDuplicateOutputsFailBeforeInstall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	out := identity.NewTarget(identity.Plain("chart-1"), "figure")
	blockA := block.NewDeclared(block.Spec{BlockID: "a", Output: out, HasOutput: true})
	blockB := block.NewDeclared(block.Spec{BlockID: "b", Output: out, HasOutput: true})

	host := &recordingHost{}
	err := Compile(ctx, host, depgraph.New(), []block.Block{blockA, blockB}, NewContext())

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Len(t, cfgErr.Conflicts, 1)
	assert.Equal(t, out, cfgErr.Conflicts[0].Output)
	assert.Equal(t, "a", cfgErr.Conflicts[0].BlockA)
	assert.Equal(t, "b", cfgErr.Conflicts[0].BlockB)
	assert.Empty(t, host.bindings, "no binding may be installed for a failing pass")
}

func TestCompileDuplicateTemplatedOutputsCollide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Two replicated sections reuse the block name "viewer". Their concrete
	// instance ids differ, but both install under the same templated output.
	blockA := block.NewDeclared(block.Spec{
		BlockID:    "north.viewer",
		Section:    "north",
		Output:     identity.NewTarget(identity.Compound("inst-1", "viewer"), "children"),
		HasOutput:  true,
		Replicated: true,
	})
	blockB := block.NewDeclared(block.Spec{
		BlockID:    "south.viewer",
		Section:    "south",
		Output:     identity.NewTarget(identity.Compound("inst-2", "viewer"), "children"),
		HasOutput:  true,
		Replicated: true,
	})

	host := &recordingHost{}
	err := Compile(ctx, host, depgraph.New(), []block.Block{blockA, blockB}, NewContext())

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Len(t, cfgErr.Conflicts, 1)
	assert.Equal(t, identity.Compound(identity.Wildcard, "viewer"), cfgErr.Conflicts[0].Output.ID)
	assert.Equal(t, "north.viewer", cfgErr.Conflicts[0].BlockA)
	assert.Equal(t, "south.viewer", cfgErr.Conflicts[0].BlockB)
	assert.Empty(t, host.bindings)
}

func TestCompileSharedOutputOptInPermitsDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	out := identity.NewTarget(identity.Plain("chart-1"), "figure")
	blockA := block.NewDeclared(block.Spec{BlockID: "a", Output: out, HasOutput: true, AllowShared: true})
	blockB := block.NewDeclared(block.Spec{BlockID: "b", Output: out, HasOutput: true})

	err := Compile(ctx, &recordingHost{}, depgraph.New(), []block.Block{blockA, blockB}, NewContext())
	assert.NoError(t, err, "one opted-in block is enough to permit the shared output")
}

func TestCompileRejectsControlsWithoutOutputTarget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := block.NewDeclared(block.Spec{
		BlockID: "broken",
		Controls: []block.Control{
			{ID: identity.Plain("broken-x"), Property: "value", Name: "x", Kind: block.KindSlider},
		},
	})

	err := Compile(ctx, &recordingHost{}, depgraph.New(), []block.Block{b}, NewContext())
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "broken")
}

func TestCompileBlockWithControlsAndExternalState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotParams map[string]any
	out := identity.NewTarget(identity.Plain("panel-B"), "figure")
	b := block.NewDeclared(block.Spec{
		BlockID:   "B",
		Output:    out,
		HasOutput: true,
		Controls: []block.Control{
			{ID: identity.Plain("B-x"), Property: "value", Name: "x", Kind: block.KindSlider},
			{ID: identity.Plain("B-y"), Property: "value", Name: "y", Kind: block.KindDropdown, Alias: "year"},
		},
		Update: func(_ context.Context, params map[string]any) (any, error) {
			gotParams = params
			return "updated", nil
		},
	})

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "global-filter", identity.Plain("filter-widget"), "value", "")
	graph.RegisterSubscriber(ctx, "global-filter", out, echoHandler)

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, []block.Block{b}, NewContext()))

	require.Len(t, host.bindings, 1, "block path must produce the only binding for an owned output")
	bnd := host.bindings[0]
	require.Len(t, bnd.Inputs, 3, "external + own inputs")

	// Fixed ordering contract: external first, then own controls in order.
	assert.Equal(t, "global-filter", bnd.Inputs[0].StateID)
	assert.Equal(t, identity.Plain("filter-widget"), bnd.Inputs[0].ID)
	assert.Equal(t, identity.Plain("B-x"), bnd.Inputs[1].ID)
	assert.Equal(t, identity.Plain("B-y"), bnd.Inputs[2].ID)

	// Dispatch parses values in exactly that order and normalizes keys.
	result, err := bnd.Handle(ctx, []any{"2024-01", 10, 2024})
	require.NoError(t, err)
	assert.Equal(t, "updated", result)
	assert.Equal(t, map[string]any{"global-filter": "2024-01", "x": 10, "year": 2024}, gotParams)
}

func TestCompileReplicatedBlockTemplatesOnlyOwnInputs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	out := identity.NewTarget(identity.Compound("inst-1", "panel"), "figure")
	b := block.NewDeclared(block.Spec{
		BlockID:    "B",
		Output:     out,
		HasOutput:  true,
		Replicated: true,
		Controls: []block.Control{
			{ID: identity.Compound("inst-1", "B-x"), Property: "value", Name: "x", Kind: block.KindSlider},
		},
	})

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "global-filter", identity.Plain("filter-widget"), "value", "")
	graph.RegisterSubscriber(ctx, "global-filter", out, echoHandler)

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, []block.Block{b}, NewContext()))

	require.Len(t, host.bindings, 1)
	bnd := host.bindings[0]
	require.Len(t, bnd.Inputs, 2)

	// Cross-section reactivity: the external input keeps its exact ID.
	assert.Equal(t, identity.Plain("filter-widget"), bnd.Inputs[0].ID)
	// The own control is rewritten to its templated form.
	assert.Equal(t, identity.Compound(identity.Wildcard, "B-x"), bnd.Inputs[1].ID)
	// The compound output is installed templated, role preserved.
	assert.Equal(t, identity.Compound(identity.Wildcard, "panel"), bnd.Output.ID)
}

func TestCompileBlockWithControlsOwnsItsOutputFully(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	out := identity.NewTarget(identity.Plain("panel-B"), "figure")
	b := block.NewDeclared(block.Spec{
		BlockID:   "B",
		Output:    out,
		HasOutput: true,
		Controls: []block.Control{
			{ID: identity.Plain("B-x"), Property: "value", Name: "x", Kind: block.KindSlider},
		},
	})

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "s1", identity.Plain("p1"), "value", "")
	graph.RegisterPublisher(ctx, "s2", identity.Plain("p2"), "value", "")
	graph.RegisterSubscriber(ctx, "s1", out, echoHandler)
	graph.RegisterSubscriber(ctx, "s2", out, echoHandler)

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, []block.Block{b}, NewContext()))

	require.Len(t, host.bindings, 1, "the grouped path must skip an output owned by a block with controls")
	assert.Equal(t, "B", host.bindings[0].BlockID)
	// Both external states plus the own control.
	assert.Len(t, host.bindings[0].Inputs, 3)
}

func TestCompiledHandlerDegradesToFallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "s1", identity.Plain("p1"), "value", "")
	graph.RegisterSubscriber(ctx, "s1",
		identity.NewTarget(identity.Plain("chart-1"), "figure"),
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("boom")
		})

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, nil, NewContext()))
	require.Len(t, host.bindings, 1)

	got, err := host.bindings[0].Handle(ctx, []any{"anything"})
	require.NoError(t, err, "the execution wrapper must contain the failure")
	_, isFigure := got.(map[string]any)
	assert.True(t, isFigure, "a figure output degrades to the figure placeholder")
}

func TestCompileGroupedHandlerAppliesAliases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotParams map[string]any
	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "date_range", identity.Plain("picker"), "value", "dates")
	graph.RegisterSubscriber(ctx, "date_range",
		identity.NewTarget(identity.Plain("chart-1"), "figure"),
		func(_ context.Context, params map[string]any) (any, error) {
			gotParams = params
			return nil, nil
		})

	host := &recordingHost{}
	require.NoError(t, Compile(ctx, host, graph, nil, NewContext()))
	require.Len(t, host.bindings, 1)

	_, err := host.bindings[0].Handle(ctx, []any{"jan..mar"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dates": "jan..mar"}, gotParams)
}

func TestIndependentContextsCompileIndependently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	build := func() (*depgraph.Store, *recordingHost) {
		g := depgraph.New()
		g.RegisterPublisher(ctx, "s1", identity.Plain("p1"), "value", "")
		g.RegisterSubscriber(ctx, "s1", identity.NewTarget(identity.Plain("chart-1"), "figure"), echoHandler)
		return g, &recordingHost{}
	}

	graphA, hostA := build()
	graphB, hostB := build()

	require.NoError(t, Compile(ctx, hostA, graphA, nil, NewContext()))
	require.NoError(t, Compile(ctx, hostB, graphB, nil, NewContext()))

	assert.Len(t, hostA.bindings, 1)
	assert.Len(t, hostB.bindings, 1, "a second dashboard in the same process compiles independently")
}

func TestLazySectionPassAddsOnlyNewBindings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := depgraph.New()
	graph.RegisterPublisher(ctx, "s1", identity.Plain("p1"), "value", "")
	graph.RegisterSubscriber(ctx, "s1", identity.NewTarget(identity.Plain("chart-1"), "figure"), echoHandler)

	host := &recordingHost{}
	cc := NewContext()
	require.NoError(t, Compile(ctx, host, graph, nil, cc))
	require.Len(t, host.bindings, 1)

	// A lazily shown section contributes one more subscriber.
	graph.RegisterSubscriber(ctx, "s1", identity.NewTarget(identity.Plain("late-chart"), "figure"), echoHandler)
	require.NoError(t, Compile(ctx, host, graph, nil, cc))

	require.Len(t, host.bindings, 2, "re-compilation adds the new output and leaves the old binding alone")
}

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dashwire/internal/config"
)

func noop(_ context.Context, _ map[string]any) (any, error) { return nil, nil }

func TestRegisterAndLookup(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterHandler("charts.render", noop)

	fn, ok := r.Handler("charts.render")
	require.True(t, ok)
	assert.NotNil(t, fn)

	_, ok = r.Handler("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterHandler("dup", noop)
	assert.Panics(t, func() { r.RegisterHandler("dup", noop) })
}

func TestValidateReportsEveryMissingHandler(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterHandler("known", noop)

	model := &config.Model{Sections: []*config.Section{{
		Name: "s",
		Blocks: []*config.Block{
			{Name: "a", Handler: "known"},
			{Name: "b", Handler: "missing-update"},
			{Name: "c", Subscribes: []*config.Subscription{{StateID: "region", Handler: "missing-sub"}}},
		},
	}}}

	err := r.Validate(context.Background(), model)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-update")
	assert.Contains(t, err.Error(), "missing-sub")
}

func TestValidatePassesWhenAllHandlersExist(t *testing.T) {
	t.Parallel()
	r := New()
	r.RegisterHandler("known", noop)

	model := &config.Model{Sections: []*config.Section{{
		Name: "s",
		Blocks: []*config.Block{
			{Name: "a", Handler: "known", Subscribes: []*config.Subscription{{StateID: "region", Handler: "known"}}},
		},
	}}}

	require.NoError(t, r.Validate(context.Background(), model))
}

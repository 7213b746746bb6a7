package textpanel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSortsKeys(t *testing.T) {
	t.Parallel()
	out, err := Render(context.Background(), map[string]any{"zeta": 1, "alpha": "x"})
	require.NoError(t, err)
	assert.Equal(t, "alpha: x\nzeta: 1", out)
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()
	out, err := Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "(no data)", out)
}

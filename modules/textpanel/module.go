package textpanel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/dashwire/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Render is the handler for the 'textpanel.render' subscription. It formats
// the current parameter values as one line per key, sorted for stable
// output.
func Render(ctx context.Context, params map[string]any) (any, error) {
	if len(params) == 0 {
		return "(no data)", nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, params[k])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("textpanel.render", Render)
}

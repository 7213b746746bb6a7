package barchart

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/dashwire/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Render is the handler for the 'barchart.render' subscription. Numeric
// parameter values become bars; everything else is folded into the title so
// filter selections remain visible on the chart.
func Render(ctx context.Context, params map[string]any) (any, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var x []any
	var y []any
	title := ""
	for _, k := range keys {
		switch v := params[k].(type) {
		case int:
			x, y = append(x, k), append(y, v)
		case int64:
			x, y = append(x, k), append(y, v)
		case float64:
			x, y = append(x, k), append(y, v)
		default:
			if title != "" {
				title += ", "
			}
			title += fmt.Sprintf("%s=%v", k, v)
		}
	}

	return map[string]any{
		"data": []any{map[string]any{
			"type": "bar",
			"x":    x,
			"y":    y,
		}},
		"layout": map[string]any{"title": title},
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("barchart.render", Render)
}

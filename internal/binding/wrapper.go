package binding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/identity"
	"github.com/vk/dashwire/internal/metric"
)

// Fallback returns the safe value an output degrades to when its handler
// fails, chosen by what the output property represents: an empty placeholder
// figure for charts, an error string for text content, nil otherwise.
func Fallback(property string) any {
	switch property {
	case "figure":
		return ErrorFigure("An error occurred while loading this chart")
	case "children":
		return "Error loading content"
	default:
		return nil
	}
}

// ErrorFigure builds an empty figure-shaped placeholder carrying an error
// annotation, so a failing chart renders as an inline message instead of
// disappearing.
func ErrorFigure(message string) map[string]any {
	return map[string]any{
		"data": []any{},
		"layout": map[string]any{
			"title": "Error loading chart",
			"annotations": []any{
				map[string]any{"text": message, "showarrow": false},
			},
		},
	}
}

// Wrap contains every failure mode of the inner handler:
//
//   - ErrNoUpdate propagates unchanged; the host treats it as a skip.
//   - Any other returned error is logged with block and output context and
//     converted to the output's fallback value.
//   - A panic inside the handler is recovered and treated the same way.
//
// The wrapped handler therefore never fails the dispatch, so one broken
// block cannot break its siblings.
func Wrap(blockID string, output identity.Target, m *metric.Metrics, inner HandlerFunc) HandlerFunc {
	return func(ctx context.Context, values []any) (result any, err error) {
		logger := ctxlog.FromContext(ctx)
		start := time.Now()

		defer func() {
			m.ObserveDispatch(blockID, time.Since(start))
			if r := recover(); r != nil {
				logger.Error("Handler panicked, degrading to fallback value.",
					"block", blockID, "output", output.String(), "panic", fmt.Sprintf("%v", r))
				m.ObserveHandlerError(blockID)
				result = Fallback(output.Property)
				err = nil
			}
		}()

		result, err = inner(ctx, values)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrNoUpdate) {
			logger.Debug("Handler signalled no update.", "block", blockID, "output", output.String())
			return nil, err
		}

		logger.Error("Handler failed, degrading to fallback value.",
			"block", blockID, "output", output.String(), "error", err)
		m.ObserveHandlerError(blockID)
		return Fallback(output.Property), nil
	}
}

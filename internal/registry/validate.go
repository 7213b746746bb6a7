package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/dashwire/internal/config"
	"github.com/vk/dashwire/internal/ctxlog"
)

// Validate performs a strict parity check between the loaded configuration
// and the compiled Go handlers: every handler name a declaration references
// must be registered.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, sec := range model.Sections {
		for _, b := range sec.Blocks {
			if b.Handler != "" {
				if _, ok := r.handlers[b.Handler]; !ok {
					errs = append(errs, fmt.Sprintf("block '%s': handler '%s' is not registered", b.Name, b.Handler))
				}
			}
			for _, sub := range b.Subscribes {
				if _, ok := r.handlers[sub.Handler]; !ok {
					errs = append(errs, fmt.Sprintf("block '%s': subscription to state '%s' names unregistered handler '%s'", b.Name, sub.StateID, sub.Handler))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n\t- %s", strings.Join(errs, "\n\t- "))
	}

	logger.Debug("Registry validation passed.", "handlers", len(r.handlers))
	return nil
}

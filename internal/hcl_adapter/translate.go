// This file translates the HCL schema structs into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/config"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/schema"
)

func translateDashboard(d *schema.Dashboard) *config.Dashboard {
	return &config.Dashboard{
		Name:   d.Name,
		Title:  d.Title,
		Listen: d.Listen,
	}
}

func (l *Loader) translateSection(ctx context.Context, s *schema.Section) (*config.Section, error) {
	logger := ctxlog.FromContext(ctx).With("section", s.Name)
	logger.Debug("Translating HCL section to internal config model.")

	sec := &config.Section{
		Name:       s.Name,
		Replicated: s.Replicated,
		Lazy:       s.Lazy,
	}
	seen := make(map[string]struct{}, len(s.Blocks))
	for _, b := range s.Blocks {
		if _, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("in section %q: duplicate block %q", s.Name, b.Name)
		}
		seen[b.Name] = struct{}{}

		translated, err := l.translateBlock(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("in section %q: %w", s.Name, err)
		}
		sec.Blocks = append(sec.Blocks, translated)
	}
	return sec, nil
}

func (l *Loader) translateBlock(ctx context.Context, b *schema.Block) (*config.Block, error) {
	out := &config.Block{
		Name:        b.Name,
		AllowShared: b.AllowShared,
		Handler:     b.Handler,
	}
	if b.Output != nil {
		out.OutputProperty = b.Output.Property
		out.HasOutput = true
	}

	for _, c := range b.Controls {
		translated, err := translateControl(c)
		if err != nil {
			return nil, fmt.Errorf("in block %q: %w", b.Name, err)
		}
		out.Controls = append(out.Controls, translated)
	}

	for _, p := range b.Publishes {
		property := p.Property
		if property == "" {
			property = "value"
		}
		pub := &config.Publication{
			StateID:  p.StateID,
			Property: property,
			Alias:    p.Alias,
		}
		if p.Default != nil {
			val, diags := p.Default.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("in block %q: publish %q: evaluating default: %w", b.Name, p.StateID, diags)
			}
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in block %q: publish %q: converting default: %w", b.Name, p.StateID, err)
			}
			pub.Default = native
		}
		out.Publishes = append(out.Publishes, pub)
	}

	for _, sub := range b.Subscribes {
		handler := sub.Handler
		if handler == "" {
			handler = b.Handler
		}
		if handler == "" {
			return nil, fmt.Errorf("in block %q: subscription to state %q names no handler and the block has none", b.Name, sub.StateID)
		}
		out.Subscribes = append(out.Subscribes, &config.Subscription{
			StateID: sub.StateID,
			Handler: handler,
		})
	}

	return out, nil
}

func translateControl(c *schema.Control) (*config.Control, error) {
	if _, err := block.ParseKind(c.Kind); err != nil {
		return nil, fmt.Errorf("control %q: %w", c.Name, err)
	}

	property := c.Property
	if property == "" {
		property = "value"
	}

	translated := &config.Control{
		Name:     c.Name,
		Kind:     c.Kind,
		Property: property,
		Alias:    c.Alias,
	}

	if c.Default != nil {
		val, diags := c.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("control %q: evaluating default: %w", c.Name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("control %q: converting default: %w", c.Name, err)
		}
		translated.Default = native
	}

	return translated, nil
}

package app

import (
	"context"
	"fmt"

	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/compiler"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/gateway"
)

// Compile assembles all eager sections, registers lazy ones with the
// runtime, and runs the binding compilation pass. It must run once before
// Run or ShowSection.
func (a *App) Compile(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	var eager []block.Block
	for _, sec := range a.config.Sections {
		if sec.Lazy || sec.Replicated {
			sec := sec
			a.runtime.RegisterSection(sec.Name, func(ctx context.Context, instanceID string) ([]block.Block, error) {
				return a.assembleSection(sec, instanceID)
			})
			a.logger.Debug("Registered deferred section.", "section", sec.Name, "replicated", sec.Replicated)
			continue
		}

		blocks, err := a.assembleSection(sec, "")
		if err != nil {
			return err
		}
		eager = append(eager, blocks...)
	}

	a.registerBlocks(ctx, eager)
	a.blocks = append(a.blocks, eager...)

	if err := compiler.Compile(ctx, a.runtime, a.graph, a.blocks, a.cc); err != nil {
		return fmt.Errorf("binding compilation failed: %w", err)
	}

	a.runtime.Seed(ctx, a.graph)
	a.seedBlockDefaults(ctx, eager)
	return nil
}

// ShowSection loads a deferred section on demand. The first request for a
// section assembles its blocks, registers them with the dependency graph and
// re-runs compilation; already-bound outputs are skipped, so the pass is
// purely additive.
func (a *App) ShowSection(ctx context.Context, name string) (bool, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	blocks, first, err := a.runtime.ShowSection(ctx, name)
	if err != nil {
		return false, err
	}
	if !first {
		return false, nil
	}

	a.registerBlocks(ctx, blocks)
	a.blocks = append(a.blocks, blocks...)

	if err := compiler.Compile(ctx, a.runtime, a.graph, a.blocks, a.cc); err != nil {
		return true, fmt.Errorf("binding compilation for section %q failed: %w", name, err)
	}

	a.seedBlockDefaults(ctx, blocks)
	return true, nil
}

// Run compiles the dashboard and serves the WebSocket gateway until the
// context is cancelled. When no listen address is configured, Run compiles
// and returns, which keeps one-shot validation invocations cheap.
func (a *App) Run(ctx context.Context, appConfig *AppConfig) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.Compile(ctx); err != nil {
		return err
	}

	listen := appConfig.Listen
	if listen == "" && a.config.Dashboard != nil {
		listen = a.config.Dashboard.Listen
	}
	if listen == "" {
		a.logger.Warn("No listen address configured, compilation finished without serving.")
		return nil
	}

	gw := gateway.New(a.runtime, a.ShowSection)
	return gw.ListenAndServe(ctx, listen)
}

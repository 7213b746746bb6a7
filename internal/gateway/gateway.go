// Package gateway exposes a dashboard runtime over WebSocket. Clients send
// control events and section requests; every binding output the runtime
// produces is broadcast back to all connected clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/identity"
	"github.com/vk/dashwire/internal/localruntime"
)

// Event is one client-originated message.
//
// Supported types:
//   - "event": a control value changed; Component/Property/Value are set.
//     Section and Role identify a replicated component instead of Component.
//   - "show_section": the client requests a lazily loaded section by name.
type Event struct {
	Type      string `json:"type"`
	Component string `json:"component,omitempty"`
	Section   string `json:"section,omitempty"`
	Role      string `json:"role,omitempty"`
	Property  string `json:"property,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// Update is one server-originated message carrying a freshly computed
// component property.
type Update struct {
	Type      string `json:"type"`
	Component string `json:"component,omitempty"`
	Section   string `json:"section,omitempty"`
	Role      string `json:"role,omitempty"`
	Property  string `json:"property"`
	Value     any    `json:"value"`
}

// ShowSectionFunc loads a section on behalf of a client and reports whether
// this request created it. The app layer uses the hook to re-run binding
// compilation for newly loaded sections.
type ShowSectionFunc func(ctx context.Context, name string) (first bool, err error)

// Gateway bridges WebSocket clients and a local runtime.
type Gateway struct {
	rt          *localruntime.Runtime
	showSection ShowSectionFunc
	upgrader    websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// New creates a gateway over the given runtime and subscribes to its binding
// outputs. showSection may be nil when the dashboard has no lazy sections.
func New(rt *localruntime.Runtime, showSection ShowSectionFunc) *Gateway {
	g := &Gateway{
		rt:          rt,
		showSection: showSection,
		clients:     make(map[*websocket.Conn]struct{}),
	}
	rt.OnUpdate(func(target identity.Target, value any) {
		g.broadcast(updateFor(target, value))
	})
	return g
}

func updateFor(target identity.Target, value any) Update {
	u := Update{Type: "update", Property: target.Property, Value: value}
	if target.ID.IsCompound() {
		u.Section = target.ID.Section
		u.Role = target.ID.Role
	} else {
		u.Component = target.ID.Name
	}
	return u
}

func (e Event) componentID() identity.ID {
	if e.Section != "" && e.Role != "" {
		return identity.Compound(e.Section, e.Role)
	}
	return identity.Plain(e.Component)
}

// Handler returns the HTTP handler that upgrades connections and serves the
// event loop.
func (g *Gateway) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := ctxlog.FromContext(r.Context())

		conn, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("WebSocket upgrade failed.", "remote", r.RemoteAddr, "error", err)
			return
		}

		g.register(conn)
		logger.Debug("Client connected.", "remote", r.RemoteAddr)
		defer func() {
			g.unregister(conn)
			conn.Close()
			logger.Debug("Client disconnected.", "remote", r.RemoteAddr)
		}()

		g.readLoop(r.Context(), conn)
	})
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn) {
	logger := ctxlog.FromContext(ctx)

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, net.ErrClosed) {
				logger.Warn("Client read failed.", "error", err)
			}
			return
		}

		switch ev.Type {
		case "event":
			g.rt.SetValue(ctx, ev.componentID(), ev.Property, ev.Value)
		case "show_section":
			if g.showSection == nil {
				logger.Warn("Section request received but no section loader is configured.", "section", ev.Section)
				continue
			}
			if _, err := g.showSection(ctx, ev.Section); err != nil {
				logger.Error("Section load failed.", "section", ev.Section, "error", err)
			}
		default:
			logger.Warn("Ignoring message of unknown type.", "type", ev.Type)
		}
	}
}

func (g *Gateway) register(conn *websocket.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[conn] = struct{}{}
}

func (g *Gateway) unregister(conn *websocket.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, conn)
}

func (g *Gateway) broadcast(u Update) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for conn := range g.clients {
		if err := conn.WriteJSON(u); err != nil {
			conn.Close()
			delete(g.clients, conn)
		}
	}
}

// ListenAndServe runs an HTTP server for the gateway until ctx is cancelled.
func (g *Gateway) ListenAndServe(ctx context.Context, addr string) error {
	logger := ctxlog.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", g.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Gateway listening.", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gateway shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway serve: %w", err)
	}
}

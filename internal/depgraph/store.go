package depgraph

import (
	"context"

	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/identity"
)

// Handler recomputes a subscriber's output value from the normalized
// {canonical name: value} map built at dispatch time.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Subscriber is one consumer of a state: the output it writes and the handler
// that produces the new value.
type Subscriber struct {
	Output identity.Target
	Handle Handler
}

// state is one entry of the dependency graph. publisher is nil for
// placeholder entries created when a subscriber registered first.
type state struct {
	publisher   *identity.Target
	alias       string
	value       any
	hasValue    bool
	subscribers []Subscriber
}

// Store is the dependency graph, keyed by state identifier.
type Store struct {
	states map[string]*state
	order  []string
}

// New returns an empty store.
func New() *Store {
	return &Store{states: make(map[string]*state)}
}

func (s *Store) entry(stateID string) *state {
	st, ok := s.states[stateID]
	if !ok {
		st = &state{}
		s.states[stateID] = st
		s.order = append(s.order, stateID)
	}
	return st
}

// RegisterPublisher records the component property that is authoritative for
// stateID. Calling it again for the same state overwrites the previous
// publisher (last write wins), which keeps re-declaration idempotent when a
// section's blocks are recreated on a fresh load. A non-empty alias becomes
// the canonical parameter name handlers receive for this state.
func (s *Store) RegisterPublisher(ctx context.Context, stateID string, id identity.ID, property, alias string) {
	logger := ctxlog.FromContext(ctx)

	st := s.entry(stateID)
	target := identity.NewTarget(id, property)
	st.publisher = &target
	if alias != "" {
		st.alias = alias
	}

	logger.Debug("Publisher registered.", "state", stateID, "target", target.String(), "alias", alias)
}

// RegisterSubscriber appends a subscriber to stateID. If the state does not
// exist yet a publisher-less placeholder entry is created, so blocks that
// must render once even though nothing ever publishes are still declarable.
// It never fails.
func (s *Store) RegisterSubscriber(ctx context.Context, stateID string, output identity.Target, fn Handler) {
	logger := ctxlog.FromContext(ctx)

	st := s.entry(stateID)
	st.subscribers = append(st.subscribers, Subscriber{Output: output, Handle: fn})

	logger.Debug("Subscriber registered.",
		"state", stateID, "output", output.String(), "total", len(st.subscribers))
}

// Publisher returns the publishing target for stateID, if one was registered.
func (s *Store) Publisher(stateID string) (identity.Target, bool) {
	st, ok := s.states[stateID]
	if !ok || st.publisher == nil {
		return identity.Target{}, false
	}
	return *st.publisher, true
}

// Alias returns the canonical parameter name declared for stateID, if any.
func (s *Store) Alias(stateID string) (string, bool) {
	st, ok := s.states[stateID]
	if !ok || st.alias == "" {
		return "", false
	}
	return st.alias, true
}

// SetPublisherValue records the last value the host runtime observed for a
// state, for initial-render synchronization before the first event arrives.
func (s *Store) SetPublisherValue(stateID string, v any) {
	st := s.entry(stateID)
	st.value = v
	st.hasValue = true
}

// PublisherValue returns the last known value for stateID. ok is false while
// the value is still unknown.
func (s *Store) PublisherValue(stateID string) (any, bool) {
	st, exists := s.states[stateID]
	if !exists || !st.hasValue {
		return nil, false
	}
	return st.value, true
}

// InitialValues returns the last known value per state, nil where no value
// has been observed yet.
func (s *Store) InitialValues() map[string]any {
	values := make(map[string]any, len(s.states))
	for id, st := range s.states {
		if st.hasValue {
			values[id] = st.value
		} else {
			values[id] = nil
		}
	}
	return values
}

// StateIDs returns all state identifiers in first-registration order.
func (s *Store) StateIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Subscribers returns the subscriber list for stateID in registration order.
func (s *Store) Subscribers(stateID string) []Subscriber {
	st, ok := s.states[stateID]
	if !ok {
		return nil
	}
	return st.subscribers
}

// HasState reports whether stateID exists in the graph.
func (s *Store) HasState(stateID string) bool {
	_, ok := s.states[stateID]
	return ok
}

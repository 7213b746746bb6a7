package config

// Model is the unified, format-agnostic representation of the entire
// dashboard configuration.
type Model struct {
	Dashboard *Dashboard
	Sections  []*Section
}

// Dashboard carries the top-level settings of a dashboard declaration.
type Dashboard struct {
	Name   string
	Title  string
	Listen string
}

// Section is the format-agnostic representation of a `section` block. A
// replicated section may be instantiated more than once; a lazy section is
// built on first request instead of at startup.
type Section struct {
	Name       string
	Replicated bool
	Lazy       bool
	Blocks     []*Block
}

// Block is the format-agnostic representation of a `block` declaration.
// Handler names refer to Go functions registered with the registry; the app
// layer resolves them when assembling runtime blocks.
type Block struct {
	Name           string
	OutputProperty string
	HasOutput      bool
	AllowShared    bool
	Handler        string
	Controls       []*Control
	Publishes      []*Publication
	Subscribes     []*Subscription
}

// Control is the format-agnostic representation of a `control` block.
// Default holds a native Go value already converted from the source format.
type Control struct {
	Name     string
	Kind     string
	Property string
	Alias    string
	Default  any
}

// Publication declares that a block's component property feeds a named
// state. Default, when non-nil, is the state's initial value.
type Publication struct {
	StateID  string
	Property string
	Alias    string
	Default  any
}

// Subscription declares that a block listens to a named state, naming the
// registered Go handler that computes the block's output.
type Subscription struct {
	StateID string
	Handler string
}

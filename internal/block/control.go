package block

import (
	"fmt"

	"github.com/vk/dashwire/internal/identity"
)

// Kind is the closed set of control flavors a block can own. It is resolved
// once at block construction; downstream code switches on it instead of
// inspecting widget types.
type Kind int

const (
	KindDropdown Kind = iota
	KindTextInput
	KindSlider
	KindToggle
)

var kindNames = map[Kind]string{
	KindDropdown:  "dropdown",
	KindTextInput: "text_input",
	KindSlider:    "slider",
	KindToggle:    "toggle",
}

// String returns the declaration-file spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a declaration-file spelling to its Kind.
func ParseKind(s string) (Kind, error) {
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown control kind %q (expected one of dropdown, text_input, slider, toggle)", s)
}

// Control is one UI input a block owns.
type Control struct {
	// ID is the control's UI component identifier. For blocks declared from
	// dashboard files it is derived as "<blockID>-<name>".
	ID identity.ID

	// Property is the component property that carries the control's value,
	// normally "value".
	Property string

	// Name is the control's short name, the suffix-derived canonical default.
	Name string

	// Kind selects the control flavor from the closed enum above.
	Kind Kind

	// Alias, when non-empty, overrides Name as the canonical parameter name
	// the block's update handler receives.
	Alias string

	// Default seeds the control's value before the first event.
	Default any
}

// Target returns the control's input target.
func (c Control) Target() identity.Target {
	return identity.NewTarget(c.ID, c.Property)
}

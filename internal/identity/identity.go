package identity

import "fmt"

// Wildcard is the placeholder value a templated ID carries in its section
// field until dispatch supplies the enclosing section instance.
const Wildcard = "*"

// ID identifies a single UI component. Exactly one of the two shapes is
// populated: Name for plain IDs, Section+Role for compound IDs. The zero
// value is not a valid ID.
type ID struct {
	Name    string
	Section string
	Role    string
}

// Plain returns a concrete string ID.
func Plain(name string) ID {
	return ID{Name: name}
}

// Compound returns a {section, role} ID bound to a concrete section instance.
func Compound(section, role string) ID {
	return ID{Section: section, Role: role}
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.Name == "" && id.Section == "" && id.Role == ""
}

// IsCompound reports whether the ID has the {section, role} shape.
func (id ID) IsCompound() bool {
	return id.Role != ""
}

// IsTemplated reports whether the ID is a compound ID whose section field is
// the wildcard placeholder.
func (id ID) IsTemplated() bool {
	return id.IsCompound() && id.Section == Wildcard
}

// Templated rewrites the ID to its templated form, keeping the role and
// replacing the section with the wildcard placeholder. A plain ID becomes a
// compound ID whose role is the original name. The rewrite is pure; the
// receiver is unchanged.
func (id ID) Templated() ID {
	if id.IsCompound() {
		return ID{Section: Wildcard, Role: id.Role}
	}
	return ID{Section: Wildcard, Role: id.Name}
}

// Resolve substitutes a concrete section instance for the wildcard. Concrete
// IDs pass through unchanged.
func (id ID) Resolve(section string) ID {
	if !id.IsTemplated() {
		return id
	}
	return ID{Section: section, Role: id.Role}
}

// RoleName returns the identifier used for parameter-name derivation: the
// role for compound IDs, the name for plain IDs.
func (id ID) RoleName() string {
	if id.IsCompound() {
		return id.Role
	}
	return id.Name
}

// Matches reports whether an event delivered for the concrete ID `event`
// should feed this ID. A concrete ID matches only itself. A templated ID
// matches any section instance carrying its role.
func (id ID) Matches(event ID) bool {
	if id.IsTemplated() {
		return event.IsCompound() && event.Role == id.Role
	}
	return id == event
}

// String renders the canonical key form: "name" for plain IDs and
// "section:role" for compound IDs. Distinct IDs render to distinct strings,
// so the result is usable as a map key or log field.
func (id ID) String() string {
	if id.IsCompound() {
		return id.Section + ":" + id.Role
	}
	return id.Name
}

// Target names one UI-exposed value: a component plus one of its properties.
// Targets are comparable and used directly as map keys.
type Target struct {
	ID       ID
	Property string
}

// NewTarget constructs a Target from an ID and property name.
func NewTarget(id ID, property string) Target {
	return Target{ID: id, Property: property}
}

// Templated rewrites the target's component ID to its templated form. The
// property is never templated.
func (t Target) Templated() Target {
	return Target{ID: t.ID.Templated(), Property: t.Property}
}

// Resolve substitutes a concrete section instance into a templated target.
func (t Target) Resolve(section string) Target {
	return Target{ID: t.ID.Resolve(section), Property: t.Property}
}

// String renders "id.property" for error messages and logs.
func (t Target) String() string {
	return fmt.Sprintf("%s.%s", t.ID, t.Property)
}

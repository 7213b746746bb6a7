// Package identity models the identifiers of UI-exposed component values.
//
// Two shapes exist. A plain ID is a single string, unique across the whole
// dashboard. A compound ID is a {section, role} pair used for components that
// live inside a section which can be cloned at runtime: the section field
// names the enclosing section instance and the role field names the
// component's job within it.
//
// A compound ID whose section field holds Wildcard is templated: it stands
// for "this role in whichever section instance the event came from" and is
// resolved against a concrete section instance at dispatch time. Templated
// IDs never match across section instances; concrete IDs (plain or compound)
// are valid dashboard-wide, including across dynamically loaded sections.
package identity

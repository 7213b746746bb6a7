// Package keynorm maps the raw keys a binding produces at dispatch time
// (state identifiers, templated compound keys, block-local control
// identifiers like "blockId-controlName") to the canonical parameter names a
// handler receives.
//
// The mapping is total and stable: every raw key resolves to exactly one
// canonical name, declared aliases take precedence over positional
// derivation, and unrecognized keys pass through unchanged so external
// parameters added later keep flowing.
package keynorm

import "strings"

// separator splits block-local control identifiers; the substring after the
// last separator is the control's short name. Suffix derivation is the
// fallback convention; an explicit alias always wins.
const separator = "-"

// Config declares what the normalizer knows about the binding it serves.
type Config struct {
	// StateAliases maps every external state identifier that can appear as a
	// raw key to its declared alias, or "" when the state has none.
	StateAliases map[string]string

	// ControlAliases maps the short name of each of the owning block's
	// controls to its declared alias, or "" when the control has none.
	ControlAliases map[string]string
}

// Normalizer rewrites one raw-key map per dispatch. It is immutable after
// construction and safe to share across invocations.
type Normalizer struct {
	cfg Config
}

// New builds a normalizer from the given declarations.
func New(cfg Config) *Normalizer {
	if cfg.StateAliases == nil {
		cfg.StateAliases = map[string]string{}
	}
	if cfg.ControlAliases == nil {
		cfg.ControlAliases = map[string]string{}
	}
	return &Normalizer{cfg: cfg}
}

// Canonical resolves a single raw key to its canonical parameter name.
func (n *Normalizer) Canonical(rawKey string) string {
	// Known external state: alias if declared, else the state id itself.
	if alias, known := n.cfg.StateAliases[rawKey]; known {
		if alias != "" {
			return alias
		}
		return rawKey
	}

	// Block-local control identifier: derive the short name from the suffix,
	// then let a declared alias override it.
	if strings.Contains(rawKey, separator) {
		short := rawKey[strings.LastIndex(rawKey, separator)+len(separator):]
		if alias, known := n.cfg.ControlAliases[short]; known {
			if alias != "" {
				return alias
			}
			return short
		}
	}

	// Unrecognized keys pass through unchanged.
	return rawKey
}

// Normalize rewrites every key of the raw value map. Values are untouched.
func (n *Normalizer) Normalize(raw map[string]any) map[string]any {
	normalized := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized[n.Canonical(key)] = value
	}
	return normalized
}

package value

import (
	"encoding/json"
	"strings"
)

// Interpretation is a ranked result of parsing raw input into a typed
// value. Interpretations are created fresh per request and never mutated.
type Interpretation struct {
	// Value is the parsed value in canonical form.
	Value Value `json:"value"`
	// SourceFormat is the ID of the provider that produced this
	// interpretation (e.g. "hex", "base64").
	SourceFormat string `json:"source_format"`
	// Confidence in [0,1]. Computed from structural signal strength,
	// never a per-format constant: explicit markers score >=0.9,
	// plausible-but-ambiguous input 0.5-0.89, fallbacks below 0.5.
	Confidence float64 `json:"confidence"`
	// Description is a short human-readable summary.
	Description string `json:"description"`
}

// ConversionKind distinguishes true transformations from re-notations and
// observations.
type ConversionKind int

const (
	// KindConversion is an actual transformation (bytes -> int).
	KindConversion ConversionKind = iota
	// KindRepresentation is the same value in different notation
	// (1024 -> 0x400). Always display-only.
	KindRepresentation
	// KindTrait is an observation producing no navigable value
	// ("is prime"). Always display-only.
	KindTrait
)

func (k ConversionKind) String() string {
	switch k {
	case KindRepresentation:
		return "Representation"
	case KindTrait:
		return "Trait"
	default:
		return "Conversion"
	}
}

// MarshalJSON serializes the kind as its name.
func (k ConversionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind name (case-insensitive).
func (k *ConversionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "representation":
		*k = KindRepresentation
	case "trait":
		*k = KindTrait
	default:
		*k = KindConversion
	}
	return nil
}

// Priority buckets conversions for output ordering. Lower sorts earlier
// under the default category order.
type Priority int

const (
	// PriorityPrimary marks the canonical result (expression values).
	PriorityPrimary Priority = iota
	// PriorityStructured marks structured data (JSON, XML documents).
	PriorityStructured
	// PrioritySemantic marks meaningful interpretations (timestamps,
	// UUIDs, IPs).
	PrioritySemantic
	// PriorityEncoding marks alternate encodings (hex, base64).
	PriorityEncoding
	// PriorityRaw marks low-level representations (bytes, plain ints).
	PriorityRaw
)

func (p Priority) String() string {
	switch p {
	case PriorityPrimary:
		return "Primary"
	case PriorityStructured:
		return "Structured"
	case PrioritySemantic:
		return "Semantic"
	case PriorityEncoding:
		return "Encoding"
	default:
		return "Raw"
	}
}

// ParsePriority resolves a bucket name case-insensitively. The second
// return is false for unknown names.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(s) {
	case "primary":
		return PriorityPrimary, true
	case "structured":
		return PriorityStructured, true
	case "semantic":
		return PrioritySemantic, true
	case "encoding":
		return PriorityEncoding, true
	case "raw":
		return PriorityRaw, true
	default:
		return PriorityEncoding, false
	}
}

// MarshalJSON serializes the priority as its bucket name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a bucket name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, _ := ParsePriority(s)
	*p = parsed
	return nil
}

// Conversion is an edge result of the graph traversal: a value reachable
// from an Interpretation together with its derivation path and
// classification. DisplayOnly and Hidden are internal traversal controls
// and are omitted from the public serialization.
type Conversion struct {
	Value        Value          `json:"value"`
	TargetFormat string         `json:"target_format"`
	// Display is the rendered text for this conversion.
	Display string `json:"display"`
	// Path lists the format IDs from the root interpretation to this
	// result. Path[0] is always the root's source format.
	Path    []string       `json:"path"`
	IsLossy bool           `json:"is_lossy"`
	Kind    ConversionKind `json:"kind"`
	Priority Priority      `json:"priority"`
	// DisplayOnly edges are recorded in results but never expanded
	// further, so representational detours cannot re-enter the search.
	DisplayOnly bool `json:"-"`
	// Hidden edges exist only to enable deeper chains and are excluded
	// from user-facing output.
	Hidden bool `json:"-"`
}

// Result pairs one Interpretation with the full ordered conversion list
// discovered from it.
type Result struct {
	Input          string         `json:"input"`
	Interpretation Interpretation `json:"interpretation"`
	Conversions    []Conversion   `json:"conversions"`
}

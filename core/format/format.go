// Package format defines the capability interface implemented by every
// format provider and the ordered registry the engine consumes them from.
package format

import (
	"context"

	"github.com/FocuswithJustin/DataLens/core/value"
)

// Info describes a provider for help output and the formats listing.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// Format is the uniform capability interface for format providers.
//
// Providers are stateless or internally synchronized; the engine may call
// them from concurrent requests. None of the methods return errors:
// "does not apply" is an empty slice, and failures inside a provider
// (including I/O timeouts) must degrade to an empty result rather than
// propagate.
type Format interface {
	// ID returns the stable identifier used as a path element and as a
	// blocking-table key.
	ID() string

	// Name returns the human-readable name.
	Name() string

	// Info returns provider metadata for help and documentation.
	Info() Info

	// Parse attempts to interpret raw input text. Zero or more
	// interpretations; never panics on any input.
	Parse(input string) []value.Interpretation

	// Conversions returns the outgoing edges for a value, or nil when the
	// value's kind is not applicable. I/O-backed providers must honor the
	// context deadline and return nil on timeout.
	Conversions(ctx context.Context, v value.Value) []value.Conversion

	// Render formats a value back to display text for this provider's
	// target, when the value kind is representable. The second return is
	// false when not applicable.
	Render(v value.Value) (string, bool)

	// Aliases returns short alternate names accepted by format filters.
	Aliases() []string
}

// SourceConverter is an optional extension for providers whose parsed
// value deserves extra edges only when that provider was the root
// interpretation's source. A provider that emitted edges for every
// matching value kind would attach them to unrelated interpretations
// too; this hook fires once, on the root.
type SourceConverter interface {
	SourceConversions(ctx context.Context, v value.Value) []value.Conversion
}

// Matches reports whether name equals the provider's ID or one of its
// aliases.
func Matches(f Format, name string) bool {
	if f.ID() == name {
		return true
	}
	for _, a := range f.Aliases() {
		if a == name {
			return true
		}
	}
	return false
}

// Registry holds providers in registration order. Order is observable:
// it breaks confidence ties between interpretations and fixes BFS edge
// discovery order, so a given registry always produces identical output
// for identical input.
type Registry struct {
	formats []Format
	byID    map[string]Format
}

// NewRegistry creates a registry containing the given providers in order.
// A provider whose ID was already registered is skipped, mirroring
// first-registration-wins semantics.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{byID: make(map[string]Format, len(formats))}
	for _, f := range formats {
		r.Register(f)
	}
	return r
}

// Register appends a provider. Duplicate IDs are ignored.
func (r *Registry) Register(f Format) {
	if _, ok := r.byID[f.ID()]; ok {
		return
	}
	r.byID[f.ID()] = f
	r.formats = append(r.formats, f)
}

// All returns the providers in registration order. The returned slice is
// shared; callers must not mutate it.
func (r *Registry) All() []Format {
	return r.formats
}

// Get returns the provider with the given ID.
func (r *Registry) Get(id string) (Format, bool) {
	f, ok := r.byID[id]
	return f, ok
}

// Filter returns the providers matching any of the given names (IDs or
// aliases), preserving registration order. An empty filter returns all
// providers.
func (r *Registry) Filter(names []string) []Format {
	if len(names) == 0 {
		return r.formats
	}
	var out []Format
	for _, f := range r.formats {
		for _, name := range names {
			if Matches(f, name) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.formats)
}

// Infos returns metadata for every provider in registration order.
func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.formats))
	for _, f := range r.formats {
		infos = append(infos, f.Info())
	}
	return infos
}

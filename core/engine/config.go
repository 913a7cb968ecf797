// Package engine implements the interpretation coordinator and the
// bounded conversion-graph traversal over an ordered set of format
// providers.
package engine

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/FocuswithJustin/DataLens/core/errors"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Pair is a (source, target) format-ID pair in a blocking table.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// BlockingConfig suppresses edges that are structurally valid but never
// useful. It is injected at engine construction; the engine itself never
// special-cases a format by name.
type BlockingConfig struct {
	// RootPairs block a target for any path whose root interpretation
	// has the given source format, regardless of intermediate hops
	// (e.g. text..->ipv4: four ASCII bytes are not an IP address).
	RootPairs []Pair `json:"root_pairs,omitempty"`

	// PathPairs block the immediate source->target hop regardless of
	// root (e.g. bytes must pass through an explicit intermediate step
	// before being read as a big-endian integer).
	PathPairs []Pair `json:"path_pairs,omitempty"`

	// Formats lists target IDs that are blocked everywhere.
	Formats []string `json:"formats,omitempty"`
}

// IsRootBlocked reports whether target is suppressed for traversals
// rooted at rootFormat.
func (b BlockingConfig) IsRootBlocked(rootFormat, target string) bool {
	for _, p := range b.RootPairs {
		if p.Source == rootFormat && p.Target == target {
			return true
		}
	}
	return false
}

// IsPathBlocked reports whether the immediate source->target hop is
// suppressed.
func (b BlockingConfig) IsPathBlocked(source, target string) bool {
	for _, p := range b.PathPairs {
		if p.Source == source && p.Target == target {
			return true
		}
	}
	return false
}

// IsFormatBlocked reports whether target is blocked unconditionally.
func (b BlockingConfig) IsFormatBlocked(target string) bool {
	for _, f := range b.Formats {
		if strings.EqualFold(f, target) {
			return true
		}
	}
	return false
}

// Merge returns b extended with the entries of other. Entries are
// appended in order, so user configuration layers on top of defaults.
func (b BlockingConfig) Merge(other BlockingConfig) BlockingConfig {
	out := BlockingConfig{
		RootPairs: append(append([]Pair{}, b.RootPairs...), other.RootPairs...),
		PathPairs: append(append([]Pair{}, b.PathPairs...), other.PathPairs...),
		Formats:   append(append([]string{}, b.Formats...), other.Formats...),
	}
	return out
}

// PriorityAdjustment moves a format within or across priority buckets.
// In JSON it is either a number (offset within the current bucket,
// higher = earlier) or a bucket name (move to that bucket).
type PriorityAdjustment struct {
	Offset   int
	Category string
}

// UnmarshalJSON accepts either a numeric offset or a bucket name.
func (a *PriorityAdjustment) UnmarshalJSON(data []byte) error {
	var off int
	if err := json.Unmarshal(data, &off); err == nil {
		*a = PriorityAdjustment{Offset: off}
		return nil
	}
	var cat string
	if err := json.Unmarshal(data, &cat); err == nil {
		if _, ok := value.ParsePriority(cat); !ok {
			return apperrors.NewValidation("priority", "unknown bucket "+cat)
		}
		*a = PriorityAdjustment{Category: cat}
		return nil
	}
	return apperrors.NewValidation("priority", "expected number or bucket name")
}

// MarshalJSON emits the compact form accepted by UnmarshalJSON.
func (a PriorityAdjustment) MarshalJSON() ([]byte, error) {
	if a.Category != "" {
		return json.Marshal(a.Category)
	}
	return json.Marshal(a.Offset)
}

// PriorityConfig customizes result ordering.
type PriorityConfig struct {
	// CategoryOrder lists bucket names highest-priority first. Empty
	// means the default Primary, Structured, Semantic, Encoding, Raw.
	CategoryOrder []string `json:"category_order,omitempty"`

	// FormatPriority adjusts individual target formats.
	FormatPriority map[string]PriorityAdjustment `json:"format_priority,omitempty"`
}

// CategorySortKey returns the sort key for a bucket; lower sorts earlier.
// Buckets absent from a custom order sort after all listed ones.
func (p PriorityConfig) CategorySortKey(pr value.Priority) int {
	if len(p.CategoryOrder) == 0 {
		return int(pr)
	}
	name := pr.String()
	for i, c := range p.CategoryOrder {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return 100 + int(pr)
}

// ResolvePriority applies any bucket override for the format.
func (p PriorityConfig) ResolvePriority(formatID string, def value.Priority) value.Priority {
	if adj, ok := p.FormatPriority[formatID]; ok && adj.Category != "" {
		if pr, ok := value.ParsePriority(adj.Category); ok {
			return pr
		}
	}
	return def
}

// FormatOffset returns the within-bucket offset for the format; higher
// offsets sort earlier.
func (p PriorityConfig) FormatOffset(formatID string) int {
	if adj, ok := p.FormatPriority[formatID]; ok && adj.Category == "" {
		return adj.Offset
	}
	return 0
}

// Config carries all injectable traversal policy. The zero value is
// usable but applies no blocking and a zero reinterpretation threshold;
// DefaultConfig returns the stock policy.
type Config struct {
	Blocking BlockingConfig `json:"blocking,omitempty"`
	Priority PriorityConfig `json:"priority,omitempty"`

	// ReinterpretThreshold is the minimum parse confidence for feeding
	// a mid-traversal string back through the coordinator.
	ReinterpretThreshold float64 `json:"reinterpret_threshold"`

	// ProviderTimeout bounds each I/O-backed provider call. Zero
	// disables the per-call deadline (the caller context still applies).
	ProviderTimeout time.Duration `json:"-"`
}

// DefaultReinterpretThreshold gates string reinterpretation when no
// override is configured.
const DefaultReinterpretThreshold = 0.7

// DefaultProviderTimeout bounds a single I/O-backed provider call.
const DefaultProviderTimeout = 2 * time.Second

// DefaultBlocking returns the built-in suppression tables. They encode
// combinations that are structurally reachable but semantically noise,
// such as reading the raw bytes of ASCII text as an IP address.
func DefaultBlocking() BlockingConfig {
	return BlockingConfig{
		RootPairs: []Pair{
			// Text bytes are characters, not addresses, numbers, or IDs.
			{"text", "ipv4"}, {"text", "ipv6"},
			{"text", "int-be"}, {"text", "int-le"},
			{"text", "epoch-seconds"}, {"text", "epoch-millis"},
			{"text", "uuid"},
			{"text", "datasize"}, {"text", "datasize-iec"}, {"text", "datasize-si"},
			{"text", "duration"},
			// Hex bytes are data, not addresses.
			{"hex", "ipv4"}, {"hex", "ipv6"},
		},
		PathPairs: []Pair{
			// Circular: text -> bytes -> utf8 reproduces the input.
			{"text", "utf8"},
			{"text", "text"},
			// Raw text bytes need an explicit intermediate step before
			// numeric or identifier readings.
			{"text", "int-be"}, {"text", "int-le"},
			{"text", "ipv4"}, {"text", "ipv6"},
			{"text", "uuid"},
			// Sizes are not durations and vice versa.
			{"datasize", "duration"},
			{"duration", "datasize"}, {"duration", "datasize-iec"}, {"duration", "datasize-si"},
		},
	}
}

// DefaultConfig returns the stock traversal policy.
func DefaultConfig() Config {
	return Config{
		Blocking:             DefaultBlocking(),
		ReinterpretThreshold: DefaultReinterpretThreshold,
		ProviderTimeout:      DefaultProviderTimeout,
	}
}

// LoadConfig parses a user configuration document (JSON) and layers its
// blocking tables on top of the defaults. Priority settings and the
// reinterpretation threshold replace the defaults when present.
func LoadConfig(data []byte) (Config, error) {
	var user struct {
		Blocking             BlockingConfig `json:"blocking"`
		Priority             PriorityConfig `json:"priority"`
		ReinterpretThreshold *float64       `json:"reinterpret_threshold"`
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return Config{}, apperrors.NewParse("JSON", "", err.Error())
	}

	cfg := DefaultConfig()
	cfg.Blocking = cfg.Blocking.Merge(user.Blocking)
	cfg.Priority = user.Priority
	if user.ReinterpretThreshold != nil {
		t := *user.ReinterpretThreshold
		if t < 0 || t > 1 {
			return Config{}, apperrors.NewValidation("reinterpret_threshold", "must be in [0,1]")
		}
		cfg.ReinterpretThreshold = t
	}
	return cfg, nil
}

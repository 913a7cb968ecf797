package format

import (
	"context"

	"github.com/FocuswithJustin/DataLens/core/value"
)

// Base supplies metadata accessors and no-op defaults for the optional
// capability methods. Provider implementations embed it and override the
// operations they support, which keeps conversion-only providers (no
// Parse) and parse-only providers (no Conversions) free of stub noise.
type Base struct {
	FormatID          string
	FormatName        string
	FormatCategory    string
	FormatDescription string
	FormatExamples    []string
	FormatAliases     []string
}

// ID implements Format.
func (b Base) ID() string { return b.FormatID }

// Name implements Format.
func (b Base) Name() string { return b.FormatName }

// Aliases implements Format.
func (b Base) Aliases() []string { return b.FormatAliases }

// Info implements Format.
func (b Base) Info() Info {
	return Info{
		ID:          b.FormatID,
		Name:        b.FormatName,
		Category:    b.FormatCategory,
		Description: b.FormatDescription,
		Examples:    b.FormatExamples,
		Aliases:     b.FormatAliases,
	}
}

// Parse implements Format with "does not apply".
func (b Base) Parse(string) []value.Interpretation { return nil }

// Conversions implements Format with "no edges".
func (b Base) Conversions(context.Context, value.Value) []value.Conversion { return nil }

// Render implements Format with "not representable".
func (b Base) Render(value.Value) (string, bool) { return "", false }

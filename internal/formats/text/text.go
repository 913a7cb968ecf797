// Package text provides the plain-text fallback provider. It accepts
// any non-empty input at minimal confidence, reports ASCII/UTF-8
// properties, and exposes the string-to-bytes edge that feeds digests
// and other byte-level conversions.
package text

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// asciiCodeLimit bounds the per-character code listings; long strings
// would drown the output.
const asciiCodeLimit = 20

// Provider implements format.Format for plain text.
type Provider struct {
	format.Base
}

// New creates the text provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "text",
		FormatName:        "Plain Text",
		FormatCategory:    "Data",
		FormatDescription: "Plain text with ASCII/UTF-8 detection",
		FormatExamples:    []string{"Hello", "Héllo 👋"},
		FormatAliases:     []string{"utf8", "str", "string", "ascii"},
	}}
}

// Parse implements format.Format. Any non-empty input is text at the
// lowest useful confidence; this is the guaranteed fallback.
func (p *Provider) Parse(input string) []value.Interpretation {
	if input == "" {
		return nil
	}

	chars := utf8.RuneCountInString(input)
	desc := fmt.Sprintf("%d chars (ASCII)", chars)
	if !isASCII(input) {
		desc = fmt.Sprintf("%d chars, %d bytes (UTF-8)", chars, len(input))
	}

	return []value.Interpretation{{
		Value:        value.String(input),
		SourceFormat: p.ID(),
		Confidence:   0.10,
		Description:  desc,
	}}
}

// Conversions implements format.Format.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	switch v.Kind {
	case value.KindBytes:
		if !utf8.Valid(v.Bytes) {
			return nil
		}
		s := string(v.Bytes)
		return []value.Conversion{{
			Value:        value.String(s),
			TargetFormat: "utf8",
			Display:      s,
			Priority:     value.PriorityEncoding,
		}}
	case value.KindString:
		return p.stringConversions(v.Str)
	}
	return nil
}

func (p *Provider) stringConversions(s string) []value.Conversion {
	// The bytes edge exists to seed byte-level providers (digests,
	// int decoding); the raw byte dump itself is not a result.
	convs := []value.Conversion{{
		Value:        value.Bytes([]byte(s)),
		TargetFormat: "bytes",
		Display:      fmt.Sprintf("%d bytes", len(s)),
		Priority:     value.PriorityRaw,
		Hidden:       true,
	}}

	if len(s) <= asciiCodeLimit {
		dec := make([]string, len(s))
		hex := make([]string, len(s))
		for i := 0; i < len(s); i++ {
			dec[i] = fmt.Sprintf("%d", s[i])
			hex[i] = fmt.Sprintf("%02X", s[i])
		}
		convs = append(convs,
			value.Conversion{
				Value:        value.String(strings.Join(dec, " ")),
				TargetFormat: "ascii-decimal",
				Display:      strings.Join(dec, " "),
				Kind:         value.KindRepresentation,
				Priority:     value.PriorityEncoding,
				DisplayOnly:  true,
			},
			value.Conversion{
				Value:        value.String(strings.Join(hex, " ")),
				TargetFormat: "ascii-hex",
				Display:      strings.Join(hex, " "),
				Kind:         value.KindRepresentation,
				Priority:     value.PriorityEncoding,
				DisplayOnly:  true,
			},
		)
	}

	if isASCII(s) {
		convs = append(convs, value.Conversion{
			Value:        value.Bool(true),
			TargetFormat: "is-ascii",
			Display:      "ASCII",
			Kind:         value.KindTrait,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	} else {
		chars := utf8.RuneCountInString(s)
		convs = append(convs, value.Conversion{
			Value:        value.String(fmt.Sprintf("%d chars, %d bytes", chars, len(s))),
			TargetFormat: "encoding",
			Display:      fmt.Sprintf("UTF-8 (%d chars, %d bytes)", chars, len(s)),
			Kind:         value.KindTrait,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	}

	return convs
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	switch v.Kind {
	case value.KindString:
		return v.Str, true
	case value.KindBytes:
		if utf8.Valid(v.Bytes) {
			return string(v.Bytes), true
		}
	}
	return "", false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Package base64fmt provides the Base64 format provider for both the
// standard and URL-safe alphabets.
package base64fmt

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for Base64 input.
type Provider struct {
	format.Base
}

// New creates the Base64 provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "base64",
		FormatName:        "Base64",
		FormatCategory:    "Encoding",
		FormatDescription: "Base64 encoded binary data",
		FormatExamples:    []string{"SGVsbG8gV29ybGQ=", "aR4BuA=="},
		FormatAliases:     []string{"b64"},
	}}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	if !validChars(input) {
		return nil
	}

	bytes, err := base64.StdEncoding.DecodeString(input)
	alphabet := "standard"
	if err != nil {
		bytes, err = base64.URLEncoding.DecodeString(input)
		alphabet = "URL-safe"
	}
	if err != nil || len(bytes) == 0 {
		return nil
	}

	// Padding is a strong hint that the input really is Base64; a
	// bare alphanumeric token usually is not.
	confidence := 0.5
	switch {
	case strings.HasSuffix(input, "=="):
		confidence = 0.9
	case strings.HasSuffix(input, "="):
		confidence = 0.85
	case len(input) >= 4 && len(input)%4 == 0:
		confidence = 0.7
	}

	desc := fmt.Sprintf("%d bytes", len(bytes))
	if alphabet != "standard" {
		desc += " (" + alphabet + ")"
	}

	return []value.Interpretation{{
		Value:        value.Bytes(bytes),
		SourceFormat: p.ID(),
		Confidence:   confidence,
		Description:  desc,
	}}
}

// Conversions implements format.Format: bytes render to Base64 text,
// display-only like the hex rendering.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes {
		return nil
	}
	s := base64.StdEncoding.EncodeToString(v.Bytes)
	return []value.Conversion{{
		Value:        value.String(s),
		TargetFormat: p.ID(),
		Display:      s,
		Kind:         value.KindRepresentation,
		Priority:     value.PriorityEncoding,
		DisplayOnly:  true,
	}}
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindBytes {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(v.Bytes), true
}

func validChars(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '=' || c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

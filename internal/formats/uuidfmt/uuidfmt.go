// Package uuidfmt provides the UUID format provider with version
// detection, and the 16-byte value to UUID conversion.
package uuidfmt

import (
	"context"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for UUIDs.
type Provider struct {
	format.Base
}

// New creates the UUID provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "uuid",
		FormatName:        "UUID",
		FormatCategory:    "Identifiers",
		FormatDescription: "UUID parsing with version detection (v1-v8)",
		FormatExamples: []string{
			"550e8400-e29b-41d4-a716-446655440000",
			"550e8400e29b41d4a716446655440000",
		},
		FormatAliases: []string{"guid"},
	}}
}

// Parse implements format.Format. The underlying parser accepts the
// canonical dashed form, the bare 32-digit form, braces, and URNs.
func (p *Provider) Parse(input string) []value.Interpretation {
	u, err := uuid.Parse(input)
	if err != nil {
		return nil
	}
	return []value.Interpretation{{
		Value:        value.Bytes(u[:]),
		SourceFormat: p.ID(),
		Confidence:   0.95,
		Description:  describe(u),
	}}
}

// Conversions implements format.Format: 16 bytes read as a UUID.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes || len(v.Bytes) != 16 {
		return nil
	}
	u, err := uuid.FromBytes(v.Bytes)
	if err != nil {
		return nil
	}
	return []value.Conversion{{
		Value:        value.String(u.String()),
		TargetFormat: p.ID(),
		Display:      u.String() + " (" + describe(u) + ")",
		Priority:     value.PrioritySemantic,
	}}
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindBytes || len(v.Bytes) != 16 {
		return "", false
	}
	u, err := uuid.FromBytes(v.Bytes)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func describe(u uuid.UUID) string {
	if u == uuid.Nil {
		return "NIL UUID"
	}
	if u == uuid.Max {
		return "MAX UUID"
	}
	switch u.Version() {
	case 1:
		return "UUID v1 (MAC address + timestamp)"
	case 2:
		return "UUID v2 (DCE)"
	case 3:
		return "UUID v3 (MD5 hash)"
	case 4:
		return "UUID v4 (random)"
	case 5:
		return "UUID v5 (SHA-1 hash)"
	case 6:
		return "UUID v6 (sortable MAC)"
	case 7:
		return "UUID v7 (sortable random)"
	case 8:
		return "UUID v8 (custom)"
	}
	return "UUID"
}

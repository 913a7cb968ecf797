// Package jsondoc provides the JSON format provider. Parsing is gated
// on a leading '{' or '[' so the provider never competes for plain
// scalars.
package jsondoc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for JSON documents.
type Provider struct {
	format.Base
}

// New creates the JSON provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "json",
		FormatName:        "JSON",
		FormatCategory:    "Data",
		FormatDescription: "JSON objects and arrays",
		FormatExamples:    []string{`{"key": "value"}`, "[1, 2, 3]"},
		FormatAliases:     []string{"j"},
	}}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	doc, ok := decode(input)
	if !ok {
		return nil
	}
	return []value.Interpretation{{
		Value:        value.JSON(doc),
		SourceFormat: p.ID(),
		Confidence:   0.95,
		Description:  "JSON document",
	}}
}

// Conversions implements format.Format. JSON documents pretty-print;
// strings that hold JSON convert to documents, which completes chains
// like hex -> utf8 -> json.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	switch v.Kind {
	case value.KindJSON:
		pretty, err := json.MarshalIndent(v.JSON, "", "  ")
		if err != nil {
			return nil
		}
		return []value.Conversion{{
			Value:        value.JSON(v.JSON),
			TargetFormat: "json-formatted",
			Display:      string(pretty),
			Priority:     value.PriorityStructured,
			DisplayOnly:  true,
		}}
	case value.KindString:
		doc, ok := decode(v.Str)
		if !ok {
			return nil
		}
		pretty, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil
		}
		// Display-only: object keys and values are not further inputs.
		return []value.Conversion{{
			Value:        value.JSON(doc),
			TargetFormat: p.ID(),
			Display:      string(pretty),
			Priority:     value.PriorityStructured,
			DisplayOnly:  true,
		}}
	}
	return nil
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindJSON {
		return "", false
	}
	pretty, err := json.MarshalIndent(v.JSON, "", "  ")
	if err != nil {
		return "", false
	}
	return string(pretty), true
}

// decode accepts only objects and arrays; bare scalars are valid JSON
// but belong to other providers.
func decode(input string) (any, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, false
	}
	return doc, true
}

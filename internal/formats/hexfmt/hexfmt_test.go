package hexfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/FocuswithJustin/DataLens/core/value"
)

func TestParseStyles(t *testing.T) {
	want := []byte{0x69, 0x1E, 0x01, 0xB8}

	tests := []struct {
		name    string
		input   string
		hint    string
		highCon bool
	}{
		{"continuous", "691E01B8", "", true},
		{"0x prefix", "0x691E01B8", "0x prefix", true},
		{"space separated", "69 1E 01 B8", "space-separated", true},
		{"colon separated", "69:1E:01:B8", "colon-separated", true},
		{"dash separated", "69-1E-01-B8", "dash-separated", true},
		{"comma separated", "0x69, 0x1E, 0x01, 0xB8", "comma-separated", true},
		{"c array", "{0x69, 0x1E, 0x01, 0xB8}", "array", true},
		{"bracket array", "[69, 1E, 01, B8]", "array", true},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input)
			if len(got) != 1 {
				t.Fatalf("got %d interpretations, want 1", len(got))
			}
			interp := got[0]
			if interp.Value.Kind != value.KindBytes || !bytes.Equal(interp.Value.Bytes, want) {
				t.Errorf("value = %+v, want bytes %X", interp.Value, want)
			}
			if tt.highCon && interp.Confidence <= 0.9 {
				t.Errorf("confidence = %v, want > 0.9", interp.Confidence)
			}
			if tt.hint != "" && !strings.Contains(interp.Description, tt.hint) {
				t.Errorf("description %q missing style hint %q", interp.Description, tt.hint)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	p := New()
	for _, input := range []string{"", "GHIJ", "123", "0x12G4", "69 1G 01", "fe80::1"} {
		if got := p.Parse(input); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want none", input, got)
		}
	}
}

func TestParseAllDigitsLowConfidence(t *testing.T) {
	p := New()
	got := p.Parse("12345678")
	if len(got) != 1 {
		t.Fatalf("got %d interpretations", len(got))
	}
	// Could just as well be a decimal number or a phone fragment.
	if got[0].Confidence >= 0.9 {
		t.Errorf("all-digit confidence = %v, want < 0.9", got[0].Confidence)
	}
}

func TestParseDigestHint(t *testing.T) {
	p := New()
	got := p.Parse(strings.Repeat("ab", 32))
	if len(got) != 1 {
		t.Fatal("expected one interpretation")
	}
	if !strings.Contains(got[0].Description, "SHA-256") {
		t.Errorf("description %q should hint at a 32-byte digest", got[0].Description)
	}
}

func TestConversionsDisplayOnly(t *testing.T) {
	p := New()
	convs := p.Conversions(context.Background(), value.Bytes([]byte{0x69, 0x1E, 0x01, 0xB8}))
	if len(convs) != 1 {
		t.Fatalf("got %d conversions, want 1", len(convs))
	}
	c := convs[0]
	if c.Value.Kind != value.KindString || c.Value.Str != "691E01B8" {
		t.Errorf("value = %+v, want hex string", c.Value)
	}
	if !c.DisplayOnly {
		t.Error("hex rendering must be display-only")
	}
	if c.Kind != value.KindRepresentation {
		t.Errorf("kind = %v, want representation", c.Kind)
	}

	if got := p.Conversions(context.Background(), value.Int(5)); got != nil {
		t.Errorf("non-bytes value produced %+v", got)
	}
}

func TestRenderTruncates(t *testing.T) {
	p := New()
	big := make([]byte, 100)
	s, ok := p.Render(value.Bytes(big))
	if !ok {
		t.Fatal("render failed")
	}
	if !strings.Contains(s, "36 more bytes") {
		t.Errorf("rendering %q should note the truncated tail", s)
	}

	small, ok := p.Render(value.Bytes([]byte{0xAB}))
	if !ok || small != "AB" {
		t.Errorf("small render = %q, %v", small, ok)
	}
}

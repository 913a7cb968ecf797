package base64fmt

import (
	"bytes"
	"context"
	"testing"

	"github.com/FocuswithJustin/DataLens/core/value"
)

func TestParse(t *testing.T) {
	p := New()

	tests := []struct {
		name    string
		input   string
		want    []byte
		minConf float64
	}{
		{"double padding", "aR4BuA==", []byte{0x69, 0x1E, 0x01, 0xB8}, 0.9},
		{"single padding", "SGVsbG8=", []byte("Hello"), 0.85},
		{"no padding multiple of 4", "SGVsbG8gV29ybGQh", []byte("Hello World!"), 0.7},
		{"url safe alphabet", "-_4=", []byte{0xFB, 0xFE}, 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input)
			if len(got) != 1 {
				t.Fatalf("got %d interpretations, want 1", len(got))
			}
			if !bytes.Equal(got[0].Value.Bytes, tt.want) {
				t.Errorf("decoded %X, want %X", got[0].Value.Bytes, tt.want)
			}
			if got[0].Confidence < tt.minConf {
				t.Errorf("confidence = %v, want >= %v", got[0].Confidence, tt.minConf)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	p := New()
	for _, input := range []string{"", "!!!", "abc!def", "=="} {
		if got := p.Parse(input); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want none", input, got)
		}
	}
}

func TestConversions(t *testing.T) {
	p := New()

	convs := p.Conversions(context.Background(), value.Bytes([]byte{0x69, 0x1E, 0x01, 0xB8}))
	if len(convs) != 1 {
		t.Fatalf("got %d conversions, want 1", len(convs))
	}
	if convs[0].Display != "aR4BuA==" {
		t.Errorf("display = %q, want aR4BuA==", convs[0].Display)
	}
	if !convs[0].DisplayOnly {
		t.Error("base64 rendering must be display-only")
	}

	if got := p.Conversions(context.Background(), value.String("x")); got != nil {
		t.Errorf("non-bytes value produced %+v", got)
	}
}

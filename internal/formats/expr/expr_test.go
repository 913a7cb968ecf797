package expr

import (
	"context"
	"testing"

	"github.com/FocuswithJustin/DataLens/core/value"
)

func evalOne(t *testing.T, input string) value.Interpretation {
	t.Helper()
	p := New()
	interps := p.Parse(input)
	if len(interps) != 1 {
		t.Fatalf("Parse(%q) = %d interpretations, want 1", input, len(interps))
	}
	return interps[0]
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"2 + 2", 4},
		{"0xFF + 1", 256},
		{"1 << 8", 256},
		{"0b1010 | 0b0101", 15},
		{"0b1100 & 0b1010", 8},
		{"2 ^ 16", 65536},
		{"2 ^ 3 ^ 2", 512},
		{"10 / 4", 2},
		{"17 % 5", 2},
		{"(2 + 3) * 4", 20},
		{"2 * -3", -6},
		{"0o17 + 1", 16},
		{"1024 >> 2", 256},
		{"5*9*3*9/23", 52},
	}
	for _, tc := range cases {
		got := evalOne(t, tc.input)
		if got.Value.Kind != value.KindInt || got.Value.Int != tc.want {
			t.Errorf("Parse(%q) = %v, want %d", tc.input, got.Value, tc.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"1 << 8", 0.95},
		{"0b1010 | 0b0101", 0.95},
		{"5*9*3", 0.95},
		{"5 * 9", 0.85},
		{"2 + 2", 0.75},
	}
	for _, tc := range cases {
		got := evalOne(t, tc.input)
		if got.Confidence != tc.want {
			t.Errorf("confidence(%q) = %v, want %v", tc.input, got.Confidence, tc.want)
		}
	}
}

func TestDescription(t *testing.T) {
	got := evalOne(t, "2 + 2")
	if got.Description != "2 + 2 = 4" {
		t.Errorf("description = %q", got.Description)
	}
	if got.SourceFormat != "expr" {
		t.Errorf("source = %q", got.SourceFormat)
	}
}

func TestRejects(t *testing.T) {
	p := New()
	rejects := []string{
		"",
		"hello",
		"42",                                   // no operator
		"0xFF",                                 // bare literal, other providers own it
		"550e8400-e29b-41d4-a716-446655440000", // UUID shape
		"https://example.com/a+b",
		"2024/01/15/x",
		"1 / 0",
		"2 ^ -1",
		"1 << 64",
		"++",
	}
	for _, input := range rejects {
		if got := p.Parse(input); len(got) != 0 {
			t.Errorf("Parse(%q) = %v, want none", input, got)
		}
	}
}

func TestSourceConversions(t *testing.T) {
	p := New()
	convs := p.SourceConversions(context.Background(), value.Int(256))
	if len(convs) != 1 {
		t.Fatalf("got %d conversions, want 1", len(convs))
	}
	c := convs[0]
	if c.TargetFormat != "result" || c.Display != "256" {
		t.Errorf("result edge = %q (%s)", c.Display, c.TargetFormat)
	}
	if c.Priority != value.PriorityPrimary || !c.DisplayOnly {
		t.Errorf("result edge priority=%v displayOnly=%v", c.Priority, c.DisplayOnly)
	}
	if got := p.SourceConversions(context.Background(), value.String("x")); got != nil {
		t.Errorf("non-int: got %v", got)
	}
}

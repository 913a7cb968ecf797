package engine

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

type stubFormat struct {
	format.Base
	parseFn  func(string) []value.Interpretation
	convFn   func(value.Value) []value.Conversion
	renderFn func(value.Value) (string, bool)
}

func (s *stubFormat) Parse(input string) []value.Interpretation {
	if s.parseFn == nil {
		return nil
	}
	return s.parseFn(input)
}

func (s *stubFormat) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if s.convFn == nil {
		return nil
	}
	return s.convFn(v)
}

func (s *stubFormat) Render(v value.Value) (string, bool) {
	if s.renderFn == nil {
		return "", false
	}
	return s.renderFn(v)
}

// Fixture providers approximating the real hex / integer / text stack,
// small enough that every edge in a test is accounted for.

func textStub() *stubFormat {
	return &stubFormat{
		Base: format.Base{FormatID: "text"},
		parseFn: func(input string) []value.Interpretation {
			return []value.Interpretation{{
				Value:        value.String(input),
				SourceFormat: "text",
				Confidence:   0.1,
				Description:  "plain text",
			}}
		},
	}
}

func hexStub() *stubFormat {
	return &stubFormat{
		Base: format.Base{FormatID: "hex"},
		parseFn: func(input string) []value.Interpretation {
			b, err := hex.DecodeString(input)
			if err != nil || len(b) == 0 {
				return nil
			}
			return []value.Interpretation{{
				Value:        value.Bytes(b),
				SourceFormat: "hex",
				Confidence:   0.9,
				Description:  fmt.Sprintf("%d bytes", len(b)),
			}}
		},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes {
				return nil
			}
			// Identity edge for non-hex roots; the engine drops it
			// when hex is itself the root.
			return []value.Conversion{{
				Value:        v,
				TargetFormat: "hex",
				Display:      hex.EncodeToString(v.Bytes),
				Kind:         value.KindRepresentation,
				Priority:     value.PriorityEncoding,
			}}
		},
	}
}

func intStub() *stubFormat {
	return &stubFormat{
		Base: format.Base{FormatID: "decimal"},
		parseFn: func(input string) []value.Interpretation {
			var n int64
			if _, err := fmt.Sscanf(input, "%d", &n); err != nil {
				return nil
			}
			if fmt.Sprintf("%d", n) != input {
				return nil
			}
			return []value.Interpretation{{
				Value:        value.Int(n),
				SourceFormat: "decimal",
				Confidence:   0.8,
				Description:  input,
			}}
		},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes || len(v.Bytes) != 4 {
				return nil
			}
			be := int64(binary.BigEndian.Uint32(v.Bytes))
			le := int64(binary.LittleEndian.Uint32(v.Bytes))
			return []value.Conversion{
				{
					Value:        value.IntFromBytes(be, v.Bytes),
					TargetFormat: "int-be",
					Display:      fmt.Sprintf("%d", be),
					Priority:     value.PriorityPrimary,
				},
				{
					Value:        value.IntFromBytes(le, v.Bytes),
					TargetFormat: "int-le",
					Display:      fmt.Sprintf("%d", le),
					Priority:     value.PriorityPrimary,
				},
			}
		},
	}
}

func utf8Stub() *stubFormat {
	return &stubFormat{
		Base: format.Base{FormatID: "utf8"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes || !utf8.Valid(v.Bytes) {
				return nil
			}
			return []value.Conversion{{
				Value:        value.String(string(v.Bytes)),
				TargetFormat: "utf8",
				Display:      string(v.Bytes),
				Priority:     value.PrioritySemantic,
			}}
		},
	}
}

func newTestEngine(cfg Config, formats ...format.Format) *Engine {
	return New(format.NewRegistry(formats...), cfg)
}

func findConversion(convs []value.Conversion, target string) (value.Conversion, bool) {
	for _, c := range convs {
		if c.TargetFormat == target {
			return c, true
		}
	}
	return value.Conversion{}, false
}

func TestInterpretOrdering(t *testing.T) {
	e := newTestEngine(Config{}, textStub(), hexStub())

	interps := e.Interpret("691E01B8")
	if len(interps) != 2 {
		t.Fatalf("expected 2 interpretations, got %d", len(interps))
	}
	if interps[0].SourceFormat != "hex" {
		t.Errorf("highest confidence first: got %q", interps[0].SourceFormat)
	}
	if interps[1].SourceFormat != "text" {
		t.Errorf("text fallback last: got %q", interps[1].SourceFormat)
	}
}

func TestInterpretFallback(t *testing.T) {
	e := newTestEngine(Config{}, hexStub())

	interps := e.Interpret("not hex at all")
	if len(interps) != 1 {
		t.Fatalf("expected exactly the fallback, got %d interpretations", len(interps))
	}
	got := interps[0]
	if got.SourceFormat != "text" {
		t.Errorf("fallback format = %q, want text", got.SourceFormat)
	}
	if got.Value.Kind != value.KindString || got.Value.Str != "not hex at all" {
		t.Errorf("fallback must preserve the raw input, got %+v", got.Value)
	}
	if got.Confidence >= 0.5 {
		t.Errorf("fallback confidence %v should be low", got.Confidence)
	}
}

func TestInterpretClampsConfidence(t *testing.T) {
	wild := &stubFormat{
		Base: format.Base{FormatID: "wild"},
		parseFn: func(input string) []value.Interpretation {
			return []value.Interpretation{
				{Value: value.String(input), SourceFormat: "wild", Confidence: 3.2},
				{Value: value.Int(1), SourceFormat: "wild", Confidence: -0.4},
			}
		},
	}
	e := newTestEngine(Config{}, wild)

	for _, interp := range e.Interpret("x") {
		if interp.Confidence < 0 || interp.Confidence > 1 {
			t.Errorf("confidence %v outside [0,1]", interp.Confidence)
		}
	}
}

func TestInterpretRecoversPanic(t *testing.T) {
	bomb := &stubFormat{
		Base:    format.Base{FormatID: "bomb"},
		parseFn: func(string) []value.Interpretation { panic("provider bug") },
	}
	e := newTestEngine(Config{}, bomb, hexStub())

	interps := e.Interpret("691E01B8")
	if len(interps) != 1 || interps[0].SourceFormat != "hex" {
		t.Fatalf("panicking provider must be skipped, got %+v", interps)
	}
}

func TestConvertHexBytes(t *testing.T) {
	e := newTestEngine(Config{}, textStub(), hexStub(), intStub())

	root, _ := hex.DecodeString("691E01B8")
	convs := e.Convert(context.Background(), value.Bytes(root), "hex")

	be, ok := findConversion(convs, "int-be")
	if !ok {
		t.Fatal("missing int-be conversion")
	}
	if be.Value.Int != 1763574200 {
		t.Errorf("int-be = %d, want 1763574200", be.Value.Int)
	}
	le, ok := findConversion(convs, "int-le")
	if !ok {
		t.Fatal("missing int-le conversion")
	}
	if le.Value.Int != 3087081065 {
		t.Errorf("int-le = %d, want 3087081065", le.Value.Int)
	}

	for _, c := range convs {
		if c.Path[0] != "hex" {
			t.Errorf("path %v must start at the root format", c.Path)
		}
		if c.TargetFormat != c.Path[len(c.Path)-1] {
			t.Errorf("path %v must end at target %q", c.Path, c.TargetFormat)
		}
	}

	// The hex provider restates bytes as hex; from a hex root that is
	// the identity and must not surface.
	if _, ok := findConversion(convs, "hex"); ok {
		t.Error("identity conversion back to the root format surfaced")
	}
}

func TestConvertDeduplicates(t *testing.T) {
	dup := &stubFormat{
		Base: format.Base{FormatID: "dup"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes {
				return nil
			}
			// Same (target, value) twice.
			edge := value.Conversion{Value: value.Int(7), TargetFormat: "seven", Display: "7"}
			return []value.Conversion{edge, edge}
		},
	}
	e := newTestEngine(Config{}, dup)

	convs := e.Convert(context.Background(), value.Bytes([]byte{1}), "hex")
	count := 0
	for _, c := range convs {
		if c.TargetFormat == "seven" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate (target, value) recorded %d times, want 1", count)
	}
}

func TestConvertDepthBound(t *testing.T) {
	chain := &stubFormat{
		Base: format.Base{FormatID: "chain"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindInt {
				return nil
			}
			return []value.Conversion{{
				Value:        value.Int(v.Int + 1),
				TargetFormat: "chain",
				Display:      fmt.Sprintf("%d", v.Int+1),
			}}
		},
	}
	e := newTestEngine(Config{}, chain)

	convs := e.Convert(context.Background(), value.Int(0), "seed")
	if len(convs) != maxEdges {
		t.Fatalf("unbounded chain recorded %d conversions, want %d", len(convs), maxEdges)
	}
	for _, c := range convs {
		if len(c.Path) > maxEdges+1 {
			t.Errorf("path %v exceeds depth bound", c.Path)
		}
	}
}

func TestConvertRootBlocking(t *testing.T) {
	cfg := Config{Blocking: BlockingConfig{
		RootPairs: []Pair{{Source: "hex", Target: "int-le"}},
	}}
	e := newTestEngine(cfg, hexStub(), intStub(), utf8Stub())

	convs := e.Convert(context.Background(), value.Bytes([]byte{0x34, 0x32, 0x00, 0x01}), "hex")
	if _, ok := findConversion(convs, "int-le"); ok {
		t.Error("root-blocked target surfaced")
	}
	if _, ok := findConversion(convs, "int-be"); !ok {
		t.Error("unblocked sibling target missing")
	}
}

func TestConvertPathBlocking(t *testing.T) {
	// bytes->mid->leaf and bytes->leaf; blocking the immediate hop
	// bytes-root "raw"->leaf must still allow mid->leaf.
	mid := &stubFormat{
		Base: format.Base{FormatID: "mid"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes {
				return nil
			}
			return []value.Conversion{{Value: value.Int(1), TargetFormat: "mid", Display: "1"}}
		},
	}
	leaf := &stubFormat{
		Base: format.Base{FormatID: "leaf"},
		convFn: func(v value.Value) []value.Conversion {
			switch v.Kind {
			case value.KindBytes:
				return []value.Conversion{{Value: value.String("from-bytes"), TargetFormat: "leaf", Display: "from-bytes"}}
			case value.KindInt:
				return []value.Conversion{{Value: value.String("from-int"), TargetFormat: "leaf", Display: "from-int"}}
			}
			return nil
		},
	}
	cfg := Config{Blocking: BlockingConfig{
		PathPairs: []Pair{{Source: "raw", Target: "leaf"}},
	}}
	e := newTestEngine(cfg, mid, leaf)

	convs := e.Convert(context.Background(), value.Bytes([]byte{9}), "raw")
	c, ok := findConversion(convs, "leaf")
	if !ok {
		t.Fatal("leaf reachable via mid is missing")
	}
	if !reflect.DeepEqual(c.Path, []string{"raw", "mid", "leaf"}) {
		t.Errorf("leaf path = %v, want the mid route only", c.Path)
	}
}

func TestDisplayOnlyNotExpanded(t *testing.T) {
	trait := &stubFormat{
		Base: format.Base{FormatID: "bytelen"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes {
				return nil
			}
			return []value.Conversion{{
				Value:        value.Int(int64(len(v.Bytes))),
				TargetFormat: "bytelen",
				Display:      fmt.Sprintf("%d bytes", len(v.Bytes)),
				Kind:         value.KindTrait,
				Priority:     value.PriorityRaw,
				DisplayOnly:  true,
			}}
		},
	}
	follower := &stubFormat{
		Base: format.Base{FormatID: "follower"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindInt {
				return nil
			}
			return []value.Conversion{{Value: value.String("x"), TargetFormat: "follower", Display: "x"}}
		},
	}
	e := newTestEngine(Config{}, trait, follower)

	convs := e.Convert(context.Background(), value.Bytes([]byte{1, 2, 3}), "hex")
	if _, ok := findConversion(convs, "bytelen"); !ok {
		t.Fatal("display-only trait missing from output")
	}
	if _, ok := findConversion(convs, "follower"); ok {
		t.Error("display-only node was expanded")
	}
}

func TestHiddenExpandedButNotShown(t *testing.T) {
	bridge := &stubFormat{
		Base: format.Base{FormatID: "bridge"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes {
				return nil
			}
			return []value.Conversion{{
				Value:        value.Int(42),
				TargetFormat: "bridge",
				Display:      "42",
				Hidden:       true,
			}}
		},
	}
	leaf := &stubFormat{
		Base: format.Base{FormatID: "leaf"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindInt {
				return nil
			}
			return []value.Conversion{{Value: value.String("done"), TargetFormat: "leaf", Display: "done"}}
		},
	}
	e := newTestEngine(Config{}, bridge, leaf)

	convs := e.Convert(context.Background(), value.Bytes([]byte{1}), "raw")
	if _, ok := findConversion(convs, "bridge"); ok {
		t.Error("hidden conversion surfaced in output")
	}
	c, ok := findConversion(convs, "leaf")
	if !ok {
		t.Fatal("conversion derived through hidden node is missing")
	}
	if !reflect.DeepEqual(c.Path, []string{"raw", "bridge", "leaf"}) {
		t.Errorf("path %v should record the hidden hop", c.Path)
	}
}

func TestReinterpretThreshold(t *testing.T) {
	// hex "3432" -> bytes -> utf8 "42" -> reinterpreted as decimal 42
	// when the decimal provider's 0.8 confidence clears the threshold.
	tests := []struct {
		name      string
		threshold float64
		want      bool
	}{
		{"below threshold admits", 0.7, true},
		{"above threshold rejects", 0.9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{ReinterpretThreshold: tt.threshold}
			e := newTestEngine(cfg, textStub(), hexStub(), intStub(), utf8Stub())

			convs := e.Convert(context.Background(), value.Bytes([]byte("42")), "hex")
			c, ok := findConversion(convs, "decimal")
			if ok != tt.want {
				t.Fatalf("decimal reinterpretation present = %v, want %v", ok, tt.want)
			}
			if !ok {
				return
			}
			if c.Value.Int != 42 {
				t.Errorf("reinterpreted value = %d, want 42", c.Value.Int)
			}
			if !reflect.DeepEqual(c.Path, []string{"hex", "utf8", "decimal"}) {
				t.Errorf("reinterpretation path = %v", c.Path)
			}
			if c.Priority != value.PriorityStructured {
				t.Errorf("reinterpretation priority = %v, want structured", c.Priority)
			}
		})
	}
}

func TestReinterpretSkipsTextProvider(t *testing.T) {
	// The text provider matches every string at some confidence; a zero
	// threshold must still not loop root strings back through it.
	cfg := Config{ReinterpretThreshold: 0}
	e := newTestEngine(cfg, textStub(), hexStub(), utf8Stub())

	convs := e.Convert(context.Background(), value.Bytes([]byte("hi")), "hex")
	if _, ok := findConversion(convs, "text"); ok {
		t.Error("text provider participated in reinterpretation")
	}
}

func TestConvertSortOrder(t *testing.T) {
	multi := &stubFormat{
		Base: format.Base{FormatID: "multi"},
		convFn: func(v value.Value) []value.Conversion {
			if v.Kind != value.KindBytes {
				return nil
			}
			return []value.Conversion{
				{Value: value.String("r"), TargetFormat: "raw-out", Display: "r", Priority: value.PriorityRaw, DisplayOnly: true},
				{Value: value.String("s"), TargetFormat: "sem-out", Display: "s", Priority: value.PrioritySemantic, DisplayOnly: true},
				{Value: value.String("p"), TargetFormat: "pri-out", Display: "p", Priority: value.PriorityPrimary, DisplayOnly: true},
			}
		},
	}
	e := newTestEngine(Config{}, multi)

	convs := e.Convert(context.Background(), value.Bytes([]byte{1}), "hex")
	var got []string
	for _, c := range convs {
		got = append(got, c.TargetFormat)
	}
	want := []string{"pri-out", "sem-out", "raw-out"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sort order = %v, want %v", got, want)
	}
}

func TestConvertDeterministic(t *testing.T) {
	e := newTestEngine(DefaultConfig(), textStub(), hexStub(), intStub(), utf8Stub())

	root := value.Bytes([]byte{0x69, 0x1E, 0x01, 0xB8})
	first := e.Convert(context.Background(), root, "hex")
	for i := 0; i < 5; i++ {
		again := e.Convert(context.Background(), root, "hex")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i+1)
		}
	}
}

func TestConvertCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(Config{}, hexStub(), intStub())
	convs := e.Convert(ctx, value.Bytes([]byte{1, 2, 3, 4}), "hex")
	if len(convs) != 0 {
		t.Errorf("cancelled traversal expanded %d conversions", len(convs))
	}
}

func TestConvertRecoversProviderPanic(t *testing.T) {
	bomb := &stubFormat{
		Base:   format.Base{FormatID: "bomb"},
		convFn: func(value.Value) []value.Conversion { panic("edge bug") },
	}
	e := newTestEngine(Config{}, bomb, intStub())

	convs := e.Convert(context.Background(), value.Bytes([]byte{0, 0, 0, 1}), "hex")
	if _, ok := findConversion(convs, "int-be"); !ok {
		t.Error("panicking provider took out its siblings")
	}
}

func TestConvertAllPairsInterpretations(t *testing.T) {
	e := newTestEngine(Config{}, textStub(), hexStub(), intStub())

	results := e.ConvertAll(context.Background(), "691E01B8")
	if len(results) != 2 {
		t.Fatalf("expected one result per interpretation, got %d", len(results))
	}
	for _, r := range results {
		if r.Input != "691E01B8" {
			t.Errorf("result input = %q", r.Input)
		}
		for _, c := range r.Conversions {
			if c.Path[0] != r.Interpretation.SourceFormat {
				t.Errorf("conversion path %v not rooted at %q", c.Path, r.Interpretation.SourceFormat)
			}
		}
	}
}

package ipaddr

import (
	"context"
	"strings"
	"testing"

	"github.com/FocuswithJustin/DataLens/core/value"
)

func TestParse(t *testing.T) {
	p := New()

	tests := []struct {
		name      string
		input     string
		source    string
		wantBytes int
		wantScope string
	}{
		{"ipv4 private", "192.168.1.1", "ipv4", 4, "Private"},
		{"ipv4 loopback", "127.0.0.1", "ipv4", 4, "Loopback"},
		{"ipv4 public", "8.8.8.8", "ipv4", 4, "Public"},
		{"ipv4 documentation", "203.0.113.7", "ipv4", 4, "Documentation"},
		{"ipv6 link local", "fe80::1", "ipv6", 16, "Link-local"},
		{"ipv6 documentation", "2001:db8::1", "ipv6", 16, "Documentation"},
		{"ipv6 global", "2600:1f13::1", "ipv6", 16, "Global unicast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input)
			if len(got) != 1 {
				t.Fatalf("got %d interpretations, want 1", len(got))
			}
			if got[0].SourceFormat != tt.source {
				t.Errorf("source = %q, want %q", got[0].SourceFormat, tt.source)
			}
			if len(got[0].Value.Bytes) != tt.wantBytes {
				t.Errorf("value has %d bytes, want %d", len(got[0].Value.Bytes), tt.wantBytes)
			}
			if !strings.Contains(got[0].Description, tt.wantScope) {
				t.Errorf("description %q missing scope %q", got[0].Description, tt.wantScope)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	p := New()
	for _, input := range []string{"", "999.1.1.1", "192.168.1", "hello", "fe80:::1"} {
		if got := p.Parse(input); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want none", input, got)
		}
	}
}

func TestBytesConversions(t *testing.T) {
	p := New()

	four := p.Conversions(context.Background(), value.Bytes([]byte{192, 168, 1, 1}))
	if len(four) != 1 || four[0].TargetFormat != "ipv4" {
		t.Fatalf("4-byte conversions = %+v", four)
	}
	if four[0].Value.Str != "192.168.1.1" {
		t.Errorf("value = %q", four[0].Value.Str)
	}

	sixteen := make([]byte, 16)
	sixteen[0], sixteen[1] = 0xfe, 0x80
	sixteen[15] = 1
	six := p.Conversions(context.Background(), value.Bytes(sixteen))
	if len(six) != 1 || six[0].TargetFormat != "ipv6" {
		t.Fatalf("16-byte conversions = %+v", six)
	}
	if six[0].Value.Str != "fe80::1" {
		t.Errorf("value = %q", six[0].Value.Str)
	}

	for _, n := range []int{0, 3, 5, 15, 17} {
		if got := p.Conversions(context.Background(), value.Bytes(make([]byte, n))); got != nil {
			t.Errorf("%d bytes converted: %+v", n, got)
		}
	}
}

func TestRender(t *testing.T) {
	p := New()
	s, ok := p.Render(value.Bytes([]byte{10, 0, 0, 1}))
	if !ok || s != "10.0.0.1" {
		t.Errorf("render = %q, %v", s, ok)
	}
	if _, ok := p.Render(value.Int(5)); ok {
		t.Error("non-bytes value rendered")
	}
}

// Package hexfmt provides the hexadecimal format provider. It accepts
// the common paste styles for hex bytes: continuous (691E01B8), 0x
// prefixed, space / colon / dash separated, comma separated, and C
// array literals ({0x69, 0x1E}).
package hexfmt

import (
	"context"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// maxDisplayBytes bounds the hex rendering of large payloads.
const maxDisplayBytes = 64

// digestByteLengths maps byte counts to the hash algorithms that
// produce them. CRC-32 (4 bytes) is deliberately absent: four bytes is
// too common to be a meaningful hint.
var digestByteLengths = map[int]string{
	16: "MD5/MD4",
	20: "SHA-1/RIPEMD-160",
	28: "SHA-224",
	32: "SHA-256",
	48: "SHA-384",
	64: "SHA-512",
}

// Provider implements format.Format for hexadecimal input.
type Provider struct {
	format.Base
}

// New creates the hex provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "hex",
		FormatName:        "Hexadecimal",
		FormatCategory:    "Encoding",
		FormatDescription: "Hexadecimal byte encoding with multiple input styles",
		FormatExamples:    []string{"691E01B8", "0x691E01B8", "69 1E 01 B8", "69:1E:01:B8", "{0x69, 0x1E}"},
		FormatAliases:     []string{"h", "x"},
	}}
}

type normalized struct {
	hex            string
	styleHint      string
	highConfidence bool
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	n, ok := normalize(input)
	if !ok {
		return nil
	}
	bytes, ok := decode(n.hex)
	if !ok {
		return nil
	}

	confidence := 0.4
	switch {
	case n.highConfidence:
		confidence = 0.92
	case len(bytes) >= 2:
		confidence = 0.6
	}

	desc := fmt.Sprintf("%d bytes", len(bytes))
	if n.styleHint != "hex" {
		desc = fmt.Sprintf("%d bytes (%s)", len(bytes), n.styleHint)
	}
	if hint, ok := digestByteLengths[len(bytes)]; ok {
		desc += " - possible " + hint + " hash"
	}

	return []value.Interpretation{{
		Value:        value.Bytes(bytes),
		SourceFormat: p.ID(),
		Confidence:   confidence,
		Description:  desc,
	}}
}

// Conversions implements format.Format: bytes render back to a hex
// string. The edge is display-only so the traversal does not wander
// into codepoint readings of the hex text itself.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes {
		return nil
	}
	return []value.Conversion{{
		Value:        value.String(encode(v.Bytes)),
		TargetFormat: p.ID(),
		Display:      encodeTruncated(v.Bytes, maxDisplayBytes),
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
	return encodeTruncated(v.Bytes, maxDisplayBytes), true
}

func isHexString(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hasLetter(s string) bool {
	return strings.ContainsFunc(s, func(c rune) bool {
		return c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	})
}

func stripPrefix(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return rest, true
	}
	return strings.CutPrefix(s, "0X")
}

func normalize(input string) (normalized, bool) {
	trimmed := strings.TrimSpace(input)

	// 0x-prefixed single value.
	if rest, ok := stripPrefix(trimmed); ok {
		if isHexString(rest) && len(rest)%2 == 0 {
			return normalized{hex: strings.ToUpper(rest), styleHint: "0x prefix", highConfidence: true}, true
		}
	}

	// C array literal: {0x69, 0x1E} or [0x69, 0x1E].
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		if strings.HasPrefix(trimmed, pair[0]) && strings.HasSuffix(trimmed, pair[1]) {
			content := trimmed[1 : len(trimmed)-1]
			if hex, ok := joinParts(content, ','); ok {
				return normalized{hex: hex, styleHint: "array", highConfidence: true}, true
			}
		}
	}

	if strings.Contains(trimmed, ",") {
		if hex, ok := joinParts(trimmed, ','); ok {
			return normalized{hex: hex, styleHint: "comma-separated", highConfidence: true}, true
		}
	}
	if strings.Contains(trimmed, " ") {
		if hex, ok := joinParts(trimmed, ' '); ok {
			return normalized{hex: hex, styleHint: "space-separated", highConfidence: true}, true
		}
	}
	// Colon separation clashes with IPv6 "::" shorthand; leave that to
	// the address provider.
	if strings.Contains(trimmed, ":") && !strings.Contains(trimmed, "::") {
		if hex, ok := joinParts(trimmed, ':'); ok {
			return normalized{hex: hex, styleHint: "colon-separated", highConfidence: true}, true
		}
	}
	if strings.Contains(trimmed, "-") && !strings.HasPrefix(trimmed, "-") {
		if hex, ok := joinParts(trimmed, '-'); ok {
			return normalized{hex: hex, styleHint: "dash-separated", highConfidence: true}, true
		}
	}

	// Continuous hex. All-digit strings are just as plausibly a decimal
	// number, so only hex letters buy the high confidence tier.
	if isHexString(trimmed) && len(trimmed)%2 == 0 {
		return normalized{hex: strings.ToUpper(trimmed), styleHint: "hex", highConfidence: hasLetter(trimmed)}, true
	}

	return normalized{}, false
}

// joinParts reassembles separator-delimited byte tokens ("69, 1E",
// "0x69 0x1E", "9:A:3F") into continuous uppercase hex. Single-digit
// tokens are zero padded.
func joinParts(input string, sep rune) (string, bool) {
	var b strings.Builder
	for _, part := range strings.Split(input, string(sep)) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if rest, ok := stripPrefix(part); ok {
			part = rest
		}
		if part == "" || len(part) > 2 || !isHexString(part) {
			return "", false
		}
		if len(part) == 1 {
			b.WriteByte('0')
		}
		b.WriteString(strings.ToUpper(part))
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

func decode(s string) ([]byte, bool) {
	if len(s)%2 != 0 {
		return nil, false
	}
	out := make([]byte, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		hi := digitValue(s[i])
		lo := digitValue(s[i+1])
		if hi < 0 || lo < 0 {
			return nil, false
		}
		out = append(out, byte(hi<<4|lo))
	}
	return out, true
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func encode(b []byte) string {
	return fmt.Sprintf("%X", b)
}

func encodeTruncated(b []byte, max int) string {
	if len(b) <= max {
		return encode(b)
	}
	return fmt.Sprintf("%X... (%d more bytes)", b[:max], len(b)-max)
}

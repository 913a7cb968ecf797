// Package datasize parses human-readable data sizes ("1.5MB", "512 KiB")
// into byte counts and renders byte counts back in IEC and SI notation.
package datasize

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// unit pairs a suffix with its byte multiplier. IEC units are matched
// before SI units so "KiB" never falls through to "B".
type unit struct {
	suffix     string
	multiplier uint64
}

var iecUnits = []unit{
	{"KiB", 1 << 10},
	{"MiB", 1 << 20},
	{"GiB", 1 << 30},
	{"TiB", 1 << 40},
	{"PiB", 1 << 50},
}

var siUnits = []unit{
	{"KB", 1_000},
	{"MB", 1_000_000},
	{"GB", 1_000_000_000},
	{"TB", 1_000_000_000_000},
	{"PB", 1_000_000_000_000_000},
}

// Provider implements format.Format for data sizes.
type Provider struct {
	format.Base
}

// New creates the data-size provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "datasize",
		FormatName:        "Data Size",
		FormatCategory:    "Numbers",
		FormatDescription: "Data sizes (KB, MB, KiB, MiB) to/from bytes",
		FormatExamples:    []string{"1MB", "512 KiB", "1.5GB", "1048576"},
		FormatAliases:     []string{"size", "bytes", "filesize"},
	}}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	bytes, suffix, ok := parseSize(input)
	if !ok {
		return nil
	}
	system := "decimal"
	if strings.Contains(suffix, "i") {
		system = "binary"
	}
	desc := fmt.Sprintf("%s = %s bytes (%s)",
		strings.TrimSpace(input), withCommas(bytes), system)
	return []value.Interpretation{{
		Value:        value.Int(int64(bytes)),
		SourceFormat: p.ID(),
		Confidence:   0.90,
		Description:  desc,
	}}
}

// Conversions implements format.Format. Byte counts of at least 1000
// gain human-readable IEC and SI displays; smaller values read fine
// as-is.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindInt || v.Int < 1000 {
		return nil
	}
	bytes := uint64(v.Int)

	var out []value.Conversion
	iec := formatUnits(bytes, iecUnits)
	if !strings.HasSuffix(iec, " B") {
		out = append(out, value.Conversion{
			Value:        value.String(iec),
			TargetFormat: "datasize-iec",
			Display:      iec,
			Kind:         value.KindRepresentation,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	}
	si := formatUnits(bytes, siUnits)
	if !strings.HasSuffix(si, " B") && si != iec {
		out = append(out, value.Conversion{
			Value:        value.String(si),
			TargetFormat: "datasize-si",
			Display:      si,
			Kind:         value.KindRepresentation,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	}
	return out
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindInt || v.Int < 0 {
		return "", false
	}
	return formatUnits(uint64(v.Int), iecUnits), true
}

// parseSize extracts a byte count from strings like "1.5MB", "512 KiB"
// or "1024 bytes". Suffix matching is case-insensitive for the unit
// tables; a bare "B" needs a numeric prefix.
func parseSize(input string) (uint64, string, bool) {
	s := strings.TrimSpace(input)
	for _, tables := range [][]unit{iecUnits, siUnits} {
		for _, u := range tables {
			rest, ok := strings.CutSuffix(s, u.suffix)
			if !ok {
				rest, ok = strings.CutSuffix(s, strings.ToLower(u.suffix))
			}
			if !ok {
				continue
			}
			num, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
			if err != nil || num < 0 {
				continue
			}
			return uint64(num * float64(u.multiplier)), u.suffix, true
		}
	}
	rest, ok := strings.CutSuffix(s, "bytes")
	if !ok {
		rest, ok = strings.CutSuffix(s, "B")
	}
	if !ok {
		rest, ok = strings.CutSuffix(s, "b")
	}
	if !ok {
		return 0, "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, "", false
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, "B", true
}

// formatUnits renders bytes against a unit table, dropping the fraction
// when it would print as .00.
func formatUnits(bytes uint64, units []unit) string {
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if bytes < u.multiplier {
			continue
		}
		v := float64(bytes) / float64(u.multiplier)
		if v-float64(uint64(v)) < 0.01 {
			return fmt.Sprintf("%d %s", uint64(v), u.suffix)
		}
		return fmt.Sprintf("%.2f %s", v, u.suffix)
	}
	return fmt.Sprintf("%d B", bytes)
}

func withCommas(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

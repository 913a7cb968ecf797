// Package timestamp provides the epoch and calendar timestamp provider.
// Numeric input is tried as epoch seconds, milliseconds, and
// microseconds within the 2000-2100 window; confidence scales with
// proximity to the current time, since a number near "now" is far more
// likely to be a deliberate timestamp than an old or far-future one.
package timestamp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Plausible epoch window: 2000-01-01 to 2100-01-01.
const (
	minEpochSeconds = 946_684_800
	maxEpochSeconds = 4_102_444_800
)

// Provider implements format.Format for timestamps.
type Provider struct {
	format.Base

	// now is replaceable in tests.
	now func() time.Time
}

// New creates the timestamp provider.
func New() *Provider {
	return &Provider{
		Base: format.Base{
			FormatID:          "epoch",
			FormatName:        "Epoch Timestamp",
			FormatCategory:    "Timestamps",
			FormatDescription: "Unix epoch timestamp (seconds, milliseconds, or microseconds)",
			FormatExamples:    []string{"1735344000", "1735344000000", "2025-08-31T10:00:00Z"},
			FormatAliases:     []string{"unix", "timestamp", "datetime"},
		},
		now: time.Now,
	}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	if n, err := strconv.ParseInt(input, 10, 64); err == nil {
		return p.parseEpoch(n)
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		t = t.UTC()
		return []value.Interpretation{{
			Value:        value.Time(t),
			SourceFormat: "iso-8601",
			Confidence:   0.95,
			Description:  p.describe(t),
		}}
	}
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return []value.Interpretation{{
			Value:        value.Time(t),
			SourceFormat: "iso-8601",
			Confidence:   0.9,
			Description:  p.describe(t),
		}}
	}
	return nil
}

// parseEpoch tries the three magnitudes. A value can be plausible in
// more than one unit (1735344000000 reads as both millis in 2024 and
// seconds in year 56960 - out of window), so each gets its own
// interpretation with a per-unit confidence penalty.
func (p *Provider) parseEpoch(n int64) []value.Interpretation {
	var results []value.Interpretation

	add := func(sourceFormat string, t time.Time, penalty, floor float64) {
		confidence := p.proximityConfidence(t) - penalty
		if confidence < floor {
			confidence = floor
		}
		results = append(results, value.Interpretation{
			Value:        value.Time(t),
			SourceFormat: sourceFormat,
			Confidence:   confidence,
			Description:  p.describe(t),
		})
	}

	if n >= minEpochSeconds && n <= maxEpochSeconds {
		add("epoch-seconds", time.Unix(n, 0).UTC(), 0, 0.75)
	}
	if n >= minEpochSeconds*1_000 && n <= maxEpochSeconds*1_000 {
		add("epoch-millis", time.UnixMilli(n).UTC(), 0.05, 0.70)
	}
	if n >= minEpochSeconds*1_000_000 && n <= maxEpochSeconds*1_000_000 {
		add("epoch-micros", time.UnixMicro(n).UTC(), 0.10, 0.65)
	}
	return results
}

// proximityConfidence scores a timestamp by distance from now.
func (p *Provider) proximityConfidence(t time.Time) float64 {
	diff := p.now().Sub(t)
	if diff < 0 {
		diff = -diff
	}
	const (
		week        = 7 * 24 * time.Hour
		year        = 365 * 24 * time.Hour
		thirtyYears = 30 * year
	)
	switch {
	case diff < week:
		return 0.95
	case diff < year:
		return 0.90
	case diff < thirtyYears:
		// Still beats the plain decimal reading.
		return 0.87
	default:
		return 0.75
	}
}

func (p *Provider) describe(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(time.RFC3339), p.relative(t))
}

// relative renders a time as distance from now ("2 hours ago",
// "in 3 days").
func (p *Provider) relative(t time.Time) string {
	secs := int64(t.Sub(p.now()).Seconds())
	abs := secs
	if abs < 0 {
		abs = -abs
	}

	var n int64
	var unit string
	switch {
	case abs < 60:
		n, unit = abs, "second"
	case abs < 3600:
		n, unit = abs/60, "minute"
	case abs < 86400:
		n, unit = abs/3600, "hour"
	case abs < 604800:
		n, unit = abs/86400, "day"
	case abs < 2592000:
		n, unit = abs/604800, "week"
	case abs < 31536000:
		n, unit = abs/2592000, "month"
	default:
		n, unit = abs/31536000, "year"
	}
	if n != 1 {
		unit += "s"
	}

	switch {
	case secs < 0:
		return fmt.Sprintf("%d %s ago", n, unit)
	case secs > 0:
		return fmt.Sprintf("in %d %s", n, unit)
	default:
		return "now"
	}
}

// Conversions implements format.Format. Times render to their epoch and
// calendar forms; integers in the plausible window convert to times,
// which is what makes hex -> int-be -> epoch-seconds chains work.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	switch v.Kind {
	case value.KindTime:
		return p.timeConversions(v.Time)
	case value.KindInt:
		if v.Int < minEpochSeconds || v.Int > maxEpochSeconds {
			return nil
		}
		t := time.Unix(v.Int, 0).UTC()
		return []value.Conversion{{
			Value:        value.Time(t),
			TargetFormat: "epoch-seconds",
			Display:      p.describe(t),
			Priority:     value.PrioritySemantic,
		}}
	}
	return nil
}

func (p *Provider) timeConversions(t time.Time) []value.Conversion {
	return []value.Conversion{
		{
			Value:        value.Int(t.Unix()),
			TargetFormat: "epoch-seconds",
			Display:      strconv.FormatInt(t.Unix(), 10),
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		},
		{
			Value:        value.Int(t.UnixMilli()),
			TargetFormat: "epoch-millis",
			Display:      strconv.FormatInt(t.UnixMilli(), 10),
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		},
		{
			Value:        value.String(t.Format(time.RFC3339)),
			TargetFormat: "iso-8601",
			Display:      t.Format(time.RFC3339),
			Kind:         value.KindRepresentation,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		},
		{
			Value:        value.String(p.relative(t)),
			TargetFormat: "relative-time",
			Display:      p.relative(t),
			Kind:         value.KindRepresentation,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		},
	}
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindTime {
		return "", false
	}
	return v.Time.Format(time.RFC3339), true
}

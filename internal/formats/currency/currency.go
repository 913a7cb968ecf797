// Package currency parses money amounts ("$100", "50 EUR", "5kSEK") and
// converts them through an injected exchange-rate source. Ambiguous
// symbols like $ yield one interpretation per candidate currency, with
// the user's locale currency boosted.
package currency

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// RateSource supplies exchange rates. Implementations must honor the
// context deadline; a false return means the pair is unavailable and the
// conversion is silently skipped.
type RateSource interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, bool)
}

// symbol maps a currency sign to its candidate ISO codes. Multi-rune and
// multi-currency signs come first so "R$" wins over "R" and "$".
type symbol struct {
	sign  string
	codes []string
}

var symbols = []symbol{
	{"R$", []string{"BRL"}},
	{"C$", []string{"CAD"}},
	{"A$", []string{"AUD"}},
	{"NZ$", []string{"NZD"}},
	{"€", []string{"EUR"}},
	{"£", []string{"GBP"}},
	{"¥", []string{"JPY", "CNY"}},
	{"₹", []string{"INR"}},
	{"₽", []string{"RUB"}},
	{"₩", []string{"KRW"}},
	{"₪", []string{"ILS"}},
	{"₺", []string{"TRY"}},
	{"zł", []string{"PLN"}},
	{"Kč", []string{"CZK"}},
	{"$", []string{"USD", "CAD", "AUD", "NZD", "SGD", "HKD"}},
	{"kr", []string{"SEK", "NOK", "DKK", "ISK"}},
	{"Fr", []string{"CHF"}},
}

var knownCodes = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD", "CNY", "HKD",
	"SGD", "SEK", "NOK", "DKK", "ISK", "PLN", "CZK", "HUF", "RON", "BGN",
	"TRY", "RUB", "INR", "KRW", "THB", "MYR", "IDR", "PHP", "VND", "BRL",
	"MXN", "ZAR", "ILS", "AED", "SAR", "UAH",
}

// displayCurrencies are the targets shown for every money value.
var displayCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "SEK", "NOK", "DKK", "CAD", "AUD",
}

var siPrefixes = []struct {
	suffix     string
	multiplier float64
}{
	{"G", 1e9},
	{"M", 1e6},
	{"k", 1e3},
}

var countryCurrency = map[string]string{
	"US": "USD", "CA": "CAD", "AU": "AUD", "NZ": "NZD", "GB": "GBP",
	"SE": "SEK", "NO": "NOK", "DK": "DKK", "IS": "ISK", "CH": "CHF",
	"JP": "JPY", "CN": "CNY", "HK": "HKD", "SG": "SGD", "IN": "INR",
	"KR": "KRW", "BR": "BRL", "MX": "MXN", "ZA": "ZAR", "PL": "PLN",
	"CZ": "CZK", "TR": "TRY", "UA": "UAH", "IL": "ILS",
	"DE": "EUR", "FR": "EUR", "IT": "EUR", "ES": "EUR", "NL": "EUR",
	"BE": "EUR", "AT": "EUR", "PT": "EUR", "FI": "EUR", "IE": "EUR",
}

// Provider implements format.Format for currency amounts.
type Provider struct {
	format.Base

	rates RateSource
	// localeCode boosts the matching interpretation for ambiguous
	// symbols. Empty disables the boost.
	localeCode string
}

// New creates the currency provider. rates may be nil, in which case
// amounts parse but nothing converts.
func New(rates RateSource) *Provider {
	return &Provider{
		Base: format.Base{
			FormatID:          "currency",
			FormatName:        "Currency",
			FormatCategory:    "Units",
			FormatDescription: "Currency amounts with exchange rate conversion",
			FormatExamples:    []string{"100 USD", "$50", "5kEUR", "£100"},
			FormatAliases:     []string{"money", "fx"},
		},
		rates:      rates,
		localeCode: localeCurrency(os.Getenv),
	}
}

// candidate is one possible reading of the input.
type candidate struct {
	amount     float64
	code       string
	confidence float64
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	var out []value.Interpretation
	for _, c := range parseCurrency(input) {
		if c.amount < 0 {
			continue
		}
		conf := c.confidence
		if p.localeCode != "" && p.localeCode == c.code {
			conf = min(conf+0.15, 0.95)
		}
		out = append(out, value.Interpretation{
			Value:        value.Currency(c.amount, c.code),
			SourceFormat: p.ID(),
			Confidence:   conf,
			Description:  formatAmount(c.amount, c.code),
		})
	}
	return out
}

// Conversions implements format.Format. Each money value is restated in
// the standard display currencies through the rate source.
func (p *Provider) Conversions(ctx context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindCurrency || p.rates == nil {
		return nil
	}
	var out []value.Conversion
	for _, target := range displayCurrencies {
		if target == v.Code {
			continue
		}
		converted, ok := p.rates.Convert(ctx, v.Amount, v.Code, target)
		if !ok {
			continue
		}
		out = append(out, value.Conversion{
			Value:        value.Currency(converted, target),
			TargetFormat: strings.ToLower(target),
			Display:      formatAmount(converted, target),
			Kind:         value.KindRepresentation,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	}
	return out
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindCurrency {
		return "", false
	}
	return formatAmount(v.Amount, v.Code), true
}

// parseCurrency recognizes, in order: symbol prefix ($100), symbol
// suffix (100$), attached code with optional SI prefix (5kUSD), and
// space-separated code (100 USD). The first matching shape wins.
func parseCurrency(input string) []candidate {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	for _, sym := range symbols {
		rest, ok := strings.CutPrefix(input, sym.sign)
		if !ok {
			rest, ok = strings.CutSuffix(input, sym.sign)
		}
		if !ok {
			continue
		}
		amount, ok := parseAmount(rest)
		if !ok {
			continue
		}
		conf := 0.90
		if len(sym.codes) > 1 {
			conf = 0.75
		}
		var out []candidate
		for _, code := range sym.codes {
			out = append(out, candidate{amount, code, conf})
		}
		return out
	}

	upper := strings.ToUpper(input)
	for _, code := range knownCodes {
		if !strings.HasSuffix(upper, code) {
			continue
		}
		if amount, ok := parseAmount(input[:len(input)-len(code)]); ok {
			return []candidate{{amount, code, 0.90}}
		}
	}

	return nil
}

// parseAmount reads a number with an optional trailing SI prefix
// (5k = 5000, 2.5M = 2500000). Thousands separators are tolerated.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, si := range siPrefixes {
		if rest, ok := strings.CutSuffix(s, si.suffix); ok {
			if n, ok := parseNumber(rest); ok {
				return n * si.multiplier, true
			}
		}
	}
	return parseNumber(s)
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// formatAmount renders "€1,234.56" when the code has an unambiguous
// symbol, otherwise "1,234.56 SEK". Sub-unit amounts keep four decimals.
func formatAmount(amount float64, code string) string {
	var sign string
	for _, sym := range symbols {
		if len(sym.codes) == 1 && sym.codes[0] == code {
			sign = sym.sign
			break
		}
	}
	n := formatNumber(amount)
	if sign != "" {
		return sign + n
	}
	return n + " " + code
}

func formatNumber(v float64) string {
	decimals := 2
	if v > -1 && v < 1 {
		decimals = 4
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	intPart, decPart, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	digits := strings.TrimPrefix(intPart, "-")
	if len(digits) > 3 {
		var b strings.Builder
		lead := len(digits) % 3
		if lead > 0 {
			b.WriteString(digits[:lead])
		}
		for i := lead; i < len(digits); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(digits[i : i+3])
		}
		digits = b.String()
	}
	if neg {
		digits = "-" + digits
	}
	return digits + "." + decPart
}

// localeCurrency derives the user's currency from LC_ALL, LANG or
// LC_MONETARY ("en_US.UTF-8" -> USD).
func localeCurrency(getenv func(string) string) string {
	var locale string
	for _, key := range []string{"LC_ALL", "LANG", "LC_MONETARY"} {
		if v := getenv(key); v != "" {
			locale = v
			break
		}
	}
	_, country, ok := strings.Cut(locale, "_")
	if !ok {
		return ""
	}
	country, _, _ = strings.Cut(country, ".")
	return countryCurrency[country]
}

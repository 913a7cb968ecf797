// Package integer provides the decimal integer provider plus the
// bytes-to-integer converter for both endiannesses.
package integer

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for decimal integers.
type Provider struct {
	format.Base
}

// New creates the decimal provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "decimal",
		FormatName:        "Decimal Integer",
		FormatCategory:    "Numbers",
		FormatDescription: "Decimal integer parsing",
		FormatExamples:    []string{"1763574200", "-42", "255"},
		FormatAliases:     []string{"dec", "int", "num"},
	}}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return nil
	}

	// A leading sign means the user typed a number on purpose.
	confidence := 0.85
	if strings.HasPrefix(input, "-") || strings.HasPrefix(input, "+") {
		confidence = 0.9
	}

	return []value.Interpretation{{
		Value:        value.Int(n),
		SourceFormat: p.ID(),
		Confidence:   confidence,
		Description:  fmt.Sprintf("Integer: %d", n),
	}}
}

// Conversions implements format.Format: base representations and number
// traits of an integer, all display-only.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindInt {
		return nil
	}
	n := v.Int
	var convs []value.Conversion

	repr := func(target, display string) {
		convs = append(convs, value.Conversion{
			Value:        value.String(display),
			TargetFormat: target,
			Display:      display,
			Kind:         value.KindRepresentation,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	}
	trait := func(target, display string) {
		convs = append(convs, value.Conversion{
			Value:        value.String(display),
			TargetFormat: target,
			Display:      display,
			Kind:         value.KindTrait,
			Priority:     value.PrioritySemantic,
			DisplayOnly:  true,
		})
	}

	if n >= 0 {
		repr("hex-int", fmt.Sprintf("0x%X", n))
		if n <= math.MaxUint32 {
			repr("binary-int", fmt.Sprintf("0b%b", n))
		}
		repr("octal-int", fmt.Sprintf("0o%o", n))
		if disp, ok := charDisplay(n); ok {
			repr("char", disp)
		}
		if n >= 2 && n&(n-1) == 0 {
			trait("power-of-2", fmt.Sprintf("2^%d", bits.TrailingZeros64(uint64(n))))
		}
		if n >= 4 {
			if root, ok := perfectSquareRoot(n); ok {
				trait("perfect-square", fmt.Sprintf("%d^2", root))
			}
		}
		if idx, ok := fibonacciIndex(n); ok && idx >= 3 {
			trait("fibonacci", fmt.Sprintf("fib(%d)", idx))
		}
	}

	if prime, known := isPrime(n); known && prime {
		trait("prime", "prime")
	}
	if n >= 10 && validLuhn(n) {
		trait("luhn", "valid Luhn checksum")
	}

	return convs
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindInt {
		return "", false
	}
	return strconv.FormatInt(v.Int, 10), true
}

// charDisplay describes an integer read as a Unicode codepoint.
func charDisplay(n int64) (string, bool) {
	if n > utf8.MaxRune {
		return "", false
	}
	r := rune(n)
	switch {
	case n < 32:
		return fmt.Sprintf("'\\u{%02x}' %s", n, controlNames[n]), true
	case n == 127:
		return "'\\u{7f}' DEL (delete)", true
	case n <= 126:
		return fmt.Sprintf("'%c'", r), true
	case utf8.ValidRune(r) && (unicode.IsGraphic(r) || n > 127):
		return fmt.Sprintf("'%c' (U+%04X)", r, n), true
	}
	return "", false
}

var controlNames = []string{
	"NUL (null)", "SOH (start of heading)", "STX (start of text)",
	"ETX (end of text)", "EOT (end of transmission)", "ENQ (enquiry)",
	"ACK (acknowledge)", "BEL (bell)", "BS (backspace)",
	"HT (horizontal tab)", "LF (line feed)", "VT (vertical tab)",
	"FF (form feed)", "CR (carriage return)", "SO (shift out)",
	"SI (shift in)", "DLE (data link escape)", "DC1 (device control 1)",
	"DC2 (device control 2)", "DC3 (device control 3)",
	"DC4 (device control 4)", "NAK (negative ack)",
	"SYN (synchronous idle)", "ETB (end of trans. block)",
	"CAN (cancel)", "EM (end of medium)", "SUB (substitute)",
	"ESC (escape)", "FS (file separator)", "GS (group separator)",
	"RS (record separator)", "US (unit separator)",
}

// primeCheckLimit keeps trial division fast enough to feel instant.
const primeCheckLimit = 1_000_000_000_000

// isPrime reports primality; the second return is false when n is too
// large to check by trial division.
func isPrime(n int64) (bool, bool) {
	if n > primeCheckLimit {
		return false, false
	}
	if n < 2 {
		return false, true
	}
	if n == 2 || n == 3 {
		return true, true
	}
	if n%2 == 0 || n%3 == 0 {
		return false, true
	}
	for i := int64(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false, true
		}
	}
	return true, true
}

// fibonacci holds every Fibonacci number representable in an int64,
// built once at package init.
var fibonacci = func() []int64 {
	fibs := []int64{0, 1}
	for {
		next := fibs[len(fibs)-1] + fibs[len(fibs)-2]
		if next < fibs[len(fibs)-1] {
			return fibs
		}
		fibs = append(fibs, next)
	}
}()

func fibonacciIndex(n int64) (int, bool) {
	for i, f := range fibonacci {
		if f == n {
			return i, true
		}
		if f > n {
			break
		}
	}
	return 0, false
}

func perfectSquareRoot(n int64) (int64, bool) {
	root := int64(math.Sqrt(float64(n)))
	// Float imprecision can land one off in either direction.
	for _, r := range []int64{root - 1, root, root + 1} {
		if r >= 0 && r*r == n {
			return r, true
		}
	}
	return 0, false
}

// validLuhn reports whether n passes the Luhn checksum used by credit
// card numbers, IMEIs, and similar identifiers.
func validLuhn(n int64) bool {
	if n < 10 {
		return false
	}
	var sum int64
	double := false
	for n > 0 {
		digit := n % 10
		n /= 10
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

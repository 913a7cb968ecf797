// Package expr evaluates arithmetic expressions over 64-bit integers.
// Literals may be decimal, 0x hex, 0b binary or 0o octal; operators
// cover + - * / %, exponentiation via ^, bitwise | and &, and shifts.
package expr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Grammar precedence, loosest first: | then & then shifts then +- then
// */% then ^ (right-associative) then unary minus and atoms.
//
//nolint:govet // participle grammar tags are not standard struct tags
type expression struct {
	Head *bitAnd  `parser:"@@"`
	Tail []*orOp  `parser:"@@*"`
}

//nolint:govet
type orOp struct {
	Operand *bitAnd `parser:"\"|\" @@"`
}

//nolint:govet
type bitAnd struct {
	Head *shift     `parser:"@@"`
	Tail []*andOp   `parser:"@@*"`
}

//nolint:govet
type andOp struct {
	Operand *shift `parser:"\"&\" @@"`
}

//nolint:govet
type shift struct {
	Head *additive  `parser:"@@"`
	Tail []*shiftOp `parser:"@@*"`
}

//nolint:govet
type shiftOp struct {
	Op      string    `parser:"@Shift"`
	Operand *additive `parser:"@@"`
}

//nolint:govet
type additive struct {
	Head *term    `parser:"@@"`
	Tail []*addOp `parser:"@@*"`
}

//nolint:govet
type addOp struct {
	Op      string `parser:"@(\"+\" | \"-\")"`
	Operand *term  `parser:"@@"`
}

//nolint:govet
type term struct {
	Head *power    `parser:"@@"`
	Tail []*mulOp  `parser:"@@*"`
}

//nolint:govet
type mulOp struct {
	Op      string `parser:"@(\"*\" | \"/\" | \"%\")"`
	Operand *power `parser:"@@"`
}

//nolint:govet
type power struct {
	Base *unary `parser:"@@"`
	Exp  *power `parser:"(\"^\" @@)?"`
}

//nolint:govet
type unary struct {
	Neg  bool  `parser:"@\"-\"?"`
	Atom *atom `parser:"@@"`
}

//nolint:govet
type atom struct {
	Hex    *string     `parser:"  @Hex"`
	Bin    *string     `parser:"| @Bin"`
	Oct    *string     `parser:"| @Oct"`
	Int    *string     `parser:"| @Int"`
	Nested *expression `parser:"| \"(\" @@ \")\""`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F]+`},
	{Name: "Bin", Pattern: `0[bB][01]+`},
	{Name: "Oct", Pattern: `0[oO][0-7]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Shift", Pattern: `<<|>>`},
	{Name: "Punct", Pattern: `[-+*/%^()|&]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// Provider implements format.Format for arithmetic expressions.
type Provider struct {
	format.Base
}

// New creates the expression provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "expr",
		FormatName:        "Expression",
		FormatCategory:    "Math",
		FormatDescription: "Mathematical expressions with hex/binary/octal support",
		FormatExamples:    []string{"2 + 2", "0xFF + 1", "1 << 8", "0b1010 | 0b0101"},
		FormatAliases:     []string{"math", "calc"},
	}}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	trimmed := strings.TrimSpace(input)
	if !looksLikeExpression(trimmed) {
		return nil
	}
	parsed, err := exprParser.ParseString("", trimmed)
	if err != nil {
		return nil
	}
	n, err := parsed.eval()
	if err != nil {
		return nil
	}
	return []value.Interpretation{{
		Value:        value.Int(n),
		SourceFormat: p.ID(),
		Confidence:   confidence(trimmed),
		Description:  fmt.Sprintf("%s = %d", trimmed, n),
	}}
}

// SourceConversions implements format.SourceConverter: the evaluated
// result is shown as a primary edge, but only when the expression was
// the root interpretation, so plain integers from other sources do not
// pick it up.
func (p *Provider) SourceConversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindInt {
		return nil
	}
	return []value.Conversion{{
		Value:        value.Int(v.Int),
		TargetFormat: "result",
		Display:      strconv.FormatInt(v.Int, 10),
		Kind:         value.KindConversion,
		Priority:     value.PriorityPrimary,
		DisplayOnly:  true,
	}}
}

// looksLikeExpression filters inputs before parsing: some operator or a
// call shape must be present alongside alphanumerics, while shapes that
// merely contain operator characters (UUIDs, URLs, slashed dates) are
// passed over.
func looksLikeExpression(input string) bool {
	hasOperator := strings.ContainsAny(input, "+-*/%^|&<>")
	hasAlnum := strings.ContainsFunc(input, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	hasCall := strings.Contains(input, "(") && strings.Contains(input, ")") && hasAlnum

	looksLikeUUID := len(input) == 36 && strings.Count(input, "-") == 4
	looksLikeURL := strings.Contains(input, "://") || strings.HasPrefix(input, "http")
	looksLikeDate := strings.Count(input, "/") >= 2

	return (hasOperator || hasCall) && hasAlnum &&
		!looksLikeUUID && !looksLikeURL && !looksLikeDate
}

// confidence grows with operator density: dense arithmetic, shifts and
// bitwise operators are almost certainly intentional expressions, while
// a lone +/- also appears inside dates and identifiers.
func confidence(input string) float64 {
	mulDiv := 0
	addSub := 0
	for _, r := range input {
		switch r {
		case '*', '/', '%', '^':
			mulDiv++
		case '+', '-':
			addSub++
		}
	}
	hasBitwise := strings.ContainsAny(input, "|&")
	hasShift := strings.Contains(input, "<<") || strings.Contains(input, ">>")

	switch {
	case mulDiv >= 2 || hasShift || hasBitwise:
		return 0.95
	case mulDiv == 1:
		return 0.85
	case addSub >= 1:
		return 0.75
	default:
		return 0.5
	}
}

func (e *expression) eval() (int64, error) {
	n, err := e.Head.eval()
	if err != nil {
		return 0, err
	}
	for _, op := range e.Tail {
		rhs, err := op.Operand.eval()
		if err != nil {
			return 0, err
		}
		n |= rhs
	}
	return n, nil
}

func (b *bitAnd) eval() (int64, error) {
	n, err := b.Head.eval()
	if err != nil {
		return 0, err
	}
	for _, op := range b.Tail {
		rhs, err := op.Operand.eval()
		if err != nil {
			return 0, err
		}
		n &= rhs
	}
	return n, nil
}

func (s *shift) eval() (int64, error) {
	n, err := s.Head.eval()
	if err != nil {
		return 0, err
	}
	for _, op := range s.Tail {
		rhs, err := op.Operand.eval()
		if err != nil {
			return 0, err
		}
		if rhs < 0 || rhs > 63 {
			return 0, fmt.Errorf("shift count %d out of range", rhs)
		}
		if op.Op == "<<" {
			n <<= uint(rhs)
		} else {
			n >>= uint(rhs)
		}
	}
	return n, nil
}

func (a *additive) eval() (int64, error) {
	n, err := a.Head.eval()
	if err != nil {
		return 0, err
	}
	for _, op := range a.Tail {
		rhs, err := op.Operand.eval()
		if err != nil {
			return 0, err
		}
		if op.Op == "+" {
			n += rhs
		} else {
			n -= rhs
		}
	}
	return n, nil
}

func (t *term) eval() (int64, error) {
	n, err := t.Head.eval()
	if err != nil {
		return 0, err
	}
	for _, op := range t.Tail {
		rhs, err := op.Operand.eval()
		if err != nil {
			return 0, err
		}
		switch op.Op {
		case "*":
			n *= rhs
		case "/":
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			n /= rhs
		case "%":
			if rhs == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			n %= rhs
		}
	}
	return n, nil
}

func (p *power) eval() (int64, error) {
	base, err := p.Base.eval()
	if err != nil {
		return 0, err
	}
	if p.Exp == nil {
		return base, nil
	}
	exp, err := p.Exp.eval()
	if err != nil {
		return 0, err
	}
	return ipow(base, exp)
}

func (u *unary) eval() (int64, error) {
	n, err := u.Atom.eval()
	if err != nil {
		return 0, err
	}
	if u.Neg {
		n = -n
	}
	return n, nil
}

func (a *atom) eval() (int64, error) {
	switch {
	case a.Hex != nil:
		return strconv.ParseInt((*a.Hex)[2:], 16, 64)
	case a.Bin != nil:
		return strconv.ParseInt((*a.Bin)[2:], 2, 64)
	case a.Oct != nil:
		return strconv.ParseInt((*a.Oct)[2:], 8, 64)
	case a.Int != nil:
		return strconv.ParseInt(*a.Int, 10, 64)
	case a.Nested != nil:
		return a.Nested.eval()
	}
	return 0, fmt.Errorf("empty atom")
}

// ipow is exponentiation by squaring with overflow detection. Negative
// exponents have no integer result.
func ipow(base, exp int64) (int64, error) {
	if exp < 0 {
		return 0, fmt.Errorf("negative exponent %d", exp)
	}
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			prev := result
			result *= base
			if base != 0 && result/base != prev {
				return 0, fmt.Errorf("exponentiation overflow")
			}
		}
		exp >>= 1
		if exp > 0 {
			prev := base
			base *= base
			if prev != 0 && base/prev != prev {
				return 0, fmt.Errorf("exponentiation overflow")
			}
		}
	}
	return result, nil
}

// Package value defines the canonical value types that all format
// providers convert between, plus the two result records produced by the
// interpretation and conversion engines.
package value

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies which variant of a Value is populated. The kind fully
// determines which provider capabilities apply; there is no untyped variant.
type Kind int

const (
	KindInvalid Kind = iota
	KindBytes
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindJSON
	KindCurrency
	KindDuration
)

// String returns the lowercase type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindJSON:
		return "json"
	case KindCurrency:
		return "currency"
	case KindDuration:
		return "duration"
	default:
		return "invalid"
	}
}

// Value is the tagged union passed between the engine and format providers.
// Exactly one variant field is meaningful, selected by Kind. Values are
// immutable by convention: providers build new Values rather than mutating
// received ones.
type Value struct {
	Kind Kind

	Bytes []byte
	Str   string
	Int   int64
	// IntBytes preserves the original byte layout for integers produced
	// from raw bytes, so endianness variants can be paired up later.
	// It is metadata, not identity: two Ints with equal Int compare equal
	// regardless of IntBytes.
	IntBytes []byte
	Float    float64
	Bool     bool
	Time     time.Time
	JSON     any
	// Currency variant: Amount in major units with an ISO 4217 Code.
	Amount   float64
	Code     string
	Duration time.Duration
}

// Constructors. Providers should use these instead of struct literals so
// the Kind tag always matches the populated field.

func Bytes(b []byte) Value               { return Value{Kind: KindBytes, Bytes: b} }
func String(s string) Value              { return Value{Kind: KindString, Str: s} }
func Int(v int64) Value                  { return Value{Kind: KindInt, Int: v} }
func Float(f float64) Value              { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value                  { return Value{Kind: KindBool, Bool: b} }
func Time(t time.Time) Value             { return Value{Kind: KindTime, Time: t.UTC()} }
func JSON(doc any) Value                 { return Value{Kind: KindJSON, JSON: doc} }
func Currency(amount float64, code string) Value {
	return Value{Kind: KindCurrency, Amount: amount, Code: code}
}
func Duration(d time.Duration) Value { return Value{Kind: KindDuration, Duration: d} }

// IntFromBytes builds an integer value that remembers the byte layout it
// was decoded from.
func IntFromBytes(v int64, raw []byte) Value {
	b := make([]byte, len(raw))
	copy(b, raw)
	return Value{Kind: KindInt, Int: v, IntBytes: b}
}

// Key returns a canonical fingerprint of the value used for visited-set
// and dedup checks. Structurally equal values produce identical keys;
// metadata such as IntBytes is excluded. JSON documents are keyed by a
// compact re-marshal, which sorts object keys, so logically equal
// documents collide as intended.
func (v Value) Key() string {
	switch v.Kind {
	case KindBytes:
		return "b:" + hex.EncodeToString(v.Bytes)
	case KindString:
		return "s:" + v.Str
	case KindInt:
		return "i:" + strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.Float), 16)
	case KindBool:
		if v.Bool {
			return "o:1"
		}
		return "o:0"
	case KindTime:
		return "t:" + strconv.FormatInt(v.Time.UnixNano(), 10)
	case KindJSON:
		data, err := json.Marshal(v.JSON)
		if err != nil {
			return "j:!" + fmt.Sprint(v.JSON)
		}
		return "j:" + string(data)
	case KindCurrency:
		return "c:" + v.Code + ":" + strconv.FormatUint(math.Float64bits(v.Amount), 16)
	case KindDuration:
		return "d:" + strconv.FormatInt(int64(v.Duration), 10)
	default:
		return "invalid"
	}
}

// Equal reports structural equality, the node-identity relation for the
// conversion graph.
func (v Value) Equal(other Value) bool {
	return v.Kind == other.Kind && v.Key() == other.Key()
}

// MarshalJSON serializes the value as a {"type": ..., "value": ...} pair,
// the shape consumed by the API server and CLI JSON output.
func (v Value) MarshalJSON() ([]byte, error) {
	var inner any
	switch v.Kind {
	case KindBytes:
		inner = hex.EncodeToString(v.Bytes)
	case KindString:
		inner = v.Str
	case KindInt:
		inner = v.Int
	case KindFloat:
		inner = v.Float
	case KindBool:
		inner = v.Bool
	case KindTime:
		inner = v.Time.Format(time.RFC3339Nano)
	case KindJSON:
		inner = v.JSON
	case KindCurrency:
		inner = map[string]any{"amount": v.Amount, "code": v.Code}
	case KindDuration:
		inner = v.Duration.String()
	default:
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}{Type: v.Kind.String(), Value: inner})
}

package integer

import (
	"context"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// BytesProvider converts byte values to integers in both endiannesses.
// It parses nothing itself; it only contributes edges.
type BytesProvider struct {
	format.Base
}

// NewBytes creates the bytes-to-integer provider.
func NewBytes() *BytesProvider {
	return &BytesProvider{Base: format.Base{
		FormatID:          "bytes-to-int",
		FormatName:        "Bytes to Integer",
		FormatCategory:    "Numbers",
		FormatDescription: "Reads raw bytes as big- and little-endian integers",
	}}
}

// Conversions implements format.Format. The integer values carry their
// source bytes so downstream epoch and size readings can reference the
// original byte order.
func (p *BytesProvider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes {
		return nil
	}
	b := v.Bytes
	if len(b) == 0 || len(b) > 8 {
		return nil
	}
	// Five random bytes are fair game; five bytes of prose are not.
	// "hello" read big-endian is never what anyone wants.
	if len(b) > 4 && looksLikeText(b) {
		return nil
	}

	var convs []value.Conversion
	edge := func(target string, n int64) {
		convs = append(convs, value.Conversion{
			Value:        value.IntFromBytes(n, b),
			TargetFormat: target,
			Display:      strconv.FormatInt(n, 10),
			Priority:     value.PriorityRaw,
		})
	}

	be, beOK := bytesToInt(b, false)
	le, leOK := bytesToInt(b, true)
	if beOK {
		edge("int-be", be)
	}
	if leOK && (!beOK || le != be) {
		edge("int-le", le)
	}
	return convs
}

// bytesToInt accumulates up to 8 bytes into a non-negative int64. The
// second return is false when the value would overflow the sign bit.
func bytesToInt(b []byte, littleEndian bool) (int64, bool) {
	var n uint64
	for i, by := range b {
		if littleEndian {
			n |= uint64(by) << (8 * i)
		} else {
			n = n<<8 | uint64(by)
		}
	}
	if n > uint64(1)<<63-1 {
		return 0, false
	}
	return int64(n), true
}

// looksLikeText reports whether the bytes are predominantly printable
// UTF-8.
func looksLikeText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	total, printable := 0, 0
	for _, r := range string(b) {
		total++
		if !unicode.IsControl(r) || r == '\n' || r == '\t' || r == '\r' {
			printable++
		}
	}
	return total > 0 && float64(printable)/float64(total) > 0.8
}

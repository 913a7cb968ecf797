// Package archive detects compressed byte streams by magic number and
// decompresses them so traversal can continue into the contents.
package archive

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// inflateCap bounds decompression output. Streams that inflate past the
// cap still get a detection trait, but their contents are not expanded.
const inflateCap = 1 << 20

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// Provider implements format.Format for compressed data. It has no text
// parse of its own; compressed bytes reach it through decoding chains
// like base64 -> bytes.
type Provider struct {
	format.Base
}

// New creates the archive provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "archive",
		FormatName:        "Compressed Data",
		FormatCategory:    "Archives",
		FormatDescription: "gzip, zlib and xz compressed streams",
		FormatExamples:    []string{"H4sIAAAAAAAA..."},
		FormatAliases:     []string{"gz", "gzip", "compressed"},
	}}
}

// Conversions implements format.Format.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes {
		return nil
	}
	codec := detect(v.Bytes)
	if codec == "" {
		return nil
	}

	out := []value.Conversion{{
		Value:        value.String(fmt.Sprintf("%s compressed data", codec)),
		TargetFormat: "compression",
		Display:      fmt.Sprintf("%s compressed data, %d bytes", codec, len(v.Bytes)),
		Kind:         value.KindTrait,
		Priority:     value.PrioritySemantic,
		DisplayOnly:  true,
	}}

	payload, err := inflate(codec, v.Bytes)
	if err != nil {
		return out
	}
	out = append(out, value.Conversion{
		Value:        value.Bytes(payload),
		TargetFormat: "decompressed",
		Display:      fmt.Sprintf("%d bytes decompressed (%s)", len(payload), codec),
		Kind:         value.KindConversion,
		Priority:     value.PrioritySemantic,
	})
	return out
}

// detect identifies the compression codec by magic number, or returns
// the empty string.
func detect(data []byte) string {
	switch {
	case len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B:
		return "gzip"
	case bytes.HasPrefix(data, xzMagic):
		return "xz"
	case isZlib(data):
		return "zlib"
	default:
		return ""
	}
}

// isZlib checks the two-byte zlib header: deflate method with a valid
// FCHECK checksum.
func isZlib(data []byte) bool {
	if len(data) < 2 || data[0]&0x0F != 0x08 {
		return false
	}
	return (uint16(data[0])<<8|uint16(data[1]))%31 == 0
}

// inflate decompresses data with the detected codec, failing when the
// output exceeds inflateCap.
func inflate(codec string, data []byte) ([]byte, error) {
	var r io.Reader
	var err error
	switch codec {
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(data))
	case "zlib":
		r, err = zlib.NewReader(bytes.NewReader(data))
	case "xz":
		r, err = xz.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
	if err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(io.LimitReader(r, inflateCap+1))
	if err != nil {
		return nil, err
	}
	if len(payload) > inflateCap {
		return nil, fmt.Errorf("decompressed output exceeds %d bytes", inflateCap)
	}
	return payload, nil
}

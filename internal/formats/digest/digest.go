// Package digest provides the hash digest provider. It parses nothing;
// it contributes one-way digest conversions from byte values.
package digest

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash/crc32"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for digest calculation.
type Provider struct {
	format.Base
}

// New creates the digest provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "digest",
		FormatName:        "Hash Digests",
		FormatCategory:    "Encoding",
		FormatDescription: "Calculates hash digests (CRC32, MD5, SHA, BLAKE3)",
	}}
}

// Conversions implements format.Format. Every edge is lossy (hashes are
// one-way) and display-only (a digest string is an endpoint, not a new
// input).
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes {
		return nil
	}
	b := v.Bytes

	edge := func(algorithm string, sum []byte) value.Conversion {
		s := hex.EncodeToString(sum)
		return value.Conversion{
			Value:        value.String(s),
			TargetFormat: algorithm,
			Display:      s,
			IsLossy:      true,
			Priority:     value.PriorityEncoding,
			DisplayOnly:  true,
		}
	}

	crc := crc32.ChecksumIEEE(b)
	md5Sum := md5.Sum(b)
	sha1Sum := sha1.Sum(b)
	sha256Sum := sha256.Sum256(b)
	sha512Sum := sha512.Sum512(b)
	blake3Sum := blake3.Sum256(b)

	return []value.Conversion{
		edge("crc32", []byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}),
		edge("md5", md5Sum[:]),
		edge("sha1", sha1Sum[:]),
		edge("sha256", sha256Sum[:]),
		edge("sha512", sha512Sum[:]),
		edge("blake3", blake3Sum[:]),
	}
}

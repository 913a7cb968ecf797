// Package ipaddr provides the IP address provider for IPv4 and IPv6,
// including the 4- and 16-byte value to address conversions.
package ipaddr

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for IP addresses.
type Provider struct {
	format.Base
}

// New creates the IP address provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "ip",
		FormatName:        "IP Address",
		FormatCategory:    "Network",
		FormatDescription: "IPv4 and IPv6 address parsing",
		FormatExamples:    []string{"192.168.1.1", "fe80::1", "2001:db8::8a2e:370:7334"},
		FormatAliases:     []string{"ipv4", "ipv6", "addr"},
	}}
}

// Parse implements format.Format. The value is the raw 4- or 16-byte
// address, so byte-level conversions keep working downstream.
func (p *Provider) Parse(input string) []value.Interpretation {
	addr, err := netip.ParseAddr(input)
	if err != nil {
		return nil
	}

	// netip parses 4-in-6 forms like ::ffff:1.2.3.4 as IPv6.
	family, source := "IPv6", "ipv6"
	if addr.Is4() {
		family, source = "IPv4", "ipv4"
	}
	raw := addr.AsSlice()

	return []value.Interpretation{{
		Value:        value.Bytes(raw),
		SourceFormat: source,
		Confidence:   0.9,
		Description:  fmt.Sprintf("%s: %s (%s)", family, addr, scope(addr)),
	}}
}

// Conversions implements format.Format: 4 bytes read as IPv4, 16 bytes
// as IPv6.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindBytes {
		return nil
	}
	addr, ok := netip.AddrFromSlice(v.Bytes)
	if !ok {
		return nil
	}

	target := "ipv6"
	if addr.Is4() {
		target = "ipv4"
	}
	return []value.Conversion{{
		Value:        value.String(addr.String()),
		TargetFormat: target,
		Display:      fmt.Sprintf("%s (%s)", addr, scope(addr)),
		Priority:     value.PrioritySemantic,
	}}
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindBytes {
		return "", false
	}
	addr, ok := netip.AddrFromSlice(v.Bytes)
	if !ok {
		return "", false
	}
	return addr.String(), true
}

// scope classifies an address the way network operators talk about it.
func scope(addr netip.Addr) string {
	switch {
	case addr.IsLoopback():
		return "Loopback"
	case addr.IsPrivate():
		return "Private"
	case addr.IsLinkLocalUnicast():
		return "Link-local"
	case addr.IsMulticast():
		return "Multicast"
	case addr.IsUnspecified():
		return "Unspecified"
	case isDocumentation(addr):
		return "Documentation"
	case addr.Is4() && addr.As4() == [4]byte{255, 255, 255, 255}:
		return "Broadcast"
	case addr.Is6():
		return "Global unicast"
	default:
		return "Public"
	}
}

var documentationPrefixes = []netip.Prefix{
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("2001:db8::/32"),
}

func isDocumentation(addr netip.Addr) bool {
	for _, p := range documentationPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

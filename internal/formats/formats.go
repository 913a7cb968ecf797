// Package formats assembles the built-in format providers into a
// registry. Registration order is observable: it breaks confidence ties
// between interpretations and fixes edge discovery order, so the list
// goes from high-specificity providers down to the plain-text fallback,
// with conversion-only providers at the end.
package formats

import (
	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/internal/formats/archive"
	"github.com/FocuswithJustin/DataLens/internal/formats/base64fmt"
	"github.com/FocuswithJustin/DataLens/internal/formats/currency"
	"github.com/FocuswithJustin/DataLens/internal/formats/datasize"
	"github.com/FocuswithJustin/DataLens/internal/formats/digest"
	"github.com/FocuswithJustin/DataLens/internal/formats/expr"
	"github.com/FocuswithJustin/DataLens/internal/formats/hexfmt"
	"github.com/FocuswithJustin/DataLens/internal/formats/integer"
	"github.com/FocuswithJustin/DataLens/internal/formats/ipaddr"
	"github.com/FocuswithJustin/DataLens/internal/formats/jsondoc"
	"github.com/FocuswithJustin/DataLens/internal/formats/text"
	"github.com/FocuswithJustin/DataLens/internal/formats/timestamp"
	"github.com/FocuswithJustin/DataLens/internal/formats/uuidfmt"
	"github.com/FocuswithJustin/DataLens/internal/formats/xmldoc"
	"github.com/FocuswithJustin/DataLens/internal/logging"
)

// Options carries collaborators for providers that need them. The zero
// value assembles a fully offline registry.
type Options struct {
	// Rates feeds the currency provider; nil disables currency
	// conversions while amounts still parse.
	Rates currency.RateSource
}

// NewRegistry builds the default provider registry.
func NewRegistry(opts Options) *format.Registry {
	providers := []format.Format{
		uuidfmt.New(),
		ipaddr.New(),
		digest.New(),
		hexfmt.New(),
		base64fmt.New(),
		integer.New(),
		datasize.New(),
		currency.New(opts.Rates),
		expr.New(),
		timestamp.New(),
		jsondoc.New(),
		xmldoc.New(),
		text.New(),
		integer.NewBytes(),
		archive.New(),
	}
	for _, p := range providers {
		logging.ProviderRegistered(p.ID(), p.Info().Category)
	}
	return format.NewRegistry(providers...)
}

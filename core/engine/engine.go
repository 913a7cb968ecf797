package engine

import (
	"context"
	"sort"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
	"github.com/FocuswithJustin/DataLens/internal/logging"
)

// fallbackFormat is the ID reported by the guaranteed plain-text
// interpretation when no provider matched at all.
const fallbackFormat = "text"

// Engine combines the interpretation coordinator and the conversion-graph
// traversal over one ordered provider registry. An Engine is immutable
// after construction and safe for concurrent use; no state persists
// between requests.
type Engine struct {
	registry *format.Registry
	cfg      Config
}

// New creates an engine over the given registry with injected policy.
func New(registry *format.Registry, cfg Config) *Engine {
	return &Engine{registry: registry, cfg: cfg}
}

// Registry exposes the provider registry for listings.
func (e *Engine) Registry() *format.Registry {
	return e.registry
}

// Interpret runs every provider's Parse against the input and returns the
// flat union, sorted by confidence descending. Equal confidences keep
// provider registration order (the documented tie-break). Every non-empty
// input yields at least one interpretation.
func (e *Engine) Interpret(input string) []value.Interpretation {
	return e.interpretWith(e.registry.All(), input)
}

// InterpretFiltered is Interpret restricted to providers matching the
// given names. An empty filter means all providers.
func (e *Engine) InterpretFiltered(input string, filter []string) []value.Interpretation {
	return e.interpretWith(e.registry.Filter(filter), input)
}

func (e *Engine) interpretWith(formats []format.Format, input string) []value.Interpretation {
	results := e.parseAll(formats, input)

	if len(results) == 0 && input != "" {
		// No provider claimed the input, not even the plain-text
		// fallback (e.g. a filtered registry). Degrade rather than
		// return an empty set.
		results = append(results, value.Interpretation{
			Value:        value.String(input),
			SourceFormat: fallbackFormat,
			Confidence:   0.05,
			Description:  "plain text",
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// parseAll collects raw parse results in provider order, clamping
// confidences into [0,1]. Used directly by string reinterpretation,
// which needs neither the fallback nor confidence ordering.
func (e *Engine) parseAll(formats []format.Format, input string) []value.Interpretation {
	var results []value.Interpretation
	for _, f := range formats {
		for _, interp := range e.safeParse(f, input) {
			if interp.Confidence < 0 {
				interp.Confidence = 0
			} else if interp.Confidence > 1 {
				interp.Confidence = 1
			}
			results = append(results, interp)
		}
	}
	return results
}

// ConvertAll interprets the input and runs one graph traversal per
// interpretation.
func (e *Engine) ConvertAll(ctx context.Context, input string) []value.Result {
	return e.convertInterps(ctx, input, e.Interpret(input))
}

// ConvertAllFiltered is ConvertAll with interpretation restricted to the
// named providers. Conversions still use the full registry.
func (e *Engine) ConvertAllFiltered(ctx context.Context, input string, filter []string) []value.Result {
	return e.convertInterps(ctx, input, e.InterpretFiltered(input, filter))
}

func (e *Engine) convertInterps(ctx context.Context, input string, interps []value.Interpretation) []value.Result {
	results := make([]value.Result, 0, len(interps))
	for _, interp := range interps {
		results = append(results, value.Result{
			Input:          input,
			Interpretation: interp,
			Conversions:    e.Convert(ctx, interp.Value, interp.SourceFormat),
		})
	}
	return results
}

// safeParse invokes a provider's Parse, converting panics into "no
// result". Providers must never panic; misbehaving ones are neutralized
// rather than trusted.
func (e *Engine) safeParse(f format.Format, input string) (out []value.Interpretation) {
	defer func() {
		if r := recover(); r != nil {
			logging.ProviderError(f.ID(), "parse", r)
			out = nil
		}
	}()
	return f.Parse(input)
}

// safeConversions invokes a provider's Conversions under the configured
// per-call timeout, converting panics into "no edges".
func (e *Engine) safeConversions(ctx context.Context, f format.Format, v value.Value) (out []value.Conversion) {
	defer func() {
		if r := recover(); r != nil {
			logging.ProviderError(f.ID(), "conversions", r)
			out = nil
		}
	}()
	if e.cfg.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ProviderTimeout)
		defer cancel()
	}
	return f.Conversions(ctx, v)
}

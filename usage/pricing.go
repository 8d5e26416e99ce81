package usage

import "strings"

// Pricing describes what one model charges. Token and character metrics are
// priced per million units; images are priced per unit. A zero price renders
// as raw consumption rather than a dollar figure, which is how
// subscription-metered speech services are represented.
type Pricing struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	CharactersPerMillion float64
	PerImage             float64
}

// defaultPricing maps model id prefixes to list prices. Longest matching
// prefix wins so "gemini-2.0-flash-exp" picks up the flash rate.
var defaultPricing = map[string]Pricing{
	"gemini-2.0-flash": {InputPerMillion: 0.10, OutputPerMillion: 0.40, PerImage: 0.039},
	"gemini-2.5-flash": {InputPerMillion: 0.30, OutputPerMillion: 2.50, PerImage: 0.039},
	"gemini-2.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-1.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 5.00},
	"imagen-3":         {PerImage: 0.04},
	"command-r":        {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	// ElevenLabs voices are subscription metered; characters carry no
	// per-unit dollar price and display as raw consumption.
	"eleven_": {},
}

// pricingFor resolves the price for a model id, preferring exact override,
// then exact default, then the longest default prefix.
func pricingFor(modelID string, overrides map[string]Pricing) Pricing {
	if p, ok := overrides[modelID]; ok {
		return p
	}
	if p, ok := defaultPricing[modelID]; ok {
		return p
	}
	best := ""
	var found Pricing
	for prefix, p := range defaultPricing {
		if strings.HasPrefix(modelID, prefix) && len(prefix) > len(best) {
			best = prefix
			found = p
		}
	}
	for prefix, p := range overrides {
		if strings.HasPrefix(modelID, prefix) && len(prefix) > len(best) {
			best = prefix
			found = p
		}
	}
	return found
}

func eventCost(ev Event, overrides map[string]Pricing) float64 {
	p := pricingFor(ev.ModelID, overrides)
	v := float64(ev.Value)
	switch ev.Metric {
	case MetricInputTokens:
		return v / 1e6 * p.InputPerMillion
	case MetricOutputTokens:
		return v / 1e6 * p.OutputPerMillion
	case MetricCharacters:
		return v / 1e6 * p.CharactersPerMillion
	case MetricImages:
		return v * p.PerImage
	}
	return 0
}

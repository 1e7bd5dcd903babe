package cost

import (
	"fmt"
	"strings"
)

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
//
// Example usage:
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:       0.15,
//	    OutputCostPerMillion:      0.60,
//	    CachedInputCostPerMillion: 0.075,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million input tokens
	InputCostPerMillion float64 `json:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million"`

	// CachedInputCostPerMillion is the cost in USD per 1 million cached input tokens
	// Some providers offer discounted rates for cached tokens (optional)
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty"`
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// CalculateCachedCost calculates the cost for the given number of cached tokens.
func (mc ModelCost) CalculateCachedCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.CachedInputCostPerMillion
}

// CalculateTotalCost calculates the total cost for all token types.
func (mc ModelCost) CalculateTotalCost(inputTokens, outputTokens, cachedTokens int) float64 {
	total := mc.CalculateInputCost(inputTokens)
	total += mc.CalculateOutputCost(outputTokens)

	if mc.CachedInputCostPerMillion > 0 && cachedTokens > 0 {
		total += mc.CalculateCachedCost(cachedTokens)
	}

	return total
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Summary provides a breakdown of the costs accumulated over one or more
// queries against a single model.
type Summary struct {
	// InputCost is the cost from input (prompt) tokens
	InputCost float64 `json:"input_cost"`

	// OutputCost is the cost from output (completion) tokens
	OutputCost float64 `json:"output_cost"`

	// CachedCost is the cost from cached input tokens
	CachedCost float64 `json:"cached_cost,omitempty"`

	// TotalCost is the grand total
	TotalCost float64 `json:"total_cost"`

	// Currency is always "USD" for consistency
	Currency string `json:"currency"`
}

// Summarize builds a [Summary] for the given token counts.
func (mc ModelCost) Summarize(inputTokens, outputTokens, cachedTokens int) Summary {
	summary := Summary{
		InputCost:  mc.CalculateInputCost(inputTokens),
		OutputCost: mc.CalculateOutputCost(outputTokens),
		Currency:   "USD",
	}
	if mc.CachedInputCostPerMillion > 0 && cachedTokens > 0 {
		summary.CachedCost = mc.CalculateCachedCost(cachedTokens)
	}
	summary.TotalCost = summary.InputCost + summary.OutputCost + summary.CachedCost
	return summary
}

// String returns a human-readable one-line breakdown of the summary.
func (s Summary) String() string {
	return fmt.Sprintf("input $%.6f + output $%.6f + cached $%.6f = $%.6f %s",
		s.InputCost, s.OutputCost, s.CachedCost, s.TotalCost, s.Currency)
}

// pricingTable lists publicly documented per-million-token prices for the
// models the bundled providers default to. Prices move; treat these as
// estimates for reporting, not billing.
var pricingTable = map[string]ModelCost{
	// OpenAI
	"gpt-4o-mini": {InputCostPerMillion: 0.15, OutputCostPerMillion: 0.60, CachedInputCostPerMillion: 0.075},
	"gpt-4o":      {InputCostPerMillion: 2.50, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 1.25},
	"gpt-4.1":     {InputCostPerMillion: 2.00, OutputCostPerMillion: 8.00, CachedInputCostPerMillion: 0.50},

	// Cerebras
	"llama-3.3-70b": {InputCostPerMillion: 0.85, OutputCostPerMillion: 1.20},

	// Groq
	"llama-3.3-70b-versatile": {InputCostPerMillion: 0.59, OutputCostPerMillion: 0.79},
}

// PricingFor looks up the published pricing for a model identifier. The
// second return value reports whether the model is known; unknown models
// return a zero ModelCost so callers can fall back to their own table.
func PricingFor(model string) (ModelCost, bool) {
	pricing, ok := pricingTable[strings.ToLower(strings.TrimSpace(model))]
	return pricing, ok
}

// Package cost defines pricing structures used to estimate the monetary
// cost of model inference from reported token usage.
//
// The main types are [ModelCost] for per-million-token LLM pricing
// (including discounted cached-token rates) and [Summary] for an aggregated
// breakdown. [PricingFor] looks up the published pricing for the models the
// bundled providers default to.
package cost

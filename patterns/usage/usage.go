package usage

import (
	"context"
	"maps"
	"sync"

	"github.com/leofalp/llmwrap/core/cost"
	"github.com/leofalp/llmwrap/providers/ai"
)

// Meter wraps an [ai.Provider] and accumulates the token usage every
// successful request reports, per model and in aggregate. Accumulation is
// guarded by the Meter's own mutex, so wrappers running queries in
// parallel all land in the same totals and a Meter can be read while
// queries are in flight.
type Meter struct {
	inner ai.Provider

	mu      sync.Mutex
	byModel map[string]ai.Usage
	totals  ai.Usage
	calls   int
}

// A Meter is usable wherever the wrapped provider is.
var (
	_ ai.Provider       = (*Meter)(nil)
	_ ai.StreamProvider = (*Meter)(nil)
)

// New wraps inner in a fresh Meter with zeroed totals.
func New(inner ai.Provider) *Meter {
	return &Meter{
		inner:   inner,
		byModel: make(map[string]ai.Usage),
	}
}

// Name implements [ai.Provider] by delegating to the wrapped provider.
func (m *Meter) Name() string {
	return m.inner.Name()
}

// Complete implements [ai.Provider]. Usage is accumulated only when the
// request succeeds; a failed request changes nothing.
func (m *Meter) Complete(ctx context.Context, request *ai.Request) (*ai.Response, error) {
	response, err := m.inner.Complete(ctx, request)
	if err != nil {
		return nil, err
	}
	m.accumulate(request, response)
	return response, nil
}

// Stream implements [ai.StreamProvider]. When the wrapped provider
// streams, chunks pass through untouched and the final response's usage is
// accumulated. A provider without streaming support is driven through
// Complete and its text delivered as a single chunk, matching how the
// client adapter treats such providers.
func (m *Meter) Stream(ctx context.Context, request *ai.Request, out chan<- ai.Chunk) (*ai.Response, error) {
	streamer, ok := m.inner.(ai.StreamProvider)
	if !ok {
		response, err := m.Complete(ctx, request)
		if err != nil {
			return nil, err
		}
		select {
		case out <- ai.Chunk{Text: response.Text}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return response, nil
	}

	response, err := streamer.Stream(ctx, request, out)
	if err != nil {
		return nil, err
	}
	m.accumulate(request, response)
	return response, nil
}

// accumulate books the response's usage under the model that served it.
// Providers that omit the model in the response fall back to the one
// requested.
func (m *Meter) accumulate(request *ai.Request, response *ai.Response) {
	model := response.Model
	if model == "" {
		model = request.Model
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.totals.Add(response.Usage)
	perModel := m.byModel[model]
	perModel.Add(response.Usage)
	m.byModel[model] = perModel
}

// Totals returns the usage accumulated across every model so far.
func (m *Meter) Totals() ai.Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals
}

// Calls returns how many successful requests have been metered.
func (m *Meter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// PerModel returns a copy of the per-model usage breakdown.
func (m *Meter) PerModel() map[string]ai.Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.byModel)
}

// Cost estimates the spend for everything metered so far using the
// published pricing table. Models without published pricing contribute
// nothing, and the second return value reports whether every metered model
// was priced; when it is false the estimate is a lower bound.
func (m *Meter) Cost() (cost.Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := cost.Summary{Currency: "USD"}
	allPriced := true
	for model, used := range m.byModel {
		pricing, ok := cost.PricingFor(model)
		if !ok {
			allPriced = false
			continue
		}
		summary := pricing.Summarize(used.PromptTokens, used.CompletionTokens, 0)
		total.InputCost += summary.InputCost
		total.OutputCost += summary.OutputCost
		total.CachedCost += summary.CachedCost
		total.TotalCost += summary.TotalCost
	}
	return total, allPriced
}

// Reset zeroes the accumulated state. The wrapped provider is untouched.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals = ai.Usage{}
	m.calls = 0
	clear(m.byModel)
}

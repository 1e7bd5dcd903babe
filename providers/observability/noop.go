package observability

import "context"

// NoopProvider is a Provider that records nothing. Components treat a nil
// observer as "no observability"; NoopProvider exists for call sites that
// want a non-nil Provider anyway, and as an embed for test observers that
// only care about one facet of the interface.
type NoopProvider struct{}

var _ Provider = NoopProvider{}

// StartSpan returns the context unchanged and a span that discards everything.
func (NoopProvider) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	return ctx, NoopSpan{}
}

// Counter returns a counter that discards every increment.
func (NoopProvider) Counter(name string) Counter {
	return noopCounter{}
}

// Histogram returns a histogram that discards every sample.
func (NoopProvider) Histogram(name string) Histogram {
	return noopHistogram{}
}

func (NoopProvider) Trace(ctx context.Context, msg string, attrs ...Attribute) {}
func (NoopProvider) Debug(ctx context.Context, msg string, attrs ...Attribute) {}
func (NoopProvider) Info(ctx context.Context, msg string, attrs ...Attribute)  {}
func (NoopProvider) Warn(ctx context.Context, msg string, attrs ...Attribute)  {}
func (NoopProvider) Error(ctx context.Context, msg string, attrs ...Attribute) {}

// NoopSpan is a Span that records nothing.
type NoopSpan struct{}

var _ Span = NoopSpan{}

func (NoopSpan) End()                                          {}
func (NoopSpan) SetAttributes(attrs ...Attribute)              {}
func (NoopSpan) SetStatus(code StatusCode, description string) {}
func (NoopSpan) RecordError(err error)                         {}
func (NoopSpan) AddEvent(name string, attrs ...Attribute)      {}

type noopCounter struct{}

func (noopCounter) Add(ctx context.Context, value int64, attrs ...Attribute) {}

type noopHistogram struct{}

func (noopHistogram) Record(ctx context.Context, value float64, attrs ...Attribute) {}

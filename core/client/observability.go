package client

import (
	"context"
	"iter"

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/internal/utils"
	"github.com/leofalp/llmwrap/providers/ai"
	"github.com/leofalp/llmwrap/providers/observability"
)

// querySpan bundles the observability state of one operation: the span, the
// timer, and the labels every metric it emits shares. A nil *querySpan means
// no observer is configured; all methods are nil-safe so call sites never
// branch.
type querySpan struct {
	observer observability.Provider
	span     observability.Span
	timer    *utils.Timer
	op       wrapper.Op
	model    string
}

// startQuery opens the client.query span and enriches the context with both
// the span and the observer, so providers can attach child spans and events
// via observability.SpanFromContext / ObserverFromContext.
func (c *Client) startQuery(ctx context.Context, op wrapper.Op, request *ai.Request, extra ...observability.Attribute) (context.Context, *querySpan) {
	if c.observer == nil {
		return ctx, nil
	}

	attrs := append([]observability.Attribute{
		observability.String(observability.AttrQueryOperation, op.String()),
		observability.String(observability.AttrLLMProvider, c.provider.Name()),
		observability.String(observability.AttrLLMModel, request.Model),
	}, extra...)

	ctx, span := c.observer.StartSpan(ctx, observability.SpanClientQuery, attrs...)
	ctx = observability.ContextWithSpan(ctx, span)
	ctx = observability.ContextWithObserver(ctx, c.observer)

	c.observer.Debug(ctx, "query start",
		observability.String(observability.AttrQueryOperation, op.String()),
		observability.String(observability.AttrLLMModel, request.Model),
		observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
	)

	return ctx, &querySpan{
		observer: c.observer,
		span:     span,
		timer:    utils.NewTimer(),
		op:       op,
		model:    request.Model,
	}
}

// fail records the error on the span and metrics, ends the span, and returns
// err unchanged so call sites can `return qs.fail(ctx, err)`.
func (qs *querySpan) fail(ctx context.Context, err error) error {
	if qs == nil {
		return err
	}
	qs.timer.Stop()

	qs.span.RecordError(err)
	qs.span.SetStatus(observability.StatusError, "query failed")
	qs.span.End()

	qs.observer.Error(ctx, "query failed",
		observability.Error(err),
		observability.String(observability.AttrQueryOperation, qs.op.String()),
		observability.String(observability.AttrLLMModel, qs.model),
		observability.Duration(observability.AttrDuration, qs.timer.GetDuration()),
	)
	qs.observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "error"),
		observability.String(observability.AttrQueryOperation, qs.op.String()),
		observability.String(observability.AttrLLMModel, qs.model),
	)

	return err
}

// succeed records the success path: duration histogram, request counter,
// token counters, span attributes, an INFO log, then ends the span.
func (qs *querySpan) succeed(ctx context.Context, response *ai.Response) {
	if qs == nil {
		return
	}
	qs.timer.Stop()
	elapsed := qs.timer.GetDuration()

	qs.observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(),
		observability.String(observability.AttrQueryOperation, qs.op.String()),
		observability.String(observability.AttrLLMModel, qs.model),
	)
	qs.observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
		observability.String(observability.AttrQueryOperation, qs.op.String()),
		observability.String(observability.AttrLLMModel, qs.model),
	)

	logAttrs := []observability.Attribute{
		observability.String(observability.AttrQueryOperation, qs.op.String()),
		observability.String(observability.AttrLLMModel, qs.model),
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Duration(observability.AttrDuration, elapsed),
	}

	if usage := response.Usage; usage.TotalTokens > 0 {
		qs.observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(usage.TotalTokens),
			observability.String(observability.AttrLLMModel, qs.model),
		)
		qs.observer.Counter(observability.MetricClientTokensPrompt).Add(ctx, int64(usage.PromptTokens),
			observability.String(observability.AttrLLMModel, qs.model),
		)
		qs.observer.Counter(observability.MetricClientTokensCompletion).Add(ctx, int64(usage.CompletionTokens),
			observability.String(observability.AttrLLMModel, qs.model),
		)

		qs.span.SetAttributes(
			observability.Int(observability.AttrLLMTokensTotal, usage.TotalTokens),
			observability.Int(observability.AttrLLMTokensPrompt, usage.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, usage.CompletionTokens),
		)
		logAttrs = append(logAttrs,
			observability.Int(observability.AttrLLMTokensTotal, usage.TotalTokens),
		)
	}

	if response.Text != "" {
		logAttrs = append(logAttrs,
			observability.String(observability.AttrResponseContent, utils.TruncateString(response.Text, 100)),
		)
	}

	qs.observer.Info(ctx, "query completed", logAttrs...)

	qs.span.SetStatus(observability.StatusOK, "success")
	qs.span.End()
}

// observeStream wraps a chunk sequence so completion is recorded at the
// moment the outcome is actually known: when the stream drains, fails
// mid-flight, or is abandoned by the consumer. finalResponse is only read
// after the sequence ends; the producer wrote it before closing the pipe.
func (qs *querySpan) observeStream(ctx context.Context, seq iter.Seq2[string, error], finalResponse **ai.Response) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		chunkCount := 0

		for chunk, err := range seq {
			if err != nil {
				qs.fail(ctx, err)
				yield("", err)
				return
			}
			chunkCount++
			if !yield(chunk, nil) {
				// Consumer broke out early. Record what we have; the pipe
				// cancels the producer on its own.
				qs.timer.Stop()
				qs.span.SetStatus(observability.StatusOK, "stream abandoned")
				qs.span.End()
				qs.observer.Info(ctx, "stream abandoned",
					observability.String(observability.AttrLLMModel, qs.model),
					observability.Int(observability.AttrStreamChunks, chunkCount),
					observability.Duration(observability.AttrDuration, qs.timer.GetDuration()),
				)
				return
			}
		}

		qs.span.AddEvent(observability.EventStreamComplete,
			observability.Int(observability.AttrStreamChunks, chunkCount),
		)
		qs.observer.Counter(observability.MetricClientStreamChunks).Add(ctx, int64(chunkCount),
			observability.String(observability.AttrLLMModel, qs.model),
		)

		response := *finalResponse
		if response == nil {
			response = &ai.Response{Model: qs.model, FinishReason: "stop"}
		}
		qs.succeed(ctx, response)
	}
}

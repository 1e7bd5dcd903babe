package openaichat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leofalp/llmwrap/internal/utils"
	"github.com/leofalp/llmwrap/providers/ai"
)

// Stream implements [ai.StreamProvider] against the chat completions endpoint
// with stream=true. Content deltas are pushed onto out as they arrive from
// the SSE connection; the returned response carries the concatenated text,
// the finish reason and the usage reported by the final chunk
// (stream_options.include_usage is always requested).
func (c *Client) Stream(ctx context.Context, request *ai.Request, out chan<- ai.Chunk) (*ai.Response, error) {
	if c.apiKey == "" {
		return nil, c.missingKeyError()
	}

	wire := requestToWire(request, c.model)
	streamEnabled := true
	wire.Stream = &streamEnabled
	wire.StreamOptions = &streamOptions{IncludeUsage: true}

	httpResponse, err := utils.DoPostStream(ctx, c.httpClient, c.baseURL+chatCompletionsPath, c.apiKey, wire, c.headers...)
	if err != nil {
		return nil, err
	}
	defer utils.CloseWithLog(httpResponse.Body)

	scanner := utils.NewSSEScanner(httpResponse.Body)
	response := &ai.Response{Model: wire.Model}
	var text strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, sseErr := scanner.Next()
		if errors.Is(sseErr, io.EOF) {
			break
		}
		if sseErr != nil {
			return nil, fmt.Errorf("SSE read error: %w", sseErr)
		}

		var chunk chatCompletionStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, fmt.Errorf("failed to parse streaming chunk: %w", err)
		}

		if chunk.Model != "" {
			response.Model = chunk.Model
		}
		// Usage rides an otherwise empty chunk after the last delta.
		if chunk.Usage != nil {
			response.Usage = chunk.Usage.toUsage()
		}

		for _, choice := range chunk.Choices {
			if choice.FinishReason != nil && *choice.FinishReason != "" {
				response.FinishReason = *choice.FinishReason
			}
			if choice.Delta.Content == nil || *choice.Delta.Content == "" {
				continue
			}
			text.WriteString(*choice.Delta.Content)
			select {
			case out <- ai.Chunk{Text: *choice.Delta.Content}:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	response.Text = text.String()
	return response, nil
}

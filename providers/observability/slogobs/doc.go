// Package slogobs provides an observability.Provider implementation backed by
// Go's standard library log/slog package.
// It supports structured tracing, in-memory metrics, and levelled logging.
// Text output is rendered by the tint handler (colorized when the output is
// a terminal); JSON output uses the standard library JSON handler.
// The main entry point is [New]; output format and log level can be tuned with
// [WithFormat], [WithLevel], [WithOutput], [WithColors], and [WithLogger], or
// via the LLMWRAP_LOG_FORMAT and LLMWRAP_LOG_LEVEL environment variables.
package slogobs

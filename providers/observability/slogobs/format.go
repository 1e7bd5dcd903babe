package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatText is a colorized single-line format for humans (default).
	// Example: 10:40:35 DBG Span started span=client.query
	FormatText Format = "text"

	// FormatJSON is standard JSON format (for production/log aggregation).
	// Example: {"time":"2025-11-03T10:40:35","level":"DEBUG","msg":"Span started"}
	FormatJSON Format = "json"
)

// ParseFormat parses a format string and returns the corresponding Format.
// If the format is invalid, it returns FormatText (default).
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// GetFormatFromEnv retrieves the log format from environment variables.
// It checks LLMWRAP_LOG_FORMAT first, then falls back to LOG_FORMAT.
// If neither is set, it returns FormatText (default).
func GetFormatFromEnv() Format {
	if format := os.Getenv("LLMWRAP_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatText
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

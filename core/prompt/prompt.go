package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// Renderer turns prompt arguments into the text handed to the model.
type Renderer interface {
	Render(args wrapper.PromptArgs) (string, error)
}

// Sections renders every argument as a markdown section headed by its name,
// with names sorted so the same arguments always produce the same prompt.
// String values are written verbatim, anything else is JSON-encoded. By
// convention argument names are UPPERCASE ("QUESTION", "CONTENT") so they
// stand out as headings.
type Sections struct{}

// Render implements [Renderer].
func (Sections) Render(args wrapper.PromptArgs) (string, error) {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for i, name := range names {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString("# ")
		builder.WriteString(name)
		builder.WriteString("\n")

		switch value := args[name].(type) {
		case string:
			builder.WriteString(value)
		default:
			encoded, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return "", fmt.Errorf("failed to encode prompt argument %q: %w", name, err)
			}
			builder.Write(encoded)
		}
	}

	return builder.String(), nil
}

// Template renders prompt arguments through a mustache template. Variables
// reference argument names, e.g. {{QUESTION}}. Unknown variables render
// empty, following mustache semantics.
type Template struct {
	source string
}

// NewTemplate builds a [Template] from mustache source. The source is parsed
// lazily: a malformed template errors at render time.
func NewTemplate(source string) *Template {
	return &Template{source: source}
}

// Render implements [Renderer].
func (t *Template) Render(args wrapper.PromptArgs) (string, error) {
	rendered, err := mustache.Render(t.source, map[string]any(args))
	if err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return rendered, nil
}

package enrich

import (
	"context"
	"fmt"
	"regexp"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/leofalp/llmwrap/core/decorator"
	"github.com/leofalp/llmwrap/core/wrapper"
)

// htmlPattern matches an opening tag of a common HTML element, attributes
// included. Matching a named element rather than any angle bracket keeps
// comparisons like "a < b" from triggering a conversion.
var htmlPattern = regexp.MustCompile(`(?i)<(?:!doctype|html|head|body|article|section|div|p|a|span|table|thead|tbody|tr|td|th|ul|ol|li|h[1-6]|br|hr|img|strong|b|em|i|code|pre|blockquote)\b[^>]*/?>`)

// markdownHook converts HTML prompt argument values to Markdown before the
// query dispatches. Raw HTML wastes tokens on markup the model does not
// need; Markdown keeps the structure at a fraction of the size.
type markdownHook struct {
	keys []string
}

// Option configures the conversion.
type Option func(*markdownHook)

// WithKeys limits conversion to the named prompt arguments and converts
// them unconditionally, so a key known to carry HTML is cleaned up even
// when the detection heuristic would not spot it. Keys absent from the
// prompt are ignored.
func WithKeys(keys ...string) Option {
	return func(h *markdownHook) {
		h.keys = keys
	}
}

// New builds a decorator around inner that rewrites HTML prompt argument
// values as Markdown before each dispatch. Without options every string
// argument that looks like HTML is converted; with [WithKeys] only the
// named arguments are.
//
// Non-string arguments always pass through untouched.
func New(inner wrapper.Wrapper, options ...Option) *decorator.Decorator {
	h := &markdownHook{}
	for _, option := range options {
		option(h)
	}
	return decorator.New(inner, h)
}

func (h *markdownHook) Prepare(_ context.Context, inv *decorator.Invocation) (*decorator.Request, error) {
	prompt := inv.Prompt()

	if len(h.keys) > 0 {
		for _, key := range h.keys {
			value, ok := prompt[key].(string)
			if !ok {
				continue
			}
			markdown, err := htmltomarkdown.ConvertString(value)
			if err != nil {
				return nil, fmt.Errorf("converting %s to markdown: %w", key, err)
			}
			prompt[key] = markdown
		}
		return &decorator.Request{Prompt: prompt, API: inv.API()}, nil
	}

	for key, raw := range prompt {
		value, ok := raw.(string)
		if !ok || !looksLikeHTML(value) {
			continue
		}
		markdown, err := htmltomarkdown.ConvertString(value)
		if err != nil {
			return nil, fmt.Errorf("converting %s to markdown: %w", key, err)
		}
		prompt[key] = markdown
	}

	return &decorator.Request{Prompt: prompt, API: inv.API()}, nil
}

func (h *markdownHook) Finalize(context.Context, *decorator.Invocation, *decorator.Result) (*decorator.Result, error) {
	return nil, nil
}

// looksLikeHTML reports whether value contains recognisable markup.
func looksLikeHTML(value string) bool {
	return htmlPattern.MatchString(value)
}

package prompt

import (
	"strings"
	"testing"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// ========== Sections ==========

// TestSections_DeterministicOrder verifies that arguments render in sorted
// name order regardless of map iteration order.
func TestSections_DeterministicOrder(t *testing.T) {
	args := wrapper.PromptArgs{
		"TASK":     "summarize",
		"CONTENT":  "a long article",
		"AUDIENCE": "children",
	}

	first, err := Sections{}.Render(args)
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}

	for range 10 {
		again, err := Sections{}.Render(args)
		if err != nil {
			t.Fatalf("Render() error = %v, want nil", err)
		}
		if again != first {
			t.Fatal("Render() output changed between calls with identical arguments")
		}
	}

	audiencePos := strings.Index(first, "# AUDIENCE")
	contentPos := strings.Index(first, "# CONTENT")
	taskPos := strings.Index(first, "# TASK")
	if audiencePos == -1 || contentPos == -1 || taskPos == -1 {
		t.Fatalf("Render() missing section headings:\n%s", first)
	}
	if !(audiencePos < contentPos && contentPos < taskPos) {
		t.Errorf("Render() sections out of sorted order:\n%s", first)
	}
}

// TestSections_StringVerbatim verifies that string values appear unmodified
// under their heading.
func TestSections_StringVerbatim(t *testing.T) {
	out, err := Sections{}.Render(wrapper.PromptArgs{"QUESTION": "What is Go?\nBe brief."})
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}

	want := "# QUESTION\nWhat is Go?\nBe brief."
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

// TestSections_NonStringJSON verifies that structured values are JSON-encoded.
func TestSections_NonStringJSON(t *testing.T) {
	out, err := Sections{}.Render(wrapper.PromptArgs{
		"USER_ARGS": map[string]any{"city": "Turin"},
		"LIMIT":     3,
	})
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}

	if !strings.Contains(out, `"city": "Turin"`) {
		t.Errorf("Render() missing JSON-encoded map value:\n%s", out)
	}
	if !strings.Contains(out, "# LIMIT\n3") {
		t.Errorf("Render() missing JSON-encoded number:\n%s", out)
	}
}

// TestSections_Empty verifies that no arguments render to an empty prompt.
func TestSections_Empty(t *testing.T) {
	out, err := Sections{}.Render(wrapper.PromptArgs{})
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}
	if out != "" {
		t.Errorf("Render() = %q, want empty", out)
	}
}

// ========== Template ==========

// TestTemplate_RendersVariables verifies basic mustache substitution against
// the argument map.
func TestTemplate_RendersVariables(t *testing.T) {
	tpl := NewTemplate("Answer {{QUESTION}} for {{AUDIENCE}}.")

	out, err := tpl.Render(wrapper.PromptArgs{
		"QUESTION": "why is the sky blue",
		"AUDIENCE": "a five year old",
	})
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}

	want := "Answer why is the sky blue for a five year old."
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

// TestTemplate_UnknownVariableRendersEmpty verifies mustache's missing-key
// behavior passes through.
func TestTemplate_UnknownVariableRendersEmpty(t *testing.T) {
	tpl := NewTemplate("before {{MISSING}} after")

	out, err := tpl.Render(wrapper.PromptArgs{})
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}
	if out != "before  after" {
		t.Errorf("Render() = %q, want %q", out, "before  after")
	}
}

// TestTemplate_MalformedErrors verifies that broken template syntax surfaces
// as a render error.
func TestTemplate_MalformedErrors(t *testing.T) {
	tpl := NewTemplate("{{#SECTION}} never closed")

	if _, err := tpl.Render(wrapper.PromptArgs{"SECTION": true}); err == nil {
		t.Error("Render() error = nil, want parse failure")
	}
}

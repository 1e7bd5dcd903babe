package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// fencePattern matches a markdown code fence, capturing its language tag and
// body. The body match is non-greedy so consecutive fences stay separate.
var fencePattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)[ \t]*\r?\n(.*?)```")

// fence is one markdown code fence found in model output.
type fence struct {
	tag  string
	body string
}

// ExtractBlock returns the body of the first fenced code block tagged
// blockType in content.
//
// Resolution order:
//   - blockType "text" (or empty) returns the trimmed content as-is.
//   - A fence tagged blockType wins, first match.
//   - A single untagged fence is accepted for any blockType.
//   - For "json" only, fenceless content is accepted when the whole content
//     is valid JSON, with one repair attempt before rejecting.
//
// Failures wrap [ErrFormat].
func ExtractBlock(content, blockType string) (string, error) {
	blockType = strings.ToLower(strings.TrimSpace(blockType))
	if blockType == "" || blockType == "text" {
		return strings.TrimSpace(content), nil
	}

	fences := findFences(content)

	for _, f := range fences {
		if f.tag == blockType {
			return strings.TrimSpace(f.body), nil
		}
	}

	// One anonymous fence is unambiguous enough to accept.
	if len(fences) == 1 && fences[0].tag == "" {
		return strings.TrimSpace(fences[0].body), nil
	}

	if blockType == "json" && len(fences) == 0 {
		if candidate, ok := coerceJSON(content); ok {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no %q block in content", ErrFormat, blockType)
}

// findFences collects every code fence in content, in order.
func findFences(content string) []fence {
	matches := fencePattern.FindAllStringSubmatch(content, -1)
	fences := make([]fence, 0, len(matches))
	for _, match := range matches {
		fences = append(fences, fence{
			tag:  strings.ToLower(match[1]),
			body: match[2],
		})
	}
	return fences
}

// coerceJSON accepts fenceless content as a json block when the whole content
// already is, or can be repaired into, valid JSON. Repair is only attempted on
// content that at least opens like JSON, otherwise any prose would round-trip
// into a quoted string and pass.
func coerceJSON(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", false
	}
	if gjson.Valid(trimmed) {
		return trimmed, true
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return "", false
	}
	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil && gjson.Valid(repaired) {
		return repaired, true
	}
	return "", false
}

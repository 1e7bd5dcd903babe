package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StringAs parses raw model output into the type T.
//
// Primitive targets (string, bool, int, uint, float) are converted directly,
// with a fallback that unwraps schema-style `{"type":..., "value":...}`
// envelopes some models answer with. Complex targets (structs, maps, slices)
// go through a layered JSON recovery: direct unmarshaling, extraction of
// balanced JSON candidates out of narrative prose, automatic repair via
// jsonrepair, schema-envelope unwrapping, and finally shape adaptation
// (a lone object for a slice target is wrapped, an array for an object
// target contributes its first element).
//
// All failures wrap [ErrValidation].
//
// Example usage:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	// Valid JSON, possibly surrounded by prose
//	person, err := StringAs[Person]("Here you go:\n" + `{"name":"John","age":30}`)
//
//	// Broken JSON is repaired before giving up
//	person, err := StringAs[Person](`{name: 'John', age: 30}`)
//
//	// Primitives convert directly
//	count, err := StringAs[int]("42")
func StringAs[T any](content string) (T, error) {
	var result T
	if err := Into(content, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Into parses raw model output into target, which must be a non-nil pointer.
// It applies the same recovery layers as [StringAs] and exists for call sites
// that carry the destination as a plain value instead of a type parameter.
func Into(content string, target any) error {
	pointer := reflect.ValueOf(target)
	if pointer.Kind() != reflect.Pointer || pointer.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrValidation, target)
	}
	element := pointer.Elem()

	switch element.Kind() {
	case reflect.String:
		// Strings pass through untouched unless the content is a
		// schema-style envelope around the actual value.
		if strings.HasPrefix(strings.TrimSpace(content), "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				element.SetString(unwrapped)
				return nil
			}
		}
		element.SetString(content)
		return nil

	case reflect.Bool:
		value, err := convertPrimitive(content, strconv.ParseBool)
		if err != nil {
			return fmt.Errorf("%w: parse as bool: %v", ErrValidation, err)
		}
		element.SetBool(value)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err := convertPrimitive(content, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
		if err != nil {
			return fmt.Errorf("%w: parse as int: %v", ErrValidation, err)
		}
		element.SetInt(value)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value, err := convertPrimitive(content, func(s string) (uint64, error) {
			return strconv.ParseUint(s, 10, 64)
		})
		if err != nil {
			return fmt.Errorf("%w: parse as uint: %v", ErrValidation, err)
		}
		element.SetUint(value)
		return nil

	case reflect.Float32, reflect.Float64:
		value, err := convertPrimitive(content, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err != nil {
			return fmt.Errorf("%w: parse as float: %v", ErrValidation, err)
		}
		element.SetFloat(value)
		return nil

	default:
		return decodeComplex(content, target)
	}
}

// convertPrimitive converts content with the given strconv-style function,
// retrying once against an unwrapped schema envelope when the raw content does
// not convert.
func convertPrimitive[V any](content string, convert func(string) (V, error)) (V, error) {
	value, err := convert(content)
	if err == nil {
		return value, nil
	}
	if unwrapped, unwrapErr := tryUnwrapPrimitive(content); unwrapErr == nil {
		if retried, retryErr := convert(unwrapped); retryErr == nil {
			return retried, nil
		}
	}
	var zero V
	return zero, err
}

// decodeComplex drives the JSON recovery pipeline for structs, maps, slices
// and interface targets. Each candidate substring is tried through every
// layer before moving to the next candidate, so the earliest parsable JSON in
// the content wins.
func decodeComplex(content string, target any) error {
	candidates := collectCandidates(content)

	var lastErr error
	for _, candidate := range candidates {
		err := tryDecode(candidate, target)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("%w: cannot decode content into %T: %w", ErrValidation, target, lastErr)
}

// collectCandidates returns the trimmed content followed by every balanced
// JSON substring found inside it, preserving position order.
func collectCandidates(content string) []string {
	trimmed := strings.TrimSpace(content)
	candidates := []string{trimmed}
	for _, candidate := range extractJSONCandidates(content) {
		if candidate != trimmed {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// tryDecode runs one candidate through the recovery layers: direct
// unmarshaling, repair, schema-envelope unwrapping, shape adaptation.
func tryDecode(candidate string, target any) error {
	directErr := json.Unmarshal([]byte(candidate), target)
	if directErr == nil {
		return nil
	}

	repaired := candidate
	if fixed, err := jsonrepair.JSONRepair(candidate); err == nil {
		repaired = fixed
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return nil
		}
	}

	// Models sometimes confuse the schema with the data and answer with
	// {"type":..., "value":...} at every level. Strip those envelopes and
	// retry before falling back to shape fixes.
	forms := []string{repaired}
	if unwrapped, err := unwrapSchemaValues(repaired); err == nil && unwrapped != repaired {
		if err := json.Unmarshal([]byte(unwrapped), target); err == nil {
			return nil
		}
		forms = append(forms, unwrapped)
	}

	for _, form := range forms {
		if err := adaptShape(form, target); err == nil {
			return nil
		}
	}

	return directErr
}

// adaptShape bridges the two common arity mismatches between what the model
// produced and what the caller asked for: a single object where a slice was
// requested gets wrapped, and an array where an object was requested
// contributes its first element.
func adaptShape(form string, target any) error {
	trimmed := strings.TrimSpace(form)
	if trimmed == "" {
		return errors.New("empty content")
	}

	switch reflect.ValueOf(target).Elem().Kind() {
	case reflect.Slice:
		if trimmed[0] == '{' {
			return json.Unmarshal([]byte("["+trimmed+"]"), target)
		}

	case reflect.Struct, reflect.Map, reflect.Pointer:
		if trimmed[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
				return err
			}
			if len(items) == 0 {
				return errors.New("empty array")
			}
			return json.Unmarshal(items[0], target)
		}
	}

	return errors.New("no shape adaptation applies")
}

// extractJSONCandidates scans content for balanced JSON objects and arrays
// and returns them in position order. Nested structures contribute their own
// candidates after the enclosing one. Unbalanced fragments are ignored.
func extractJSONCandidates(content string) []string {
	candidates := []string{}
	for i := 0; i < len(content); i++ {
		if content[i] != '{' && content[i] != '[' {
			continue
		}
		if end, ok := scanBalanced(content, i); ok {
			candidates = append(candidates, content[i:end])
		}
	}
	return candidates
}

// scanBalanced finds the end of the JSON value opening at start, honoring
// string literals and escape sequences. Returns the index one past the
// closing bracket, or false when the value never closes.
func scanBalanced(content string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		c := content[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}

	return 0, false
}

// tryUnwrapPrimitive pulls the value out of a single schema-style envelope
// such as {"type": "integer", "value": 42} and returns its string form.
func tryUnwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}

	if _, hasType := data["type"]; !hasType || len(data) != 2 {
		return "", errors.New("not a schema-wrapped value")
	}
	value, hasValue := data["value"]
	if !hasValue {
		return "", errors.New("not a schema-wrapped value")
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprintf("%v", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// unwrapSchemaValues rewrites JSON whose values are wrapped in schema-style
// envelopes into the plain data they describe.
//
// Example input:
//
//	{"name": {"type": "string", "value": "John"}, "age": {"type": "integer", "value": 30}}
//
// Example output:
//
//	{"name": "John", "age": 30}
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	unwrapped := recursiveUnwrap(data)

	result, err := json.Marshal(unwrapped)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// recursiveUnwrap walks the decoded structure, replacing every
// {"type":..., "value":...} pair with its value, depth first.
func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType && len(v) == 2 {
			if value, hasValue := v["value"]; hasValue {
				return recursiveUnwrap(value)
			}
		}
		result := make(map[string]any, len(v))
		for key, value := range v {
			result[key] = recursiveUnwrap(value)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, value := range v {
			result[i] = recursiveUnwrap(value)
		}
		return result

	default:
		return data
	}
}

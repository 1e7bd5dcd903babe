package parse

import (
	"errors"
	"testing"
)

// ========== Primitives ==========

func TestStringAs_String(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "simple string",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "string with special characters",
			input: "hello\nworld\t!",
			want:  "hello\nworld\t!",
		},
		{
			name:  "schema-wrapped string",
			input: `{"type": "string", "value": "hello"}`,
			want:  "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[string](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_Bool(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "true", input: "true", want: true},
		{name: "false", input: "false", want: false},
		{name: "1 as true", input: "1", want: true},
		{name: "0 as false", input: "0", want: false},
		{name: "schema-wrapped true", input: `{"type": "boolean", "value": true}`, want: true},
		{name: "invalid bool", input: "not a bool", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[bool](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_Int(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "positive int", input: "42", want: 42},
		{name: "negative int", input: "-123", want: -123},
		{name: "zero", input: "0", want: 0},
		{name: "schema-wrapped int", input: `{"type": "integer", "value": 42}`, want: 42},
		{name: "invalid int", input: "not a number", wantErr: true},
		{name: "float as int should fail", input: "42.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[int](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_Uint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint
		wantErr bool
	}{
		{name: "positive uint", input: "42", want: 42},
		{name: "zero", input: "0", want: 0},
		{name: "schema-wrapped uint", input: `{"type": "integer", "value": 42}`, want: 42},
		{name: "negative should fail", input: "-123", wantErr: true},
		{name: "invalid uint", input: "not a number", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[uint](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_Float(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "positive float", input: "42.5", want: 42.5},
		{name: "negative float", input: "-123.456", want: -123.456},
		{name: "integer as float", input: "42", want: 42.0},
		{name: "scientific notation", input: "1.23e10", want: 1.23e10},
		{name: "schema-wrapped float", input: `{"type": "number", "value": 3.14}`, want: 3.14},
		{name: "invalid float", input: "not a number", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[float64](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ========== Complex Types ==========

func TestStringAs_Struct(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name    string
		input   string
		want    Person
		wantErr bool
	}{
		{
			name:  "valid JSON",
			input: `{"name":"John","age":30}`,
			want:  Person{Name: "John", Age: 30},
		},
		{
			name:  "missing quotes around keys (should be repaired)",
			input: `{name: "Alice", age: 28}`,
			want:  Person{Name: "Alice", Age: 28},
		},
		{
			name:  "single quotes (should be repaired)",
			input: `{'name': 'Bob', 'age': 35}`,
			want:  Person{Name: "Bob", Age: 35},
		},
		{
			name:  "trailing comma (should be repaired)",
			input: `{"name": "Charlie", "age": 40,}`,
			want:  Person{Name: "Charlie", Age: 40},
		},
		{
			name:  "missing closing bracket (should be repaired)",
			input: `{"name": "David", "age": 45`,
			want:  Person{Name: "David", Age: 45},
		},
		{
			name: "JSON in code block",
			input: "```json\n" +
				`{"name": "Eve", "age": 33}` + "\n" +
				"```",
			want: Person{Name: "Eve", Age: 33},
		},
		{
			name:    "completely invalid JSON",
			input:   `this is not json at all`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[Person](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("StringAs() error = %v, want ErrValidation", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("StringAs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStringAs_Slice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "valid JSON array",
			input: `["apple","banana","cherry"]`,
			want:  []string{"apple", "banana", "cherry"},
		},
		{
			name:  "single quotes (should be repaired)",
			input: `['apple', 'banana', 'cherry']`,
			want:  []string{"apple", "banana", "cherry"},
		},
		{
			name:  "trailing comma (should be repaired)",
			input: `["apple", "banana", "cherry",]`,
			want:  []string{"apple", "banana", "cherry"},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[[]string](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !stringSlicesEqual(got, tt.want) {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_Map(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "valid JSON object",
			input: `{"key1":"value1","key2":"value2"}`,
			want:  map[string]any{"key1": "value1", "key2": "value2"},
		},
		{
			name:  "missing quotes (should be repaired)",
			input: `{key1: "value1", key2: "value2"}`,
			want:  map[string]any{"key1": "value1", "key2": "value2"},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[map[string]any](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !mapsEqual(got, tt.want) {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_PythonConstants(t *testing.T) {
	type Config struct {
		Enabled any `json:"enabled"`
		Value   any `json:"value"`
	}

	inputs := []string{
		`{"enabled": None, "value": 42}`,
		`{"enabled": True, "value": 42}`,
		`{"enabled": False, "value": 42}`,
	}

	for _, input := range inputs {
		if _, err := StringAs[Config](input); err != nil {
			t.Errorf("StringAs(%q) error = %v, want nil", input, err)
		}
	}
}

// ========== Narrative Recovery ==========

func TestStringAs_LLMNarrativeText(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name    string
		input   string
		want    Person
		wantErr bool
	}{
		{
			name: "text before JSON",
			input: `Here is the person data you requested:
{"name":"John","age":30}`,
			want: Person{Name: "John", Age: 30},
		},
		{
			name: "text after JSON",
			input: `{"name":"Jane","age":25}
Hope this helps!`,
			want: Person{Name: "Jane", Age: 25},
		},
		{
			name: "text before and after JSON",
			input: `Let me provide the data:
{"name":"Bob","age":35}
Is this what you needed?`,
			want: Person{Name: "Bob", Age: 35},
		},
		{
			name: "multiline JSON without code fence",
			input: `Sure, here's the result:
{
  "name": "Charlie",
  "age": 40
}`,
			want: Person{Name: "Charlie", Age: 40},
		},
		{
			name: "malformed JSON with narrative (should repair)",
			input: `Here you go:
{name: 'David', age: 45}`,
			want: Person{Name: "David", Age: 45},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[Person](tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("StringAs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("StringAs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStringAs_MultipleJSONObjects(t *testing.T) {
	type Result struct {
		Value int `json:"value"`
	}

	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{
			name:  "multiple JSON, first is used",
			input: `{"value":1} and {"value":2}`,
			want:  Result{Value: 1},
		},
		{
			name: "narrative with multiple JSON, first is used",
			input: `I have two options:
Option 1: {"value":10}
Option 2: {"value":20}
I recommend the first one.`,
			want: Result{Value: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[Result](tt.input)
			if err != nil {
				t.Fatalf("StringAs() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("StringAs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ========== Shape Adaptation ==========

func TestStringAs_ArrayForStructTarget(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name  string
		input string
		want  Person
	}{
		{
			name:  "array with single object uses first element",
			input: `[{"name":"John","age":30}]`,
			want:  Person{Name: "John", Age: 30},
		},
		{
			name:  "array with multiple objects uses first element",
			input: `[{"name":"Jane","age":25},{"name":"Bob","age":35}]`,
			want:  Person{Name: "Jane", Age: 25},
		},
		{
			name: "narrative text with array uses first element",
			input: `Here are the results:
[{"name":"Alice","age":28}]`,
			want: Person{Name: "Alice", Age: 28},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[Person](tt.input)
			if err != nil {
				t.Fatalf("StringAs() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("StringAs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStringAs_ObjectForSliceTarget(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name  string
		input string
		want  []Person
	}{
		{
			name:  "single object wrapped into array",
			input: `{"name":"John","age":30}`,
			want:  []Person{{Name: "John", Age: 30}},
		},
		{
			name: "narrative text with single object wrapped into array",
			input: `Here is the person:
{"name":"Jane","age":25}`,
			want: []Person{{Name: "Jane", Age: 25}},
		},
		{
			name:  "proper array parses normally",
			input: `[{"name":"Bob","age":35},{"name":"Alice","age":28}]`,
			want:  []Person{{Name: "Bob", Age: 35}, {Name: "Alice", Age: 28}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[[]Person](tt.input)
			if err != nil {
				t.Fatalf("StringAs() error = %v, want nil", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("StringAs() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("StringAs()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ========== Schema Envelope Unwrapping ==========

func TestStringAs_SchemaWrappedValues(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name  string
		input string
		want  Person
	}{
		{
			name:  "schema-wrapped struct fields",
			input: `{"name": {"type": "string", "value": "John"}, "age": {"type": "integer", "value": 30}}`,
			want:  Person{Name: "John", Age: 30},
		},
		{
			name:  "mixed wrapped and unwrapped fields",
			input: `{"name": {"type": "string", "value": "Alice"}, "age": 25}`,
			want:  Person{Name: "Alice", Age: 25},
		},
		{
			name:  "schema wrapper with malformed JSON (should repair then unwrap)",
			input: `{name: {type: "string", value: "Charlie"}, age: {type: "integer", value: 40}}`,
			want:  Person{Name: "Charlie", Age: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[Person](tt.input)
			if err != nil {
				t.Fatalf("StringAs() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("StringAs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStringAs_SchemaWrappedArrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "array with wrapped elements",
			input: `[{"type": "string", "value": "apple"}, {"type": "string", "value": "banana"}]`,
			want:  []string{"apple", "banana"},
		},
		{
			name:  "array with mixed wrapped and unwrapped",
			input: `[{"type": "string", "value": "apple"}, "banana", {"type": "string", "value": "cherry"}]`,
			want:  []string{"apple", "banana", "cherry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StringAs[[]string](tt.input)
			if err != nil {
				t.Fatalf("StringAs() error = %v, want nil", err)
			}
			if !stringSlicesEqual(got, tt.want) {
				t.Errorf("StringAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringAs_SchemaWrappedNested(t *testing.T) {
	type Address struct {
		Street string `json:"street"`
		City   string `json:"city"`
	}
	type Person struct {
		Name    string  `json:"name"`
		Address Address `json:"address"`
	}

	input := `{
		"name": {"type": "string", "value": "Alice"},
		"address": {"type": "object", "value": {
			"street": {"type": "string", "value": "456 Oak Ave"},
			"city": {"type": "string", "value": "Boston"}
		}}
	}`

	got, err := StringAs[Person](input)
	if err != nil {
		t.Fatalf("StringAs() error = %v, want nil", err)
	}
	want := Person{Name: "Alice", Address: Address{Street: "456 Oak Ave", City: "Boston"}}
	if got != want {
		t.Errorf("StringAs() = %+v, want %+v", got, want)
	}
}

// TestStringAs_LegitimateTypeValueFields verifies that objects whose target
// type really has "type" and "value" fields decode directly, before any
// unwrapping kicks in.
func TestStringAs_LegitimateTypeValueFields(t *testing.T) {
	type SchemaField struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}

	got, err := StringAs[SchemaField](`{"type": "string", "value": "hello"}`)
	if err != nil {
		t.Fatalf("StringAs() error = %v, want nil", err)
	}
	if got.Type != "string" || got.Value != "hello" {
		t.Errorf("StringAs() = %+v, want {Type:string Value:hello}", got)
	}
}

// ========== Candidate Extraction ==========

func TestExtractJSONCandidates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple object",
			input:    `{"name":"John"}`,
			expected: []string{`{"name":"John"}`},
		},
		{
			name:     "simple array",
			input:    `[1,2,3]`,
			expected: []string{`[1,2,3]`},
		},
		{
			name:     "text before and after JSON",
			input:    "The result is:\n{\"name\":\"John\"}\nThank you!",
			expected: []string{`{"name":"John"}`},
		},
		{
			name:     "multiple JSON objects",
			input:    `{"first":1} and {"second":2}`,
			expected: []string{`{"first":1}`, `{"second":2}`},
		},
		{
			name:     "nested JSON",
			input:    `{"outer":{"inner":"value"}}`,
			expected: []string{`{"outer":{"inner":"value"}}`, `{"inner":"value"}`},
		},
		{
			name:     "JSON with escaped quotes",
			input:    `{"text":"He said \"hello\""}`,
			expected: []string{`{"text":"He said \"hello\""}`},
		},
		{
			name:     "array with objects",
			input:    `[{"id":1},{"id":2}]`,
			expected: []string{`[{"id":1},{"id":2}]`, `{"id":1}`, `{"id":2}`},
		},
		{
			name:     "no JSON",
			input:    "This is just plain text",
			expected: []string{},
		},
		{
			name:     "incomplete JSON ignored",
			input:    "Here is incomplete: {\"name\":",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSONCandidates(tt.input)
			if len(got) != len(tt.expected) {
				t.Errorf("extractJSONCandidates() got %d candidates, want %d\nGot: %v\nWant: %v",
					len(got), len(tt.expected), got, tt.expected)
				return
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("extractJSONCandidates()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

// ========== Into ==========

func TestInto_PointerTarget(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	var person Person
	if err := Into(`{"name":"John","age":30}`, &person); err != nil {
		t.Fatalf("Into() error = %v, want nil", err)
	}
	if person.Name != "John" || person.Age != 30 {
		t.Errorf("Into() = %+v, want {Name:John Age:30}", person)
	}
}

func TestInto_RejectsNonPointer(t *testing.T) {
	type Person struct {
		Name string `json:"name"`
	}

	err := Into(`{"name":"John"}`, Person{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Into() error = %v, want ErrValidation", err)
	}

	var nilTarget *Person
	err = Into(`{"name":"John"}`, nilTarget)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Into(nil pointer) error = %v, want ErrValidation", err)
	}
}

func TestInto_PrimitiveTargets(t *testing.T) {
	var count int
	if err := Into("42", &count); err != nil || count != 42 {
		t.Errorf("Into(int) = %d, %v, want 42, nil", count, err)
	}

	var flag bool
	if err := Into("true", &flag); err != nil || !flag {
		t.Errorf("Into(bool) = %v, %v, want true, nil", flag, err)
	}

	var text string
	if err := Into("plain text", &text); err != nil || text != "plain text" {
		t.Errorf("Into(string) = %q, %v, want %q, nil", text, err, "plain text")
	}
}

// ========== Helpers ==========

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || v != bv {
			return false
		}
	}
	return true
}

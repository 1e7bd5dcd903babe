package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema represents the structure of JSON Schema used for describing request
// and response shapes. It follows the JSON Schema standard, supporting the
// types, properties and validation rules this module needs to instruct a
// model about the expected output format.
type Schema struct {
	// Type specifies the data type (e.g. "object", "array", "string", "number")
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	// Format carries a standard format hint such as "date-time" or "email"
	Format   string   `json:"format,omitempty"`
	Required []string `json:"required,omitempty"`
	// Properties of the object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties controls whether properties not defined in Properties are allowed
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default value for the field
	Default any `json:"default,omitempty"`
	// Enum contains the list of allowed values for the field
	Enum []any `json:"enum,omitempty"`
	// Ref is used for JSON Schema references to avoid infinite recursion
	Ref string `json:"$ref,omitempty"`
	// Defs contains reusable schema definitions
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// GenerateJSONSchema derives a [Schema] from the type parameter T without
// requiring a runtime value.
func GenerateJSONSchema[T any]() (*Schema, error) {
	return GenerateForType(reflect.TypeFor[T]())
}

// GenerateForType derives a [Schema] from a reflect.Type. Pointers are
// dereferenced; recursive types are broken with $defs and $ref entries
// attached to the returned root schema.
func GenerateForType(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	ctx := &schemaContext{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Schema),
	}

	var schema *Schema
	var err error
	if t.Kind() == reflect.Struct {
		schema, err = rootStructSchema(t, ctx)
	} else {
		schema, err = fieldSchema(t, ctx)
	}
	if err != nil {
		return nil, err
	}

	if len(ctx.defs) > 0 {
		schema.Defs = ctx.defs
	}
	return schema, nil
}

// schemaContext tracks state during generation so recursive types resolve to
// references instead of looping forever.
type schemaContext struct {
	visited map[reflect.Type]string // Maps types to their definition names
	defs    map[string]*Schema      // Stores reusable schema definitions
}

// rootStructSchema builds the top-level schema for a struct type. Unlike
// nested structs the root is always returned inline; when it is recursive its
// definition is also registered so nested references resolve.
func rootStructSchema(t reflect.Type, ctx *schemaContext) (*Schema, error) {
	defName := defNameFor(t)
	ctx.visited[t] = defName

	properties, required, err := structMembers(t, ctx)
	if err != nil {
		return nil, err
	}

	schema := &Schema{Type: "object", Properties: properties}
	if len(required) > 0 {
		schema.Required = required
	}

	if hasRecursiveFields(t) {
		ctx.defs[defName] = &Schema{
			Type:       "object",
			Properties: properties,
			Required:   schema.Required,
		}
	}

	return schema, nil
}

// nestedStructSchema builds the schema for a struct encountered inside
// another type. Non-recursive structs are inlined; recursive ones become a
// $defs entry referenced from the field.
func nestedStructSchema(t reflect.Type, ctx *schemaContext) (*Schema, error) {
	if defName, exists := ctx.visited[t]; exists {
		return &Schema{Ref: "#/$defs/" + defName}, nil
	}

	if !hasRecursiveFields(t) {
		properties, required, err := structMembers(t, ctx)
		if err != nil {
			return nil, err
		}
		schema := &Schema{Type: "object", Properties: properties}
		if len(required) > 0 {
			schema.Required = required
		}
		return schema, nil
	}

	defName := defNameFor(t)
	ctx.visited[t] = defName

	properties, required, err := structMembers(t, ctx)
	if err != nil {
		return nil, err
	}
	def := &Schema{Type: "object", Properties: properties}
	if len(required) > 0 {
		def.Required = required
	}
	ctx.defs[defName] = def

	return &Schema{Ref: "#/$defs/" + defName}, nil
}

// structMembers walks the exported fields of a struct, producing its
// properties map and required list. Field names honor json tags; optionality
// follows pointers and omitempty; jsonschema tags refine the field schema.
func structMembers(t reflect.Type, ctx *schemaContext) (map[string]*Schema, []string, error) {
	properties := make(map[string]*Schema)
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		isOmitEmpty := false
		if jsonTag != "" {
			if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
				fieldName = jsonTag[:commaIdx]
				isOmitEmpty = strings.Contains(jsonTag[commaIdx:], "omitempty")
			} else {
				fieldName = jsonTag
			}
		}

		schema, err := fieldSchema(field.Type, ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", fieldName, err)
		}
		properties[fieldName] = schema

		isRequiredByTag := false
		// Tags do not apply to pure $ref fields: siblings of $ref are
		// ignored by most validators.
		if schema.Ref == "" {
			isRequiredByTag, err = applySchemaTag(field.Type, field.Tag, schema)
			if err != nil {
				return nil, nil, fmt.Errorf("field %q: %w", fieldName, err)
			}
		}

		if (field.Type.Kind() != reflect.Pointer && !isOmitEmpty) || isRequiredByTag {
			required = append(required, fieldName)
		}
	}

	return properties, required, nil
}

// fieldSchema generates the schema for one type with recursion handling.
func fieldSchema(t reflect.Type, ctx *schemaContext) (*Schema, error) {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil

	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil

	case reflect.Slice, reflect.Array:
		items, err := fieldSchema(t.Elem(), ctx)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil

	case reflect.Map:
		values, err := fieldSchema(t.Elem(), ctx)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil

	case reflect.Pointer:
		return fieldSchema(t.Elem(), ctx)

	case reflect.Struct:
		return nestedStructSchema(t, ctx)

	default:
		return &Schema{Type: "object"}, nil
	}
}

// hasRecursiveFields checks if a struct type has fields that reference itself.
func hasRecursiveFields(t reflect.Type) bool {
	return checkRecursion(t, t, make(map[reflect.Type]bool))
}

// checkRecursion recursively checks if targetType appears in the fields of
// currentType, looking through pointers, slices and arrays.
func checkRecursion(targetType, currentType reflect.Type, visited map[reflect.Type]bool) bool {
	if visited[currentType] {
		return false
	}
	visited[currentType] = true

	switch currentType.Kind() {
	case reflect.Struct:
		for i := 0; i < currentType.NumField(); i++ {
			field := currentType.Field(i)
			if !field.IsExported() {
				continue
			}

			fieldType := field.Type
			for fieldType.Kind() == reflect.Pointer || fieldType.Kind() == reflect.Slice || fieldType.Kind() == reflect.Array {
				fieldType = fieldType.Elem()
			}

			if fieldType == targetType {
				return true
			}
			if fieldType.Kind() == reflect.Struct && checkRecursion(targetType, fieldType, visited) {
				return true
			}
		}

	case reflect.Slice, reflect.Array, reflect.Pointer:
		elemType := currentType.Elem()
		for elemType.Kind() == reflect.Pointer {
			elemType = elemType.Elem()
		}
		if elemType == targetType {
			return true
		}
		if elemType.Kind() == reflect.Struct && checkRecursion(targetType, elemType, visited) {
			return true
		}
	}

	return false
}

// defNameFor creates a definition name for a type.
func defNameFor(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// applySchemaTag parses the jsonschema struct tag and applies its settings.
// Supported entries, comma separated:
//
//	description=xxx
//	enum=a,enum=b (values converted to the field's type)
//	default=xxx (value converted to the field's type)
//	format=date-time
//	required
//
// Returns whether the field was explicitly marked required.
func applySchemaTag(fieldType reflect.Type, tag reflect.StructTag, schema *Schema) (bool, error) {
	schemaTag := tag.Get("jsonschema")
	if len(schemaTag) == 0 {
		return false, nil
	}

	isRequiredByTag := false
	for _, entry := range strings.Split(schemaTag, ",") {
		key, value, hasValue := strings.Cut(entry, "=")
		if !hasValue {
			if key == "required" {
				isRequiredByTag = true
			}
			continue
		}

		switch key {
		case "description":
			schema.Description = value
		case "format":
			schema.Format = value
		case "enum":
			converted, err := convertTagValue(fieldType, value)
			if err != nil {
				return false, fmt.Errorf("enum: %w", err)
			}
			schema.Enum = append(schema.Enum, converted)
		case "default":
			converted, err := convertTagValue(fieldType, value)
			if err != nil {
				return false, fmt.Errorf("default: %w", err)
			}
			schema.Default = converted
		}
	}

	return isRequiredByTag, nil
}

// convertTagValue converts a tag value string to the field's underlying type.
// Supports string, integer, float and bool kinds; pointers convert to their
// element type.
func convertTagValue(fieldType reflect.Type, value string) (any, error) {
	for fieldType.Kind() == reflect.Pointer {
		fieldType = fieldType.Elem()
	}

	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as int64: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as float64: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse %q as bool: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported field type %v", fieldType)
	}
}

// JsonString converts the Schema to its JSON representation.
// indent: optional bool parameter. If true, formats JSON with indentation.
// If false or omitted, returns compact JSON.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	shouldIndent := false
	if len(indent) > 0 {
		shouldIndent = indent[0]
	}

	var jsonBytes []byte
	var err error
	if shouldIndent {
		jsonBytes, err = json.MarshalIndent(s, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// String returns the compact JSON representation of the schema.
// Returns an error message if marshalling fails.
func (s *Schema) String() string {
	jsonStr, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return jsonStr
}

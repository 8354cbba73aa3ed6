package schema

import (
	"encoding/json"
	"fmt"
)

// ParseError reports wire text that is not a well-formed JSON document.
type ParseError struct {
	Type string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("schema: malformed record text: %v", e.Err)
	}
	return fmt.Sprintf("schema: malformed %s text: %v", e.Type, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaMismatch reports a document whose type tag is missing, repeated, not
// set to true, or names a different type than the one being decoded.
type SchemaMismatch struct {
	Expected string
	Found    string
}

func (e *SchemaMismatch) Error() string {
	if e.Expected == "" {
		return "schema: document has no single type tag set to true"
	}
	if e.Found == "" {
		return fmt.Sprintf("schema: expected type tag %s, document has none", tagKey(e.Expected))
	}
	if e.Found == e.Expected {
		return fmt.Sprintf("schema: type tag %s must be the only tag and set to true", tagKey(e.Expected))
	}
	return fmt.Sprintf("schema: expected type tag %s, found %s", tagKey(e.Expected), tagKey(e.Found))
}

// FieldTypeError reports a value that cannot be coerced to its declared
// descriptor. Type and Field are filled in by the record that owns the field.
type FieldTypeError struct {
	Type  string
	Field string
	Want  Descriptor
	Got   any
	Err   error
}

func (e *FieldTypeError) Error() string {
	msg := fmt.Sprintf("cannot use %s as %s", describeValue(e.Got), e.Want)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Field == "" {
		return "schema: " + msg
	}
	return fmt.Sprintf("schema: field %s.%s: %s", e.Type, e.Field, msg)
}

func (e *FieldTypeError) Unwrap() error { return e.Err }

func typeError(want Descriptor, got any, err error) *FieldTypeError {
	return &FieldTypeError{Want: want, Got: got, Err: err}
}

// annotate attaches the owning record and field to a decode failure. Errors
// that already carry a location are wrapped so the full path is kept.
func annotate(err error, typeName, field string) error {
	if fte, ok := err.(*FieldTypeError); ok && fte.Field == "" {
		fte.Type = typeName
		fte.Field = field
		return fte
	}
	return fmt.Errorf("%s.%s: %w", typeName, field, err)
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case json.Number, float64, int, int64:
		return fmt.Sprintf("number %v", v)
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("bool %v", v)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

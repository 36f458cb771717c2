package schema

import "fmt"

// MalformedJSONError means the response could not be parsed as a JSON object.
type MalformedJSONError struct {
	Shape Shape
	Err   error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Shape, e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError names the first field that is missing or has the
// wrong type.
type SchemaMismatchError struct {
	Shape  Shape
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s response field %s: %s", e.Shape, e.Field, e.Reason)
}

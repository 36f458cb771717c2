// Package schema turns raw model output into typed story values.
//
// Validation is all-or-nothing: callers receive either a fully populated
// value or an error, never a partially decoded one.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dotcommander/retold/internal/domain/story"
)

// Shape names the structure a response is validated against.
type Shape int

const (
	ShapeEssence Shape = iota + 1
	ShapeStoryMap
)

func (s Shape) String() string {
	switch s {
	case ShapeEssence:
		return "essence"
	case ShapeStoryMap:
		return "story_map"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire name so errors match what the model sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate parses raw as a JSON object of type T and checks it against the
// struct's validation tags.
func Validate[T any](raw string, shape Shape) (T, error) {
	var zero T

	body := CleanJSONResponse(raw)
	if !strings.HasPrefix(body, "{") {
		return zero, &MalformedJSONError{Shape: shape, Err: errors.New("response is not a JSON object")}
	}

	var out T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := indexedPath(body, typeErr.Field, typeErr.Value)
			if field == "" {
				field = "(root)"
			}
			return zero, &SchemaMismatchError{
				Shape:  shape,
				Field:  field,
				Reason: fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value),
			}
		}
		return zero, &MalformedJSONError{Shape: shape, Err: err}
	}

	if err := validate.Struct(out); err != nil {
		return zero, mismatchFrom(shape, err)
	}

	return out, nil
}

// ParseEssence validates an extract phase response.
func ParseEssence(raw string) (story.Essence, error) {
	return Validate[story.Essence](raw, ShapeEssence)
}

// ParseStoryMap validates a map phase response.
func ParseStoryMap(raw string) (story.StoryMap, error) {
	return Validate[story.StoryMap](raw, ShapeStoryMap)
}

func mismatchFrom(shape Shape, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &SchemaMismatchError{Shape: shape, Field: "(root)", Reason: err.Error()}
	}

	first := verrs[0]
	return &SchemaMismatchError{
		Shape:  shape,
		Field:  fieldPath(first.Namespace()),
		Reason: reason(first),
	}
}

// fieldPath drops the Go type name that prefixes a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// indexedPath rewrites a decoder path such as "characters.name" into the
// indexed form the validator reports, "characters[1].name", by finding the
// first value of the offending JSON kind along that path. The dotted path is
// returned unchanged when no such value is found.
func indexedPath(body, dotted, value string) string {
	if dotted == "" {
		return dotted
	}
	kind, _, _ := strings.Cut(value, " ")

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return dotted
	}
	if path, ok := locate(doc, strings.Split(dotted, "."), kind); ok {
		return strings.TrimPrefix(path, ".")
	}
	return dotted
}

func locate(v any, segments []string, kind string) (string, bool) {
	if len(segments) == 0 && jsonKind(v) == kind {
		return "", true
	}
	switch node := v.(type) {
	case []any:
		for i, elem := range node {
			if rest, ok := locate(elem, segments, kind); ok {
				return fmt.Sprintf("[%d]", i) + rest, true
			}
		}
	case map[string]any:
		if len(segments) == 0 {
			return "", false
		}
		child, ok := lookupKey(node, segments[0])
		if !ok {
			return "", false
		}
		if rest, ok := locate(child, segments[1:], kind); ok {
			return "." + segments[0] + rest, true
		}
	}
	return "", false
}

// lookupKey matches keys the way encoding/json does: exact first, then
// case-insensitively.
func lookupKey(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "null"
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing or empty"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

package utils

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Locations a request value can come from. The body location is the
// enclosing wrapper and never appears in reported field paths.
const (
	LocationBody  = "body"
	LocationQuery = "query"
	LocationPath  = "path"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate

	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	uuidType            = reflect.TypeOf(uuid.UUID{})
)

func init() {
	validate = validator.New()
	// Report JSON names so field paths match what the client sent
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
}

// FieldError is a single field-level failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field failure of one request, in input order.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// NewValidationError creates a ValidationError from field failures
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{
		Message: "Invalid input data",
		Fields:  fields,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) []FieldError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}

// FieldPath builds the dotted location of a value. A leading body segment is dropped.
func FieldPath(location ...string) string {
	if len(location) > 0 && location[0] == LocationBody {
		location = location[1:]
	}
	return strings.Join(location, ".")
}

// QueryFieldError reports an invalid query parameter
func QueryFieldError(name, message string) FieldError {
	return FieldError{Field: FieldPath(LocationQuery, name), Message: message}
}

// PathFieldError reports an invalid path parameter
func PathFieldError(name, message string) FieldError {
	return FieldError{Field: FieldPath(LocationPath, name), Message: message}
}

// orderedFieldError remembers the declaration index of the top-level field
type orderedFieldError struct {
	index int
	FieldError
}

// DecodeAndValidate decodes a JSON object body into dst (a pointer to struct),
// then runs struct validation. Type mismatches and rule violations on all
// fields are collected into a single *ValidationError ordered by field declaration.
func DecodeAndValidate(body io.Reader, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode target must be a pointer to struct, got %T", dst)
	}
	target := rv.Elem()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewValidationError(FieldError{Field: FieldPath(LocationBody), Message: "Field required"})
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return NewValidationError(FieldError{
				Field:   FieldPath(LocationBody, strconv.FormatInt(syntaxErr.Offset, 10)),
				Message: "JSON decode error",
			})
		}
		return NewValidationError(FieldError{
			Field:   FieldPath(LocationBody),
			Message: "Input should be a valid dictionary or object",
		})
	}
	if raw == nil {
		return NewValidationError(FieldError{Field: FieldPath(LocationBody), Message: "Field required"})
	}

	var collected []orderedFieldError
	failed := make(map[string]bool)
	indexByName := make(map[string]int)

	targetType := target.Type()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonName(field)
		if name == "" {
			continue
		}
		indexByName[name] = i

		value, ok := raw[name]
		if !ok {
			continue
		}
		if err := decodeField(target.Field(i), value); err != nil {
			failed[name] = true
			collected = append(collected, orderedFieldError{
				index: i,
				FieldError: FieldError{
					Field:   FieldPath(LocationBody, name),
					Message: typeMessage(field.Type),
				},
			})
		}
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, fe := range validationErrors {
			segments := strings.Split(fe.Namespace(), ".")[1:]
			if len(segments) == 0 || failed[segments[0]] {
				continue
			}
			collected = append(collected, orderedFieldError{
				index: indexByName[segments[0]],
				FieldError: FieldError{
					Field:   FieldPath(append([]string{LocationBody}, segments...)...),
					Message: ruleMessage(fe),
				},
			})
		}
	}

	if len(collected) == 0 {
		return nil
	}

	sort.SliceStable(collected, func(a, b int) bool {
		return collected[a].index < collected[b].index
	})
	fields := make([]FieldError, 0, len(collected))
	for _, c := range collected {
		fields = append(fields, c.FieldError)
	}
	return NewValidationError(fields...)
}

// ValidateStruct validates an already-populated struct
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		fields := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			segments := strings.Split(fe.Namespace(), ".")[1:]
			fields = append(fields, FieldError{
				Field:   FieldPath(append([]string{LocationBody}, segments...)...),
				Message: ruleMessage(fe),
			})
		}
		return NewValidationError(fields...)
	}
	return nil
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	name := strings.SplitN(tag, ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

// decodeField unmarshals one raw value into a struct field. A JSON null is
// only accepted by pointer, slice, map and interface fields.
func decodeField(field reflect.Value, value json.RawMessage) error {
	if string(bytes.TrimSpace(value)) == "null" {
		switch field.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		return errors.New("null value")
	}
	return json.Unmarshal(value, field.Addr().Interface())
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == uuidType {
		return "Input should be a valid UUID"
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return "Input should be a valid string"
	}
	switch t.Kind() {
	case reflect.String:
		return "Input should be a valid string"
	case reflect.Bool:
		return "Input should be a valid boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Input should be a valid integer"
	case reflect.Float32, reflect.Float64:
		return "Input should be a valid number"
	case reflect.Slice, reflect.Array:
		return "Input should be a valid list"
	case reflect.Struct, reflect.Map:
		return "Input should be a valid dictionary"
	}
	return "Input has an invalid type"
}

func ruleMessage(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("String should have at least %s %s", fe.Param(), plural("character", fe.Param()))
		}
		return fmt.Sprintf("Input should be greater than or equal to %s", fe.Param())
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("String should have at most %s %s", fe.Param(), plural("character", fe.Param()))
		}
		return fmt.Sprintf("Input should be less than or equal to %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Input should be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Input should be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Input should be %s", quoteChoices(strings.Fields(fe.Param())))
	case "uuid":
		return "Input should be a valid UUID"
	case "email":
		return "value is not a valid email address"
	}
	return fmt.Sprintf("Value failed the '%s' rule", fe.Tag())
}

func plural(word, count string) string {
	if count == "1" {
		return word
	}
	return word + "s"
}

// quoteChoices renders 'a', 'b' or 'c'
func quoteChoices(choices []string) string {
	quoted := make([]string, len(choices))
	for i, c := range choices {
		quoted[i] = "'" + c + "'"
	}
	if len(quoted) <= 1 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

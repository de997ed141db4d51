// Package validation turns struct-tag and domain rule failures into a single
// field-keyed error that handlers can report without losing form state.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return snakeCase(fld.Name)
	})

	return v
}

// Error maps field names to the rule they failed.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a failed rule. The first failure per field wins.
func (e *Error) Add(field, rule string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	if _, exists := e.Fields[field]; exists {
		return
	}

	e.Fields[field] = rule
}

// OrNil returns e when at least one field failed.
func (e *Error) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}

	return e
}

// Struct validates v against its `validate` tags. The returned *Error can be
// extended with domain checks before being surfaced via OrNil.
func Struct(v any) *Error {
	verr := &Error{}

	err := validate.Struct(v)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("_", err.Error())
		return verr
	}

	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fe.Tag())
	}

	return verr
}

// As reports whether err carries a validation failure.
func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}

	return nil, false
}

func snakeCase(s string) string {
	var sb strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// Package validate runs each field's internal rule against its external
// value and collects the failures as per-field errors.
package validate

import (
	"context"
	"sort"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// FieldError describes why a field is invalid. Type carries the issue code
// of the rule that failed.
type FieldError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Errors maps field names to their current error. Valid fields are absent.
type Errors map[string]FieldError

// Has reports whether name has an error.
func (e Errors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Names returns the invalid field names, sorted.
func (e Errors) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Messages flattens the errors for renderers.
func (e Errors) Messages() map[string][]string {
	out := make(map[string][]string, len(e))
	for name, fe := range e {
		out[name] = []string{fe.Message}
	}
	return out
}

// Clone returns a copy of e. A nil receiver yields an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Field validates a single external value. ok is false when the value
// fails the field's internal rule; the last issue becomes the FieldError.
func Field(ctx context.Context, s schema.Schema, name string, external any) (FieldError, bool, error) {
	field, err := s.Field(name)
	if err != nil {
		return FieldError{}, false, err
	}
	res := field.In.SafeParse(ctx, external)
	if res.OK() {
		return FieldError{}, true, nil
	}
	last, _ := res.Issues.Last()
	return FieldError{Message: last.Message, Type: last.Code}, false, nil
}

// ValidateAll validates every entry of externals. Fields without an
// external value are not checked.
func ValidateAll(ctx context.Context, s schema.Schema, externals map[string]any) (Errors, error) {
	errs := Errors{}
	for name, external := range externals {
		fe, ok, err := Field(ctx, s, name, external)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs[name] = fe
		}
	}
	return errs, nil
}

// IsValid reports whether errs is empty. An entry with an empty message
// still counts as an error.
func IsValid(errs Errors) bool {
	return len(errs) == 0
}

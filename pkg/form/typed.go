package form

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// Accessor reads and writes one field as a Go type.
type Accessor[T any] struct {
	form *Form
	name string
}

// Bind returns a typed accessor for name.
func Bind[T any](f *Form, name string) (Accessor[T], error) {
	if !f.schema.Has(name) {
		return Accessor[T]{}, fmt.Errorf("form: bind: %w", schema.UnknownField(name))
	}
	return Accessor[T]{form: f, name: name}, nil
}

// Name returns the field name.
func (a Accessor[T]) Name() string {
	return a.name
}

// Get returns the internal value. ok is false when the field has no value
// or holds a value that is not a T.
func (a Accessor[T]) Get() (T, bool) {
	v, err := a.form.Value(a.name)
	if err != nil || v == nil {
		var zero T
		return zero, false
	}
	return schema.As[T](v)
}

// Set sets the internal value.
func (a Accessor[T]) Set(ctx context.Context, v T) error {
	return a.form.SetValue(ctx, a.name, v)
}

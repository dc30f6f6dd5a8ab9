// Package formstate binds user-facing form values to typed internal values.
//
// Each field keeps an internal value, the one the program works with, and
// optionally an external value, the one a control displays. Rules validate
// the external value; converters move values between the two sides. The
// root package re-exports the common entry points of pkg/schema and
// pkg/form:
//
//	s := formstate.MustSchema(map[string]formstate.Field{
//		// Stored in millimeters, edited in meters.
//		"size": formstate.External(goskema.Number().Min(5), goskema.Number(),
//			func(mm float64) float64 { return mm / 1000 },
//			func(m float64) float64 { return m * 1000 }),
//	})
//	f, err := formstate.New(s, form.WithDefaultValues(map[string]any{"size": 1500.0}))
package formstate

import (
	"io/fs"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/renderers/html"
	"github.com/goliatone/go-formstate/pkg/rule"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Form aliases form.Form.
type Form = form.Form

// Field aliases schema.Field.
type Field = schema.Field

// Schema aliases schema.Schema.
type Schema = schema.Schema

// Option aliases form.Option.
type Option = form.Option

// New creates a form over s.
func New(s Schema, opts ...Option) (*Form, error) {
	return form.New(s, opts...)
}

// NewSchema validates the field descriptors and builds a schema.
func NewSchema(fields map[string]Field) (Schema, error) {
	return schema.New(fields)
}

// MustSchema is NewSchema that panics on error.
func MustSchema(fields map[string]Field) Schema {
	return schema.MustNew(fields)
}

// Internal describes a field without a separate external value.
func Internal(in rule.Rule) Field {
	return schema.Internal(in)
}

// External describes a field whose control shows an E while the program
// holds an I.
func External[I, E any](in, ex rule.Rule, i2e func(I) E, e2i func(E) I) Field {
	return schema.External(in, ex, i2e, e2i)
}

// LoadSchemaFile reads a YAML schema file and its default values.
func LoadSchemaFile(path string) (Schema, map[string]any, error) {
	return schema.LoadFile(path)
}

// EmbeddedTemplates exposes the built-in HTML form templates.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

package schema

import (
	"fmt"
	"sort"
)

// Schema is an immutable set of named field descriptors.
type Schema struct {
	fields map[string]Field
	names  []string
}

// New validates every descriptor and returns the schema.
func New(fields map[string]Field) (Schema, error) {
	out := Schema{
		fields: make(map[string]Field, len(fields)),
		names:  make([]string, 0, len(fields)),
	}
	for name, field := range fields {
		if name == "" {
			return Schema{}, fmt.Errorf("schema: empty field name")
		}
		if err := field.check(); err != nil {
			return Schema{}, fmt.Errorf("%w (field %q)", err, name)
		}
		field.Options = append([]string(nil), field.Options...)
		out.fields[name] = field
		out.names = append(out.names, name)
	}
	sort.Strings(out.names)
	return out, nil
}

// MustNew is like New but panics on error.
func MustNew(fields map[string]Field) Schema {
	s, err := New(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the descriptor for name.
func (s Schema) Field(name string) (Field, error) {
	field, ok := s.fields[name]
	if !ok {
		return Field{}, UnknownField(name)
	}
	return field, nil
}

// Has reports whether name is declared.
func (s Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Names returns the declared names in sorted order.
func (s Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.names)
}

// UnknownField builds the error returned for an undeclared name.
func UnknownField(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, name)
}

package schema

import (
	"errors"
	"fmt"
)

// Document is a schema file payload together with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument wraps raw. Both arguments are required.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("schema: %s is empty", src.Location())
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// ReadDocument reads the payload behind src.
func ReadDocument(src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	raw, err := src.read()
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, raw)
}

// Source returns the origin.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the origin identifier, or "" for the zero Document.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

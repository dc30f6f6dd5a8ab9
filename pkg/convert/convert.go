// Package convert maps field values between their internal and external
// representations using the converters declared on each schema field.
package convert

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// ToExternal returns the display value for an internal value. Internal-only
// fields pass through unchanged; nil always maps to nil.
func ToExternal(ctx context.Context, s schema.Schema, name string, internal any) (any, error) {
	field, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	if internal == nil || !field.HasExternal() {
		return internal, nil
	}
	out, err := field.InternalToExternal(ctx, internal)
	if err != nil {
		return nil, fmt.Errorf("convert: %s to external: %w", name, err)
	}
	return out, nil
}

// ToInternal returns the candidate internal value for a raw external value.
// The result is not validated.
func ToInternal(ctx context.Context, s schema.Schema, name string, external any) (any, error) {
	field, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	if field.ExternalToInternal == nil {
		return external, nil
	}
	out, err := field.ExternalToInternal(ctx, external)
	if err != nil {
		return nil, fmt.Errorf("convert: %s to internal: %w", name, err)
	}
	return out, nil
}

// AllToExternal converts every entry of internals.
func AllToExternal(ctx context.Context, s schema.Schema, internals map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(internals))
	for name, v := range internals {
		ex, err := ToExternal(ctx, s, name, v)
		if err != nil {
			return nil, err
		}
		out[name] = ex
	}
	return out, nil
}

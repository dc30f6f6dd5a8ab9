package schema

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/goliatone/go-formstate/pkg/rule"
)

// Internal declares an internal-only field validated by in.
func Internal(in rule.Rule) Field {
	return Field{In: in}
}

// InternalFrom declares an internal-only field whose raw external value is
// turned into I by e2i before validation.
func InternalFrom[I any](in rule.Rule, e2i func(raw any) (I, error)) Field {
	field := Field{In: in}
	if e2i != nil {
		field.ExternalToInternal = func(_ context.Context, raw any) (any, error) {
			v, err := e2i(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConversion, err)
			}
			return v, nil
		}
	}
	return field
}

// External declares a field whose display value has its own type E. A raw
// external value that is not already an E is parsed through ex first, so a
// text input can feed "12" into a float64 external side.
//
// Passing a nil ex or converter leaves that part undeclared and New rejects
// the descriptor with ErrPartialExternal.
func External[I, E any](in, ex rule.Rule, i2e func(I) E, e2i func(E) I) Field {
	field := Field{In: in, Ex: ex}
	if i2e != nil {
		field.InternalToExternal = func(_ context.Context, value any) (any, error) {
			iv, ok := As[I](value)
			if !ok {
				return nil, fmt.Errorf("%w: internal value %T is not %s", ErrTypeMismatch, value, typeName[I]())
			}
			return i2e(iv), nil
		}
	}
	if e2i != nil && ex != nil {
		field.ExternalToInternal = func(ctx context.Context, raw any) (any, error) {
			ev, ok := As[E](raw)
			if !ok {
				res := ex.SafeParse(ctx, raw)
				if !res.OK() {
					return nil, fmt.Errorf("%w: %w", ErrConversion, res.Issues)
				}
				if ev, ok = As[E](res.Data); !ok {
					return nil, fmt.Errorf("%w: external value %T is not %s", ErrTypeMismatch, res.Data, typeName[E]())
				}
			}
			return e2i(ev), nil
		}
	}
	return field
}

// As converts v to T. Besides plain type assertion it converts between named
// and underlying types of the same kind and between numeric kinds when the
// value is preserved.
func As[T any](v any) (T, bool) {
	var zero T
	if t, ok := v.(T); ok {
		return t, true
	}
	if v == nil {
		return zero, false
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(target) {
		return zero, false
	}
	src, dst := rv.Kind(), target.Kind()
	switch {
	case src == dst:
	case isNumeric(src) && isNumeric(dst):
		if isFloat(src) && !isFloat(dst) && rv.Float() != math.Trunc(rv.Float()) {
			return zero, false
		}
	default:
		return zero, false
	}
	converted := rv.Convert(target)
	if isNumeric(src) && src != dst && !preserved(rv, converted) {
		return zero, false
	}
	out, ok := converted.Interface().(T)
	return out, ok
}

// preserved reports whether a numeric conversion kept the value. Integer
// targets must round trip exactly. Float targets only reject overflow, so
// float64 to float32 may still lose precision.
func preserved(from, to reflect.Value) bool {
	if isFloat(to.Kind()) {
		if !isFloat(from.Kind()) {
			return true
		}
		f := from.Float()
		return math.IsInf(f, 0) || math.IsNaN(f) || !to.OverflowFloat(f)
	}
	return to.Convert(from.Type()).Interface() == from.Interface()
}

func isNumeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || isFloat(k)
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

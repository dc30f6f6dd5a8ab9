package schema_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/goliatone/go-formstate/pkg/rule/goskema"
	"github.com/goliatone/go-formstate/pkg/schema"
)

type meters float64

func TestExternal_RoundTrip(t *testing.T) {
	field := schema.External(
		goskema.Number(),
		goskema.Number().Min(0),
		func(mm float64) float64 { return mm / 1000 },
		func(m float64) float64 { return m * 1000 },
	)
	if field.Kind() != schema.KindWithExternal {
		t.Fatalf("expected WithExternal")
	}
	ctx := context.Background()

	ex, err := field.InternalToExternal(ctx, 2500.0)
	if err != nil || ex != 2.5 {
		t.Fatalf("i2e = %v, %v", ex, err)
	}

	// Raw display strings go through the external rule first.
	in, err := field.ExternalToInternal(ctx, "1.5")
	if err != nil || in != 1500.0 {
		t.Fatalf("e2i(\"1.5\") = %v, %v", in, err)
	}

	if _, err := field.ExternalToInternal(ctx, "-1"); !errors.Is(err, schema.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	if _, err := field.InternalToExternal(ctx, "oops"); !errors.Is(err, schema.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestInternalFrom(t *testing.T) {
	field := schema.InternalFrom(goskema.Integer(), func(raw any) (int, error) {
		s, _ := raw.(string)
		return strconv.Atoi(s)
	})
	ctx := context.Background()
	got, err := field.ExternalToInternal(ctx, "42")
	if err != nil || got != 42 {
		t.Fatalf("e2i = %v, %v", got, err)
	}
	if _, err := field.ExternalToInternal(ctx, "x"); !errors.Is(err, schema.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestAs(t *testing.T) {
	if v, ok := schema.As[float64](meters(3)); !ok || v != 3 {
		t.Fatalf("As[float64](meters) = %v, %v", v, ok)
	}
	if v, ok := schema.As[int](4.0); !ok || v != 4 {
		t.Fatalf("As[int](4.0) = %v, %v", v, ok)
	}
	if _, ok := schema.As[int](4.5); ok {
		t.Fatalf("As[int](4.5) should fail")
	}
	if _, ok := schema.As[string](65); ok {
		t.Fatalf("As[string](65) should not use rune conversion")
	}
	if _, ok := schema.As[float64](nil); ok {
		t.Fatalf("As on nil should fail")
	}
}

func TestAs_RejectsValuesThatDoNotFit(t *testing.T) {
	cases := []struct {
		name string
		got  func() bool
	}{
		{name: "int8 from 300", got: func() bool { _, ok := schema.As[int8](300); return ok }},
		{name: "int8 from 300.0", got: func() bool { _, ok := schema.As[int8](300.0); return ok }},
		{name: "uint from -1", got: func() bool { _, ok := schema.As[uint](-1); return ok }},
		{name: "int from 1e19", got: func() bool { _, ok := schema.As[int](1e19); return ok }},
		{name: "float32 from 1e300", got: func() bool { _, ok := schema.As[float32](1e300); return ok }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got() {
				t.Fatalf("expected conversion to fail")
			}
		})
	}

	if v, ok := schema.As[int8](-128); !ok || v != -128 {
		t.Fatalf("As[int8](-128) = %v, %v", v, ok)
	}
	if v, ok := schema.As[uint16](65535.0); !ok || v != 65535 {
		t.Fatalf("As[uint16](65535.0) = %v, %v", v, ok)
	}
	if v, ok := schema.As[float32](0.5); !ok || v != 0.5 {
		t.Fatalf("As[float32](0.5) = %v, %v", v, ok)
	}
}

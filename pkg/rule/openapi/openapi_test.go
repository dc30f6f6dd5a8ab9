package openapi_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/rule"
	"github.com/goliatone/go-formstate/pkg/rule/openapi"
)

func TestRule_NumberCoercionAndMinimum(t *testing.T) {
	r, err := openapi.FromJSON([]byte(`{"type":"number","minimum":5}`))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if got := r.Type(); got != "number" {
		t.Fatalf("Type() = %q", got)
	}

	ctx := context.Background()
	res := r.SafeParse(ctx, "12")
	if !res.OK() || res.Data != 12.0 {
		t.Fatalf("expected 12 to pass, got %+v", res)
	}

	res = r.SafeParse(ctx, 1)
	if res.OK() {
		t.Fatalf("expected minimum violation")
	}
	if res.Issues[0].Code != rule.CodeTooSmall {
		t.Fatalf("code = %q, want %q", res.Issues[0].Code, rule.CodeTooSmall)
	}

	res = r.SafeParse(ctx, "abc")
	if res.OK() || res.Issues[0].Code != rule.CodeInvalidType {
		t.Fatalf("expected invalid_type, got %+v", res)
	}
}

func TestRule_MessageOverride(t *testing.T) {
	schema := openapi3.NewStringSchema().WithMinLength(3)
	r := openapi.New(schema, openapi.WithMessage("too short"))

	res := r.SafeParse(context.Background(), "ab")
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if got := res.Issues[0].Message; got != "too short" {
		t.Fatalf("message = %q", got)
	}
	if got := res.Issues[0].Code; got != rule.CodeTooShort {
		t.Fatalf("code = %q", got)
	}
}

func TestRule_BooleanStrings(t *testing.T) {
	r := openapi.New(openapi3.NewBoolSchema())
	ctx := context.Background()
	if res := r.SafeParse(ctx, "true"); !res.OK() || res.Data != true {
		t.Fatalf("expected true, got %+v", res)
	}
	if res := r.SafeParse(ctx, "yes please"); res.OK() {
		t.Fatalf("expected failure for non-boolean string")
	}
}

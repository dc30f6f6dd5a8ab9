package jsonschema_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/pkg/rule"
	"github.com/goliatone/go-formstate/pkg/rule/jsonschema"
)

func TestCompile_NumberMinimum(t *testing.T) {
	r, err := jsonschema.Compile("mem://size.json", `{"type":"number","minimum":5}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if r.Type() != "number" {
		t.Fatalf("Type() = %q", r.Type())
	}

	ctx := context.Background()
	if res := r.SafeParse(ctx, "7"); !res.OK() || res.Data != 7.0 {
		t.Fatalf("expected 7 to pass, got %+v", res)
	}

	res := r.SafeParse(ctx, 2)
	if res.OK() {
		t.Fatalf("expected failure")
	}
	last, _ := res.Issues.Last()
	if last.Code != rule.CodeTooSmall {
		t.Fatalf("code = %q, want %q", last.Code, rule.CodeTooSmall)
	}
	if !strings.Contains(last.Message, "5") {
		t.Fatalf("message %q should mention the bound", last.Message)
	}
}

func TestCompile_TypeMismatch(t *testing.T) {
	r, err := jsonschema.Compile("mem://flag.json", `{"type":"boolean"}`, jsonschema.WithMessage("pick yes or no"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	res := r.SafeParse(context.Background(), "maybe")
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if res.Issues[0].Code != rule.CodeInvalidType {
		t.Fatalf("code = %q", res.Issues[0].Code)
	}
	if res.Issues[0].Message != "pick yes or no" {
		t.Fatalf("message = %q", res.Issues[0].Message)
	}
}

func TestCompile_InvalidSource(t *testing.T) {
	if _, err := jsonschema.Compile("mem://bad.json", `{"type":`); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestNew_NilSchema(t *testing.T) {
	if _, err := jsonschema.New(nil); err == nil {
		t.Fatalf("expected error for nil schema")
	}
}

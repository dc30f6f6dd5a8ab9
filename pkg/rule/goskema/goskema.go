// Package goskema adapts goskema schemas to the rule.Rule contract.
//
// Any goskema.Schema[T] becomes a field rule through New. Number, Integer,
// String and Boolean wrap the dsl primitives with the coercions display
// values need (numeric strings, "true"/"false") and the usual bounds. Bounds
// run as the schema's Refine step and report goskema issues.
package goskema

import (
	"context"
	"strings"

	gsk "github.com/reoring/goskema"

	"github.com/goliatone/go-formstate/pkg/rule"
)

// Rule validates values with a goskema schema.
type Rule[T any] struct {
	schema  gsk.Schema[T]
	typ     string
	prepare func(any) any
	output  func(T) any
	checks  []check[T]
	message string
}

type check[T any] struct {
	code    string
	message string
	params  map[string]any
	fails   func(T) bool
}

// New wraps s. The declared type is read from s.JSONSchema.
func New[T any](s gsk.Schema[T]) Rule[T] {
	r := Rule[T]{schema: s}
	if doc, err := s.JSONSchema(); err == nil && doc != nil {
		r.typ = doc.Type
	}
	return r
}

// Check adds a refinement. fails reports a violation, which is recorded as
// an issue with code and message.
func (r Rule[T]) Check(code, message string, fails func(T) bool) Rule[T] {
	return r.with(check[T]{code: code, message: message, fails: fails})
}

func (r Rule[T]) with(c check[T]) Rule[T] {
	checks := make([]check[T], 0, len(r.checks)+1)
	checks = append(checks, r.checks...)
	r.checks = append(checks, c)
	return r
}

// WithMessage replaces every issue message with msg.
func (r Rule[T]) WithMessage(msg string) Rule[T] {
	r.message = strings.TrimSpace(msg)
	return r
}

// Type reports the declared JSON type.
func (r Rule[T]) Type() string {
	return r.typ
}

// Schema returns the wrapped schema with the checks as its Refine step.
func (r Rule[T]) Schema() gsk.Schema[T] {
	return refined[T]{Schema: r.schema, checks: r.checks}
}

// SafeParse runs the schema's Parse and maps its issues.
func (r Rule[T]) SafeParse(ctx context.Context, value any) rule.Result {
	if r.prepare != nil {
		value = r.prepare(value)
	}
	out, err := r.Schema().Parse(ctx, value)
	if err != nil {
		return rule.Failure(r.issuesFrom(err)...)
	}
	if r.output != nil {
		return rule.Success(r.output(out))
	}
	return rule.Success(out)
}

func (r Rule[T]) issuesFrom(err error) rule.Issues {
	iss, ok := gsk.AsIssues(err)
	if !ok {
		return rule.Issues{{Code: rule.CodeCustom, Message: r.messageOr(err.Error())}}
	}
	out := make(rule.Issues, 0, len(iss))
	for _, it := range iss {
		out = append(out, rule.Issue{
			Code:    it.Code,
			Message: r.messageOr(it.Message),
			Params:  it.Params,
		})
	}
	return out
}

func (r Rule[T]) messageOr(fallback string) string {
	if r.message != "" {
		return r.message
	}
	return fallback
}

// refined layers the checks over a schema through goskema's Refiner hook.
type refined[T any] struct {
	gsk.Schema[T]
	checks []check[T]
}

func (s refined[T]) Parse(ctx context.Context, v any) (T, error) {
	out, err := s.Schema.Parse(ctx, v)
	if err != nil {
		return out, err
	}
	if err := gsk.ApplyRefine[T](ctx, out, s); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (s refined[T]) Refine(_ context.Context, v T) error {
	var iss gsk.Issues
	for _, c := range s.checks {
		if c.fails(v) {
			iss = gsk.AppendIssues(iss, gsk.Issue{Path: "/", Code: c.code, Message: c.message, Params: c.params})
		}
	}
	if len(iss) == 0 {
		return nil
	}
	return iss
}

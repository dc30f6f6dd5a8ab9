// Package jsonschema adapts compiled santhosh-tekuri/jsonschema schemas to
// the rule.Rule contract.
package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-formstate/pkg/rule"
)

// Rule validates values against a compiled JSON Schema.
type Rule struct {
	schema  *jsonschema.Schema
	message string
}

// Option configures a Rule.
type Option func(*Rule)

// WithMessage replaces every issue message with msg.
func WithMessage(msg string) Option {
	return func(r *Rule) {
		r.message = strings.TrimSpace(msg)
	}
}

// New wraps an already compiled schema.
func New(schema *jsonschema.Schema, options ...Option) (*Rule, error) {
	if schema == nil {
		return nil, errors.New("jsonschema rule: schema is nil")
	}
	r := &Rule{schema: schema}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Compile registers source under url and compiles it.
func Compile(url, source string, options ...Option) (*Rule, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("jsonschema rule: add resource: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("jsonschema rule: compile schema: %w", err)
	}
	return New(schema, options...)
}

// Type reports the first declared type of the schema.
func (r *Rule) Type() string {
	if len(r.schema.Types) == 0 {
		return ""
	}
	return r.schema.Types[0]
}

// SafeParse coerces display strings to the declared type and validates.
func (r *Rule) SafeParse(_ context.Context, value any) rule.Result {
	coerced := r.coerce(value)
	if err := r.schema.Validate(coerced); err != nil {
		return rule.Failure(r.issuesFrom(err)...)
	}
	return rule.Success(coerced)
}

func (r *Rule) coerce(value any) any {
	switch r.Type() {
	case "number", "integer":
		if f, ok := rule.ToFloat(value); ok {
			return f
		}
	case "boolean":
		if s, ok := value.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	}
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		f, _ := rule.ToFloat(value)
		return f
	}
	return value
}

func (r *Rule) issuesFrom(err error) rule.Issues {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return rule.Issues{{Code: rule.CodeCustom, Message: r.messageOr(err.Error())}}
	}
	var issues rule.Issues
	collect(ve, func(leaf *jsonschema.ValidationError) {
		keyword := path.Base(leaf.KeywordLocation)
		issues = append(issues, rule.Issue{
			Code:    codeForKeyword(keyword),
			Message: r.messageOr(leaf.Message),
			Params:  map[string]any{"keyword": keyword, "instance": leaf.InstanceLocation},
		})
	})
	if len(issues) == 0 {
		issues = append(issues, rule.Issue{Code: rule.CodeCustom, Message: r.messageOr(ve.Message)})
	}
	return issues
}

func collect(err *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		fn(err)
		return
	}
	for _, cause := range err.Causes {
		collect(cause, fn)
	}
}

func (r *Rule) messageOr(fallback string) string {
	if r.message != "" {
		return r.message
	}
	return fallback
}

func codeForKeyword(keyword string) string {
	switch keyword {
	case "minimum", "exclusiveMinimum":
		return rule.CodeTooSmall
	case "maximum", "exclusiveMaximum":
		return rule.CodeTooBig
	case "minLength":
		return rule.CodeTooShort
	case "maxLength":
		return rule.CodeTooLong
	case "pattern":
		return rule.CodePattern
	case "enum", "const":
		return rule.CodeInvalidEnum
	case "type":
		return rule.CodeInvalidType
	}
	return rule.CodeCustom
}

// Package openapi adapts kin-openapi schema objects to the rule.Rule
// contract. Display strings are coerced to the schema's scalar type before
// openapi3.Schema.VisitJSON runs, so a text input holding "12" validates
// against `type: number`.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/rule"
)

// Rule validates values with an OpenAPI schema object.
type Rule struct {
	schema  *openapi3.Schema
	message string
	opts    []openapi3.SchemaValidationOption
}

// Option configures a Rule.
type Option func(*Rule)

// WithMessage replaces every issue message with msg.
func WithMessage(msg string) Option {
	return func(r *Rule) {
		r.message = strings.TrimSpace(msg)
	}
}

// WithValidationOptions forwards options to VisitJSON.
func WithValidationOptions(opts ...openapi3.SchemaValidationOption) Option {
	return func(r *Rule) {
		r.opts = append(r.opts, opts...)
	}
}

// New wraps schema. A nil schema accepts every value.
func New(schema *openapi3.Schema, options ...Option) *Rule {
	if schema == nil {
		schema = openapi3.NewSchema()
	}
	r := &Rule{schema: schema}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	r.opts = append(r.opts, openapi3.MultiErrors())
	return r
}

// FromJSON decodes an OpenAPI schema object and wraps it.
func FromJSON(data []byte, options ...Option) (*Rule, error) {
	schema := openapi3.NewSchema()
	if err := schema.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("openapi rule: decode schema: %w", err)
	}
	return New(schema, options...), nil
}

// Schema returns the wrapped schema object.
func (r *Rule) Schema() *openapi3.Schema {
	return r.schema
}

// Type reports the first declared schema type.
func (r *Rule) Type() string {
	if r.schema.Type == nil {
		return ""
	}
	types := r.schema.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// SafeParse coerces value to the declared type and runs VisitJSON.
func (r *Rule) SafeParse(_ context.Context, value any) rule.Result {
	coerced, ok := r.coerce(value)
	if !ok {
		return rule.Failure(rule.Issue{
			Code:    rule.CodeInvalidType,
			Message: r.messageOr("value must be a " + r.Type()),
		})
	}
	if err := r.schema.VisitJSON(coerced, r.opts...); err != nil {
		return rule.Failure(r.issuesFrom(err)...)
	}
	return rule.Success(coerced)
}

func (r *Rule) coerce(value any) (any, bool) {
	switch r.Type() {
	case openapi3.TypeNumber:
		if value == nil {
			return nil, true
		}
		f, ok := rule.ToFloat(value)
		return f, ok
	case openapi3.TypeInteger:
		if value == nil {
			return nil, true
		}
		f, ok := rule.ToFloat(value)
		return f, ok
	case openapi3.TypeBoolean:
		switch v := value.(type) {
		case bool, nil:
			return v, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			return b, err == nil
		}
		return value, false
	}
	return normalizeJSON(value), true
}

func normalizeJSON(value any) any {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		f, _ := rule.ToFloat(value)
		return f
	}
	return value
}

func (r *Rule) issuesFrom(err error) rule.Issues {
	var errs []error
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		errs = multi
	} else {
		errs = []error{err}
	}

	issues := make(rule.Issues, 0, len(errs))
	for _, e := range errs {
		var schemaErr *openapi3.SchemaError
		if errors.As(e, &schemaErr) {
			issues = append(issues, rule.Issue{
				Code:    codeForField(schemaErr.SchemaField),
				Message: r.messageOr(strings.TrimSpace(schemaErr.Reason)),
				Params:  map[string]any{"keyword": schemaErr.SchemaField},
			})
			continue
		}
		issues = append(issues, rule.Issue{
			Code:    rule.CodeCustom,
			Message: r.messageOr(strings.TrimSpace(e.Error())),
		})
	}
	if len(issues) == 0 {
		issues = append(issues, rule.Issue{Code: rule.CodeCustom, Message: r.messageOr("invalid value")})
	}
	return issues
}

func (r *Rule) messageOr(fallback string) string {
	if r.message != "" {
		return r.message
	}
	return fallback
}

func codeForField(field string) string {
	switch field {
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
	case "enum":
		return rule.CodeInvalidEnum
	case "type", "nullable":
		return rule.CodeInvalidType
	default:
		return rule.CodeCustom
	}
}

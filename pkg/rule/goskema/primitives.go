package goskema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/goskema/dsl"

	"github.com/goliatone/go-formstate/pkg/rule"
)

// Integers outside [-2^63, 2^63) do not fit an int.
const int64Limit = 1 << 63

// NumberRule parses numbers through dsl.NumberJSON with string coercion.
// Parsed data is a float64, or an int for Integer.
type NumberRule struct {
	Rule[json.Number]
}

// Number returns a rule for finite numbers.
func Number() NumberRule {
	r := New[json.Number](dsl.NumberJSON().CoerceFromString())
	r.typ = "number"
	r.prepare = prepareNumber
	r.output = func(n json.Number) any { return float(n) }
	r = r.Check(rule.CodeInvalidType, "expected a finite number", func(n json.Number) bool {
		f, err := n.Float64()
		return err != nil || math.IsNaN(f) || math.IsInf(f, 0)
	})
	return NumberRule{Rule: r}
}

// Integer returns a rule for whole numbers that fit an int.
func Integer() NumberRule {
	r := Number().Rule
	r.typ = "integer"
	r.output = func(n json.Number) any {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		return int(float(n))
	}
	r = r.Check(rule.CodeInvalidType, "expected an integer", func(n json.Number) bool {
		f := float(n)
		return f != math.Trunc(f)
	})
	r = r.with(check[json.Number]{
		code:    rule.CodeTooBig,
		message: "must fit in a 64-bit integer",
		params:  map[string]any{"max": int64(math.MaxInt64)},
		fails:   func(n json.Number) bool { return !fitsInt64(n) && float(n) > 0 },
	})
	r = r.with(check[json.Number]{
		code:    rule.CodeTooSmall,
		message: "must fit in a 64-bit integer",
		params:  map[string]any{"min": int64(math.MinInt64)},
		fails:   func(n json.Number) bool { return !fitsInt64(n) && float(n) < 0 },
	})
	return NumberRule{Rule: r}
}

// Min requires value >= bound.
func (n NumberRule) Min(bound float64, message ...string) NumberRule {
	n.Rule = n.with(check[json.Number]{
		code:    rule.CodeTooSmall,
		message: pick(message, "must be greater than or equal to "+formatFloat(bound)),
		params:  map[string]any{"min": bound},
		fails:   func(v json.Number) bool { return float(v) < bound },
	})
	return n
}

// Max requires value <= bound.
func (n NumberRule) Max(bound float64, message ...string) NumberRule {
	n.Rule = n.with(check[json.Number]{
		code:    rule.CodeTooBig,
		message: pick(message, "must be less than or equal to "+formatFloat(bound)),
		params:  map[string]any{"max": bound},
		fails:   func(v json.Number) bool { return float(v) > bound },
	})
	return n
}

// StringRule parses text through dsl.String.
type StringRule struct {
	Rule[string]
}

// String returns a rule for text values.
func String() StringRule {
	r := New[string](dsl.String())
	r.typ = "string"
	return StringRule{Rule: r}
}

// MinLength requires at least n runes.
func (s StringRule) MinLength(n int, message ...string) StringRule {
	s.Rule = s.with(check[string]{
		code:    rule.CodeTooShort,
		message: pick(message, fmt.Sprintf("must contain at least %d character(s)", n)),
		params:  map[string]any{"min": n},
		fails:   func(v string) bool { return utf8.RuneCountInString(v) < n },
	})
	return s
}

// MaxLength allows at most n runes.
func (s StringRule) MaxLength(n int, message ...string) StringRule {
	s.Rule = s.with(check[string]{
		code:    rule.CodeTooLong,
		message: pick(message, fmt.Sprintf("must contain at most %d character(s)", n)),
		params:  map[string]any{"max": n},
		fails:   func(v string) bool { return utf8.RuneCountInString(v) > n },
	})
	return s
}

// Pattern requires a regular expression match. It panics on an invalid
// expression, like regexp.MustCompile.
func (s StringRule) Pattern(expr string, message ...string) StringRule {
	re := regexp.MustCompile(expr)
	s.Rule = s.with(check[string]{
		code:    rule.CodePattern,
		message: pick(message, "must match "+expr),
		params:  map[string]any{"pattern": expr},
		fails:   func(v string) bool { return !re.MatchString(v) },
	})
	return s
}

// OneOf restricts the value to options.
func (s StringRule) OneOf(options ...string) StringRule {
	allowed := make(map[string]struct{}, len(options))
	for _, o := range options {
		allowed[o] = struct{}{}
	}
	s.Rule = s.with(check[string]{
		code:    rule.CodeInvalidEnum,
		message: "must be one of " + strings.Join(options, ", "),
		params:  map[string]any{"options": options},
		fails: func(v string) bool {
			_, ok := allowed[v]
			return !ok
		},
	})
	return s
}

// Boolean returns a rule for checkbox-like values over dsl.Bool. The
// strings "true" and "false" are accepted.
func Boolean() Rule[bool] {
	r := New[bool](dsl.Bool())
	r.typ = "boolean"
	r.prepare = func(v any) any {
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
		return v
	}
	return r
}

// prepareNumber turns Go numbers into json.Number and trims numeric
// strings, leaving the string-to-number parse to goskema.
func prepareNumber(v any) any {
	switch t := v.(type) {
	case nil, bool, json.Number:
		return v
	case string:
		return strings.TrimSpace(t)
	case int:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case uint64:
		return json.Number(strconv.FormatUint(t, 10))
	}
	if reflect.ValueOf(v).Kind() == reflect.String {
		return strings.TrimSpace(reflect.ValueOf(v).String())
	}
	if f, ok := rule.ToFloat(v); ok {
		return f
	}
	return v
}

func fitsInt64(n json.Number) bool {
	if _, err := n.Int64(); err == nil {
		return true
	}
	f := float(n)
	return f >= -int64Limit && f < int64Limit
}

func float(n json.Number) float64 {
	f, _ := n.Float64()
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pick(custom []string, fallback string) string {
	if len(custom) > 0 && strings.TrimSpace(custom[0]) != "" {
		return custom[0]
	}
	return fallback
}

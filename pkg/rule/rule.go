package rule

import (
	"context"
	"fmt"
	"strings"
)

// Issue codes shared by the built-in rules and the schema adapters.
const (
	CodeInvalidType = "invalid_type"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodePattern     = "pattern"
	CodeInvalidEnum = "invalid_enum"
	CodeCustom      = "custom"
)

// Rule validates (and possibly coerces) a single value. SafeParse never
// panics on bad input; failures are reported through Result.Issues.
type Rule interface {
	SafeParse(ctx context.Context, value any) Result
}

// Typed is implemented by rules that know the JSON type they accept
// ("number", "integer", "string", "boolean"). Adapters use it to pick a
// control kind and to coerce raw display strings.
type Typed interface {
	Type() string
}

// Result is the outcome of SafeParse. Data holds the parsed value when the
// parse succeeded.
type Result struct {
	Data   any
	Issues Issues
}

// OK reports whether the parse succeeded.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Success wraps parsed data in a successful Result.
func Success(data any) Result {
	return Result{Data: data}
}

// Failure builds a failed Result. An empty call still fails with a generic
// custom issue so callers never mistake it for a success.
func Failure(issues ...Issue) Result {
	if len(issues) == 0 {
		issues = Issues{{Code: CodeCustom, Message: "invalid value"}}
	}
	return Result{Issues: issues}
}

// Issue is a single validation failure.
type Issue struct {
	Code    string
	Message string
	// Params carries structured values such as {"min": 5, "got": 0}.
	Params map[string]any
}

// Issues implements error so a failed parse can travel through error paths.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(iss)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", iss[i].Code, iss[i].Message)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Last returns the final issue, matching how form errors collapse a failed
// parse down to a single message.
func (iss Issues) Last() (Issue, bool) {
	if len(iss) == 0 {
		return Issue{}, false
	}
	return iss[len(iss)-1], true
}

// Func adapts a plain function into a Rule.
type Func func(ctx context.Context, value any) Result

// SafeParse calls f.
func (f Func) SafeParse(ctx context.Context, value any) Result {
	if f == nil {
		return Success(value)
	}
	return f(ctx, value)
}

// Refine runs base and then pred on the parsed data. A false predicate fails
// with a custom issue carrying message.
func Refine(base Rule, pred func(data any) bool, message string) Rule {
	return refined{base: base, pred: pred, message: message}
}

type refined struct {
	base    Rule
	pred    func(any) bool
	message string
}

func (r refined) SafeParse(ctx context.Context, value any) Result {
	res := r.base.SafeParse(ctx, value)
	if !res.OK() {
		return res
	}
	if r.pred != nil && !r.pred(res.Data) {
		return Failure(Issue{Code: CodeCustom, Message: r.message})
	}
	return res
}

func (r refined) Type() string {
	if t, ok := r.base.(Typed); ok {
		return t.Type()
	}
	return ""
}

// TypeOf returns the declared type of r, or "" when r does not implement
// Typed.
func TypeOf(r Rule) string {
	if t, ok := r.(Typed); ok {
		return t.Type()
	}
	return ""
}

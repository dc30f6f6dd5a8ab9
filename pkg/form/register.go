package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// ChangeEvent is the subset of an input change event the form reads.
type ChangeEvent struct {
	// Type is the input type, e.g. "checkbox" or "text".
	Type    string
	Value   string
	Checked bool
}

// ElementValue returns Checked for checkbox events and Value otherwise.
func ElementValue(ev ChangeEvent) any {
	if ev.Type == string(schema.ControlCheckbox) {
		return ev.Checked
	}
	return ev.Value
}

// Binding holds what an input needs to display a field and report changes.
type Binding struct {
	Name     string
	Type     string
	Value    string
	Checked  bool
	OnChange func(ctx context.Context, ev ChangeEvent) error
}

// Register returns the binding for name built from its current external
// value.
func (f *Form) Register(name string) (Binding, error) {
	field, err := f.schema.Field(name)
	if err != nil {
		return Binding{}, fmt.Errorf("form: register: %w", err)
	}
	external, _ := f.values.External(name)
	control := field.ResolvedControl()

	b := Binding{
		Name:  name,
		Type:  string(control),
		Value: FormatValue(external),
	}
	if control == schema.ControlCheckbox {
		b.Checked = checked(field, external)
	}
	b.OnChange = func(ctx context.Context, ev ChangeEvent) error {
		if ev.Type == "" {
			ev.Type = string(control)
		}
		return f.SetExternalValue(ctx, name, ElementValue(ev))
	}
	return b, nil
}

// checked reads a checkbox state from an external value. Values set
// through a text path, such as "true", go through the field's display rule.
func checked(field schema.Field, external any) bool {
	if b, ok := external.(bool); ok {
		return b
	}
	if external == nil {
		return false
	}
	display := field.In
	if field.HasExternal() {
		display = field.Ex
	}
	if res := display.SafeParse(context.Background(), external); res.OK() {
		if b, ok := res.Data.(bool); ok {
			return b
		}
	}
	if s, ok := external.(string); ok {
		b, _ := strconv.ParseBool(strings.TrimSpace(s))
		return b
	}
	return false
}

// FormatValue renders an external value for an input's value attribute.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

package html

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
)

// HiddenField is a hidden input rendered alongside the schema fields. The
// HTTP binder ignores names the schema does not declare, so hidden fields
// never reach the form state.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden builds a HiddenField, formatting value like a field value.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: form.FormatValue(value)}
}

// CSRFToken carries an anti-forgery token under the backend's input name,
// e.g. "_csrf".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// VersionField carries a version for optimistic locking.
func VersionField(name string, version any) HiddenField {
	return Hidden(name, version)
}

// HiddenFields is a set of hidden inputs keyed by name.
type HiddenFields map[string]string

// With returns a copy of h with fields applied. Blank names are dropped and
// later fields win.
func (h HiddenFields) With(fields ...HiddenField) HiddenFields {
	out := make(HiddenFields, len(h)+len(fields))
	for name, value := range h {
		if key := strings.TrimSpace(name); key != "" {
			out[key] = value
		}
	}
	for _, f := range fields {
		if key := strings.TrimSpace(f.Name); key != "" {
			out[key] = f.Value
		}
	}
	return out
}

// Sorted returns the fields ordered by name.
func (h HiddenFields) Sorted() []HiddenField {
	clean := h.With()
	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: clean[name]})
	}
	return out
}

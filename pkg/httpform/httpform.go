// Package httpform feeds posted HTML form data into a form.Form.
package httpform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Bind sets the external value of every schema field present in data.
// Checkbox fields are set from presence, so an unchecked box that the
// browser leaves out of the post becomes false. Keys the schema does not
// declare are ignored.
func Bind(ctx context.Context, f *form.Form, data url.Values) error {
	s := f.Schema()
	for _, name := range s.Names() {
		field, _ := s.Field(name)
		var raw any
		switch {
		case field.IsCheckbox():
			raw = data.Has(name)
		case data.Has(name):
			raw = data.Get(name)
		default:
			continue
		}
		if err := f.SetExternalValue(ctx, name, raw); err != nil {
			return fmt.Errorf("httpform: bind %s: %w", name, err)
		}
	}
	return nil
}

// BindRequest parses r and binds its form body.
func BindRequest(r *http.Request, f *form.Form) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("httpform: parse form: %w", err)
	}
	return Bind(r.Context(), f, r.PostForm)
}

// Submit binds r and runs the form's submit handler. It reports whether the
// form was valid.
func Submit(r *http.Request, f *form.Form, onValid form.SubmitFunc) (bool, error) {
	if err := BindRequest(r, f); err != nil {
		return false, err
	}
	valid := f.IsValid()
	if err := f.Submit(r.Context(), onValid); err != nil {
		return valid, err
	}
	return valid, nil
}

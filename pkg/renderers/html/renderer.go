// Package html renders form bindings as an HTML form through the
// go-template engine in pkg/render/template/gotemplate.
package html

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	rendertemplate "github.com/goliatone/go-formstate/pkg/render/template"
	"github.com/goliatone/go-formstate/pkg/render/template/gotemplate"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	source    string
	fsys      fs.FS
	name      string
	idPrefix  string
	templates rendertemplate.TemplateRenderer
}

// WithTemplate compiles source instead of the embedded default template.
func WithTemplate(source string) Option {
	return func(c *config) {
		c.source = source
	}
}

// WithFS loads the template name from fsys.
func WithFS(fsys fs.FS, name string) Option {
	return func(c *config) {
		c.fsys = fsys
		c.name = strings.TrimSpace(name)
	}
}

// WithTemplateRenderer renders through an engine the caller configured.
// The template name, or the WithTemplate source, is handed to it as is.
func WithTemplateRenderer(r rendertemplate.TemplateRenderer) Option {
	return func(c *config) {
		if r != nil {
			c.templates = r
		}
	}
}

// WithIDPrefix prefixes element ids, for pages holding several forms.
func WithIDPrefix(prefix string) Option {
	return func(c *config) {
		c.idPrefix = strings.TrimSpace(prefix)
	}
}

// RenderOptions are per-request values.
type RenderOptions struct {
	Action      string
	Method      string
	SubmitLabel string
	Hidden      HiddenFields
	// ShowErrors renders field errors. Pages usually enable it after the
	// first submit.
	ShowErrors bool
}

// FieldView is the per-field template context.
type FieldView struct {
	ID        string
	Name      string
	Label     string
	Type      string
	Value     string
	Checked   bool
	Options   []string
	Error     string
	ErrorType string
}

// Renderer executes a form template.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	name      string
	source    string
	idPrefix  string
}

// New configures the template engine. Without WithTemplate or WithFS the
// embedded DefaultTemplateName is used. Templates are compiled here so
// syntax errors and missing files fail fast.
func New(opts ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.source == "" && cfg.fsys == nil && cfg.templates == nil {
		cfg.fsys, cfg.name = embeddedTemplates, DefaultTemplateName
	}
	if cfg.source == "" && cfg.name == "" {
		return nil, errors.New("html: template name required with WithFS")
	}

	r := &Renderer{templates: cfg.templates, name: cfg.name, source: cfg.source, idPrefix: cfg.idPrefix}
	if r.templates != nil {
		return r, nil
	}

	fsys := cfg.fsys
	if fsys == nil {
		fsys = embeddedTemplates
	}
	ext := path.Ext(cfg.name)
	if cfg.source == "" && ext == "" {
		return nil, fmt.Errorf("html: template %q needs a file extension", cfg.name)
	}
	engine, err := gotemplate.New(
		gotemplate.WithFS(fsys),
		gotemplate.WithExtension(ext),
	)
	if err != nil {
		return nil, fmt.Errorf("html: configure template renderer: %w", err)
	}
	if cfg.source != "" {
		err = engine.LoadString(cfg.source)
	} else {
		err = engine.Load(cfg.name)
	}
	if err != nil {
		return nil, fmt.Errorf("html: compile template: %w", err)
	}
	r.templates = engine
	return r, nil
}

// Fields builds the template view of every field of f, in schema order.
func (r *Renderer) Fields(f *form.Form, showErrors bool) ([]FieldView, error) {
	s := f.Schema()
	errs := f.Errors()
	views := make([]FieldView, 0, s.Len())
	for _, name := range s.Names() {
		b, err := f.Register(name)
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}
		field, _ := s.Field(name)
		view := FieldView{
			ID:      r.idPrefix + name,
			Name:    b.Name,
			Label:   field.Label,
			Type:    b.Type,
			Value:   b.Value,
			Checked: b.Checked,
			Options: field.Options,
		}
		if view.Label == "" {
			view.Label = name
		}
		if fe, ok := errs[name]; ok && showErrors {
			view.Error = fe.Message
			view.ErrorType = fe.Type
		}
		views = append(views, view)
	}
	return views, nil
}

// Render executes the template for f. The template context holds
// "fields" ([]FieldView), "hidden_fields" ([]HiddenField), "action",
// "method", "submit_label" and "valid".
func (r *Renderer) Render(f *form.Form, opts RenderOptions) (string, error) {
	fields, err := r.Fields(f, opts.ShowErrors)
	if err != nil {
		return "", err
	}
	method := strings.ToLower(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "post"
	}
	label := opts.SubmitLabel
	if label == "" {
		label = "Submit"
	}

	data := map[string]any{
		"fields":        fields,
		"hidden_fields": opts.Hidden.Sorted(),
		"action":        opts.Action,
		"method":        method,
		"submit_label":  label,
		"valid":         f.IsValid(),
	}
	var out string
	if r.source != "" {
		out, err = r.templates.RenderString(r.source, data)
	} else {
		out, err = r.templates.RenderTemplate(r.name, data)
	}
	if err != nil {
		return "", fmt.Errorf("html: render template: %w", err)
	}
	return out, nil
}

// Package server exposes a schema file as an HTML form over HTTP.
package server

import (
	"context"
	stdhtml "html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/internal/schemafile"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/httpform"
	"github.com/goliatone/go-formstate/pkg/renderers/html"
)

// Options configures the handler.
type Options struct {
	Title       string
	MetricsPath string
	Logger      zerolog.Logger
	// Registry receives the form metrics and backs the metrics endpoint.
	// A nil Registry disables both.
	Registry *prometheus.Registry
	// OnSubmit receives the values of every valid submission.
	OnSubmit form.SubmitFunc
}

type handler struct {
	holder   *schemafile.Holder
	renderer *html.Renderer
	metrics  *form.Metrics
	opts     Options
}

// New returns the router: GET / renders the form, POST / binds and submits
// it, GET /schema lists the fields.
func New(holder *schemafile.Holder, opts Options) (http.Handler, error) {
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	h := &handler{holder: holder, renderer: renderer, opts: opts}
	if opts.Registry != nil {
		h.metrics = form.NewMetrics(opts.Registry)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/", h.showForm)
	r.Post("/", h.submitForm)
	r.Get("/schema", h.describeSchema)
	if opts.Registry != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	return r, nil
}

func (h *handler) newForm(r *http.Request) (*form.Form, error) {
	opts := []form.Option{form.WithLogger(h.opts.Logger)}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		opts = append(opts, form.WithID(reqID))
	}
	if h.metrics != nil {
		opts = append(opts, form.WithMetrics(h.metrics))
	}
	return h.holder.NewForm(opts...)
}

func (h *handler) showForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.newForm(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, f, http.StatusOK, false)
}

func (h *handler) submitForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.newForm(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var submitted map[string]any
	valid, err := httpform.Submit(r, f, func(ctx context.Context, values map[string]any) error {
		submitted = values
		if h.opts.OnSubmit != nil {
			return h.opts.OnSubmit(ctx, values)
		}
		return nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	if !valid {
		h.render(w, f, http.StatusUnprocessableEntity, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"values": submitted})
}

type fieldInfo struct {
	Name    string   `json:"name"`
	Label   string   `json:"label,omitempty"`
	Control string   `json:"control"`
	Kind    string   `json:"kind"`
	Options []string `json:"options,omitempty"`
}

func (h *handler) describeSchema(w http.ResponseWriter, _ *http.Request) {
	snap := h.holder.Get()
	fields := make([]fieldInfo, 0, snap.Schema.Len())
	for _, name := range snap.Schema.Names() {
		field, _ := snap.Schema.Field(name)
		fields = append(fields, fieldInfo{
			Name:    name,
			Label:   field.Label,
			Control: string(field.ResolvedControl()),
			Kind:    field.Kind().String(),
			Options: field.Options,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fields":    fields,
		"defaults":  snap.Defaults,
		"loaded_at": snap.LoadedAt.UTC().Format(time.RFC3339),
	})
}

func (h *handler) render(w http.ResponseWriter, f *form.Form, status int, showErrors bool) {
	body, err := h.renderer.Render(f, html.RenderOptions{
		Action:     "/",
		Hidden:     html.HiddenFields{}.With(html.Hidden("form_id", f.ID())),
		ShowErrors: showErrors,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	title := h.opts.Title
	if title == "" {
		title = "Form"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page(title, body)))
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	h.opts.Logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.opts.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func page(title, body string) string {
	return "<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>" +
		stdhtml.EscapeString(title) + "</title></head><body>\n" + body + "</body></html>\n"
}

package form

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/store"
)

// Option configures a Form.
type Option func(*config)

type config struct {
	id       string
	defaults map[string]any
	backend  store.Store
	logger   zerolog.Logger
	metrics  *Metrics
}

// WithDefaultValues seeds the form. Fields left out start uninitialized.
func WithDefaultValues(defaults map[string]any) Option {
	return func(c *config) {
		c.defaults = defaults
	}
}

// WithStore keeps the form state in backend instead of a private local
// store. The form's keys are namespaced by its ID, so one shared store can
// hold several forms.
func WithStore(backend store.Store) Option {
	return func(c *config) {
		c.backend = backend
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics records updates and submits on m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithID overrides the generated form ID.
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}

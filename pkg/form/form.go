// Package form is the public surface of a form instance: reading and writing
// field values, building input bindings, and gating submission on validity.
package form

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/store"
	"github.com/goliatone/go-formstate/pkg/validate"
	"github.com/goliatone/go-formstate/pkg/values"
)

// Form binds a schema to its value store.
type Form struct {
	id      string
	schema  schema.Schema
	values  *values.Store
	logger  zerolog.Logger
	metrics *Metrics
	submits atomic.Int64
}

// Change describes one committed update.
type Change struct {
	Fields []string
	Valid  bool
}

// New builds a form for s. Default values naming undeclared fields are
// rejected with schema.ErrUnknownField.
func New(s schema.Schema, opts ...Option) (*Form, error) {
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	backend := store.Store(store.NewLocal())
	if cfg.backend != nil {
		backend = store.Namespace(cfg.backend, cfg.id)
	}

	vs, err := values.New(context.Background(), s, backend, cfg.defaults)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}

	f := &Form{
		id:      cfg.id,
		schema:  s,
		values:  vs,
		logger:  cfg.logger.With().Str("form", cfg.id).Logger(),
		metrics: cfg.metrics,
	}
	f.logger.Debug().
		Int("fields", s.Len()).
		Int("defaults", len(cfg.defaults)).
		Msg("form created")
	return f, nil
}

// ID returns the form instance ID.
func (f *Form) ID() string {
	return f.id
}

// Schema returns the form schema.
func (f *Form) Schema() schema.Schema {
	return f.schema
}

// Value returns the internal value of name. nil means the field has no
// value yet.
func (f *Form) Value(name string) (any, error) {
	v, err := f.values.Internal(name)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return v, nil
}

// Values returns a snapshot of every internal value.
func (f *Form) Values() map[string]any {
	return f.values.Internals()
}

// ExternalValue returns the display value of name.
func (f *Form) ExternalValue(name string) (any, error) {
	v, err := f.values.External(name)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return v, nil
}

// ExternalValues returns a snapshot of every display value.
func (f *Form) ExternalValues() map[string]any {
	return f.values.Externals()
}

// State returns whether name has received a value.
func (f *Form) State(name string) (values.FieldState, error) {
	st, err := f.values.State(name)
	if err != nil {
		return st, fmt.Errorf("form: %w", err)
	}
	return st, nil
}

// SetValue sets the internal value of name. A value the field's rule
// rejects leaves the internal value unchanged and is not an error.
func (f *Form) SetValue(ctx context.Context, name string, v any) error {
	accepted, err := f.values.SetInternal(ctx, name, v)
	f.recordUpdate("internal", name, accepted, err)
	if err != nil {
		return fmt.Errorf("form: set value: %w", err)
	}
	return nil
}

// Setter returns SetValue curried on name.
func (f *Form) Setter(name string) func(ctx context.Context, v any) error {
	return func(ctx context.Context, v any) error {
		return f.SetValue(ctx, name, v)
	}
}

// SetExternalValue sets the display value of name and derives the internal
// value from it when it converts and validates.
func (f *Form) SetExternalValue(ctx context.Context, name string, raw any) error {
	accepted, err := f.values.SetExternal(ctx, name, raw)
	f.recordUpdate("external", name, accepted, err)
	if err != nil {
		return fmt.Errorf("form: set external value: %w", err)
	}
	return nil
}

// Errors returns the current field errors.
func (f *Form) Errors() validate.Errors {
	return f.values.Errors()
}

// IsValid reports whether no field has an error.
func (f *Form) IsValid() bool {
	return validate.IsValid(f.values.Errors())
}

// Subscribe calls fn after every committed update.
func (f *Form) Subscribe(fn func(Change)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	return f.values.Subscribe(func(names []string) {
		fn(Change{Fields: names, Valid: f.IsValid()})
	})
}

func (f *Form) recordUpdate(kind, name string, accepted bool, err error) {
	result := "accepted"
	switch {
	case err != nil:
		result = "error"
		f.logger.Error().Err(err).Str("field", name).Str("kind", kind).Msg("update failed")
	case !accepted:
		result = "rejected"
		f.logger.Debug().Str("field", name).Str("kind", kind).Msg("value rejected, internal value kept")
	default:
		f.logger.Debug().Str("field", name).Str("kind", kind).Msg("value updated")
	}
	f.metrics.update(kind, result)
}

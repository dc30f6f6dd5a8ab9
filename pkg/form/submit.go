package form

import (
	"context"
	"fmt"
)

// Event is implemented by submit events whose default action can be
// cancelled.
type Event interface {
	PreventDefault()
}

// SubmitEvent is a minimal Event for callers without a native one.
type SubmitEvent struct {
	prevented bool
}

// PreventDefault marks the event.
func (e *SubmitEvent) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *SubmitEvent) DefaultPrevented() bool {
	return e.prevented
}

// SubmitFunc receives the internal values of a valid form.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// SubmitHandler handles one submit event. ev may be nil.
type SubmitHandler func(ctx context.Context, ev Event) error

// HandleSubmit returns a handler that prevents the event's default action
// and calls onValid with the internal values only when the form is valid.
// An invalid form is not an error. Concurrent submits are not serialized.
func (f *Form) HandleSubmit(onValid SubmitFunc) SubmitHandler {
	return func(ctx context.Context, ev Event) error {
		if ev != nil {
			ev.PreventDefault()
		}
		attempt := f.submits.Add(1)
		snap := f.values.Snapshot()
		log := f.logger.With().Int64("attempt", attempt).Logger()

		if len(snap.Errors) > 0 {
			log.Debug().Strs("invalid", snap.Errors.Names()).Msg("submit blocked")
			f.metrics.submit("invalid")
			return nil
		}
		if onValid == nil {
			f.metrics.submit("ok")
			return nil
		}
		if err := onValid(ctx, snap.Internals); err != nil {
			log.Error().Err(err).Msg("submit failed")
			f.metrics.submit("error")
			return fmt.Errorf("form: submit: %w", err)
		}
		log.Info().Msg("form submitted")
		f.metrics.submit("ok")
		return nil
	}
}

// Submit runs HandleSubmit without an event.
func (f *Form) Submit(ctx context.Context, onValid SubmitFunc) error {
	return f.HandleSubmit(onValid)(ctx, nil)
}

// Package tui drives a form.Form from a terminal: one prompt per field,
// re-prompting while the field is invalid, then a gated submit whose values
// are serialized for the caller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Session prompts for form fields through a PromptDriver.
type Session struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	order             []string
	logger            zerolog.Logger
}

// New constructs a session with defaults (survey driver, JSON output, three
// attempts per field).
func New(options ...Option) (*Session, error) {
	s := &Session{
		outputFormat: OutputFormatJSON,
		maxAttempts:  3,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// ContentType reports the serialization format used by Run.
func (s *Session) ContentType() string {
	switch s.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts every field of f, submits it and returns the serialized
// internal values. onValid, when set, runs as part of the submit.
func (s *Session) Run(ctx context.Context, f *form.Form, onValid form.SubmitFunc) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, name := range s.fieldOrder(f.Schema()) {
		if err := s.promptField(ctx, f, name); err != nil {
			return nil, err
		}
	}

	var submitted map[string]any
	err := f.Submit(ctx, func(ctx context.Context, values map[string]any) error {
		submitted = values
		if onValid != nil {
			return onValid(ctx, values)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if submitted == nil {
		return nil, fmt.Errorf("%w: invalid fields %s", ErrNotSubmitted, strings.Join(f.Errors().Names(), ", "))
	}

	if s.submitTransformer != nil {
		submitted, err = s.submitTransformer(submitted)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return s.serialize(submitted)
}

func (s *Session) fieldOrder(sc schema.Schema) []string {
	seen := make(map[string]struct{}, sc.Len())
	out := make([]string, 0, sc.Len())
	for _, name := range s.order {
		if _, dup := seen[name]; dup || !sc.Has(name) {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, name := range sc.Names() {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (s *Session) promptField(ctx context.Context, f *form.Form, name string) error {
	field, err := f.Schema().Field(name)
	if err != nil {
		return err
	}
	label := field.Label
	if label == "" {
		label = name
	}

	for attempt := 1; ; attempt++ {
		b, err := f.Register(name)
		if err != nil {
			return err
		}
		ev, ok, err := s.ask(ctx, field, label, b)
		if err != nil {
			return err
		}
		if ok {
			if err := b.OnChange(ctx, ev); err != nil {
				return err
			}
			fe, invalid := f.Errors()[name]
			if !invalid {
				return nil
			}
			_ = s.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", s.theme.ErrorPrefix, label, fe.Message))
		}

		s.logger.Debug().Str("field", name).Int("attempt", attempt).Msg("field still invalid")
		if s.maxAttempts > 0 && attempt >= s.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, name)
		}
	}
}

// ask shows the prompt matching the field's control. ok is false when the
// answer could not be mapped to a change, e.g. an out of range selection.
func (s *Session) ask(ctx context.Context, field schema.Field, label string, b form.Binding) (form.ChangeEvent, bool, error) {
	ev := form.ChangeEvent{Type: b.Type}
	switch schema.Control(b.Type) {
	case schema.ControlCheckbox:
		v, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: b.Checked})
		if err != nil {
			return ev, false, err
		}
		ev.Checked = v
	case schema.ControlSelect:
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, b.Value),
		})
		if err != nil {
			return ev, false, err
		}
		if idx < 0 || idx >= len(field.Options) {
			_ = s.driver.Info(ctx, fmt.Sprintf("%sInvalid %s selection", s.theme.ErrorPrefix, label))
			return ev, false, nil
		}
		ev.Value = field.Options[idx]
	case schema.ControlPassword:
		v, err := s.driver.Password(ctx, InputConfig{Message: label, Default: b.Value})
		if err != nil {
			return ev, false, err
		}
		ev.Value = v
	case schema.ControlTextArea:
		v, err := s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: b.Value})
		if err != nil {
			return ev, false, err
		}
		ev.Value = v
	default:
		v, err := s.driver.Input(ctx, InputConfig{Message: label, Default: b.Value})
		if err != nil {
			return ev, false, err
		}
		ev.Value = v
	}
	return ev, true, nil
}

func (s *Session) serialize(values map[string]any) ([]byte, error) {
	switch s.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func encodeForm(values map[string]any) string {
	out := url.Values{}
	for name, v := range values {
		if v == nil {
			continue
		}
		out.Set(name, form.FormatValue(v))
	}
	return out.Encode()
}

func prettyPrint(values map[string]any) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s\n", name, form.FormatValue(values[name]))
	}
	return b.String()
}

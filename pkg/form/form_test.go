package form_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/rule"
	"github.com/goliatone/go-formstate/pkg/rule/goskema"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/store"
	"github.com/goliatone/go-formstate/pkg/validate"
)

func substrates() map[string]func() []form.Option {
	return map[string]func() []form.Option{
		"local":  func() []form.Option { return nil },
		"shared": func() []form.Option { return []form.Option{form.WithStore(store.NewShared())} },
	}
}

func newForm(t *testing.T, s schema.Schema, defaults map[string]any, opts ...form.Option) *form.Form {
	t.Helper()
	opts = append(opts, form.WithDefaultValues(defaults))
	f, err := form.New(s, opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}

func millimeters() schema.Field {
	return schema.External(
		goskema.Number().Min(5, "length must be greater than 5"),
		goskema.Number(),
		func(mm float64) float64 { return mm / 1000 },
		func(m float64) float64 { return m * 1000 },
	)
}

func TestScenarioA_InvalidDefaultReportsError(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{
				"width": schema.Internal(goskema.Number().Min(5, "length must be greater than 5")),
			})
			f := newForm(t, s, map[string]any{"width": 0}, opts()...)

			want := validate.Errors{"width": {Message: "length must be greater than 5", Type: rule.CodeTooSmall}}
			if diff := cmp.Diff(want, f.Errors()); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
			if f.IsValid() {
				t.Fatalf("form should be invalid")
			}
		})
	}
}

func TestScenarioB_ExternalConversion(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{"width": millimeters()})
			f := newForm(t, s, map[string]any{"width": 1000}, opts()...)

			b, err := f.Register("width")
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if b.Value != "1" {
				t.Fatalf("displayed value = %q, want %q", b.Value, "1")
			}

			if err := b.OnChange(context.Background(), form.ChangeEvent{Type: "text", Value: "2"}); err != nil {
				t.Fatalf("on change: %v", err)
			}
			if got, _ := f.Value("width"); got != 2000.0 {
				t.Fatalf("internal = %v, want 2000", got)
			}
		})
	}
}

func TestScenarioC_CheckboxToggle(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{"hasItem": schema.Internal(goskema.Boolean())})
			f := newForm(t, s, map[string]any{"hasItem": true}, opts()...)

			b, err := f.Register("hasItem")
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if !b.Checked || b.Type != "checkbox" {
				t.Fatalf("binding = %+v, want checked checkbox", b)
			}
			if err := b.OnChange(context.Background(), form.ChangeEvent{Checked: false}); err != nil {
				t.Fatalf("on change: %v", err)
			}
			if got, _ := f.Value("hasItem"); got != false {
				t.Fatalf("internal = %v, want false", got)
			}
			if got, _ := f.ExternalValue("hasItem"); got != false {
				t.Fatalf("external = %v, want false", got)
			}
		})
	}
}

func TestCheckboxSetFromText(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{"agree": schema.Internal(goskema.Boolean())})
			f := newForm(t, s, nil, opts()...)
			ctx := context.Background()

			props, err := form.Controller{Name: "agree", Control: f.Control()}.Field()
			if err != nil {
				t.Fatalf("field: %v", err)
			}
			if err := props.OnChange(ctx, "true"); err != nil {
				t.Fatalf("on change: %v", err)
			}
			if got, _ := f.Value("agree"); got != true || !f.IsValid() {
				t.Fatalf("internal = %v valid = %v, want true and valid", got, f.IsValid())
			}
			b, err := f.Register("agree")
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if !b.Checked {
				t.Fatalf("binding = %+v, want checked", b)
			}

			if err := props.OnChange(ctx, " false "); err != nil {
				t.Fatalf("on change: %v", err)
			}
			if b, _ := f.Register("agree"); b.Checked {
				t.Fatalf("binding = %+v, want unchecked", b)
			}
		})
	}
}

func TestBind_RejectsValuesThatOverflow(t *testing.T) {
	s := schema.MustNew(map[string]schema.Field{"count": schema.Internal(goskema.Integer())})
	f := newForm(t, s, map[string]any{"count": 300})

	small, err := form.Bind[int8](f, "count")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if v, ok := small.Get(); ok {
		t.Fatalf("Get() = %v, want no value for an int8 overflow", v)
	}
	wide, _ := form.Bind[int16](f, "count")
	if v, ok := wide.Get(); !ok || v != 300 {
		t.Fatalf("Get() = %v, %v; want 300", v, ok)
	}
}

func TestScenarioD_UnsetValueIsNull(t *testing.T) {
	s := schema.MustNew(map[string]schema.Field{"width": schema.Internal(goskema.Number())})
	f := newForm(t, s, nil)

	if got, err := f.Value("width"); err != nil || got != nil {
		t.Fatalf("value = %v, %v; want nil", got, err)
	}
	width, err := form.Bind[float64](f, "width")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, ok := width.Get(); ok {
		t.Fatalf("unset field must report no value")
	}
	if err := width.Set(context.Background(), 3); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := width.Get(); !ok || v != 3 {
		t.Fatalf("get = %v, %v", v, ok)
	}
	if diff := cmp.Diff(map[string]any{"width": 3.0}, f.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidDirectSetIsNoop(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{
				"count": schema.Internal(goskema.Number().Min(5)),
			})
			f := newForm(t, s, map[string]any{"count": 8}, opts()...)

			setCount := f.Setter("count")
			if err := setCount(context.Background(), 0); err != nil {
				t.Fatalf("setter: %v", err)
			}
			if got, _ := f.Value("count"); got != 8.0 {
				t.Fatalf("value = %v, want 8", got)
			}
		})
	}
}

func TestErrorsReflectExternal(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{"width": millimeters()})
			f := newForm(t, s, map[string]any{"width": 6000}, opts()...)
			if !f.IsValid() {
				t.Fatalf("expected valid form, got %v", f.Errors())
			}

			if err := f.SetExternalValue(context.Background(), "width", "0.001"); err != nil {
				t.Fatalf("set external: %v", err)
			}
			if !f.Errors().Has("width") || f.IsValid() {
				t.Fatalf("expected an error for width")
			}
		})
	}
}

func TestHandleSubmit_Gating(t *testing.T) {
	for name, opts := range substrates() {
		t.Run(name, func(t *testing.T) {
			s := schema.MustNew(map[string]schema.Field{
				"count": schema.Internal(goskema.Number().Min(5)),
				"note":  schema.Internal(goskema.String()),
			})
			f := newForm(t, s, map[string]any{"count": 1}, opts()...)

			var calls []map[string]any
			submit := f.HandleSubmit(func(_ context.Context, v map[string]any) error {
				calls = append(calls, v)
				return nil
			})

			ev := &form.SubmitEvent{}
			if err := submit(context.Background(), ev); err != nil {
				t.Fatalf("submit: %v", err)
			}
			if !ev.DefaultPrevented() {
				t.Fatalf("submit must prevent the default action")
			}
			if len(calls) != 0 {
				t.Fatalf("onValid must not run while invalid")
			}

			if err := f.SetValue(context.Background(), "count", 6); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := submit(context.Background(), nil); err != nil {
				t.Fatalf("submit: %v", err)
			}
			want := []map[string]any{{"count": 6.0, "note": nil}}
			if diff := cmp.Diff(want, calls); diff != "" {
				t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleSubmit_PropagatesError(t *testing.T) {
	s := schema.MustNew(map[string]schema.Field{"note": schema.Internal(goskema.String())})
	f := newForm(t, s, nil)
	boom := errors.New("boom")
	err := f.Submit(context.Background(), func(context.Context, map[string]any) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestUnknownFieldsFailFast(t *testing.T) {
	s := schema.MustNew(map[string]schema.Field{"note": schema.Internal(goskema.String())})
	if _, err := form.New(s, form.WithDefaultValues(map[string]any{"ghost": 1})); !errors.Is(err, schema.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	f := newForm(t, s, nil)
	ctx := context.Background()
	checks := map[string]error{}
	_, checks["value"] = f.Value("ghost")
	checks["set"] = f.SetValue(ctx, "ghost", 1)
	checks["set external"] = f.SetExternalValue(ctx, "ghost", "1")
	_, checks["register"] = f.Register("ghost")
	_, checks["bind"] = form.Bind[string](f, "ghost")
	_, checks["controller"] = form.Controller{Name: "ghost", Control: f.Control()}.Field()
	for op, err := range checks {
		if !errors.Is(err, schema.ErrUnknownField) {
			t.Fatalf("%s: expected ErrUnknownField, got %v", op, err)
		}
	}
}

func TestController(t *testing.T) {
	s := schema.MustNew(map[string]schema.Field{"width": millimeters()})
	f := newForm(t, s, map[string]any{"width": 5000})

	ctrl := form.Controller{Name: "width", Control: f.Control()}
	var seen any
	err := ctrl.Render(func(p form.FieldProps) error {
		seen = p.Value
		return p.OnChange(context.Background(), 7.0)
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if seen != 5.0 {
		t.Fatalf("props value = %v, want 5", seen)
	}
	if got, _ := f.Value("width"); got != 7000.0 {
		t.Fatalf("internal = %v, want 7000", got)
	}
}

func TestSubscribe(t *testing.T) {
	s := schema.MustNew(map[string]schema.Field{"count": schema.Internal(goskema.Number().Min(5))})
	f := newForm(t, s, nil, form.WithStore(store.NewShared()))

	var changes []form.Change
	cancel := f.Subscribe(func(c form.Change) { changes = append(changes, c) })
	_ = f.SetExternalValue(context.Background(), "count", "2")
	_ = f.SetExternalValue(context.Background(), "count", "9")
	cancel()
	_ = f.SetExternalValue(context.Background(), "count", "1")

	want := []form.Change{
		{Fields: []string{"count"}, Valid: false},
		{Fields: []string{"count"}, Valid: true},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestSharedStoreIsolatesForms(t *testing.T) {
	shared := store.NewShared()
	s := schema.MustNew(map[string]schema.Field{"note": schema.Internal(goskema.String())})
	a := newForm(t, s, map[string]any{"note": "a"}, form.WithStore(shared), form.WithID("a"))
	b := newForm(t, s, map[string]any{"note": "b"}, form.WithStore(shared), form.WithID("b"))

	if got, _ := a.Value("note"); got != "a" {
		t.Fatalf("a note = %v", got)
	}
	if got, _ := b.Value("note"); got != "b" {
		t.Fatalf("b note = %v", got)
	}
	if a.ID() != "a" {
		t.Fatalf("id = %q", a.ID())
	}
}

func TestMetricsAndLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := form.NewMetrics(reg)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	s := schema.MustNew(map[string]schema.Field{"count": schema.Internal(goskema.Number().Min(5))})
	f := newForm(t, s, nil, form.WithMetrics(metrics), form.WithLogger(logger), form.WithID("metrics"))
	ctx := context.Background()

	_ = f.SetValue(ctx, "count", 1)
	_ = f.SetValue(ctx, "count", 6)
	_ = f.Submit(ctx, nil)

	if got := testutil.ToFloat64(metrics.Updates.WithLabelValues("internal", "rejected")); got != 1 {
		t.Fatalf("rejected updates = %v", got)
	}
	if got := testutil.ToFloat64(metrics.Updates.WithLabelValues("internal", "accepted")); got != 1 {
		t.Fatalf("accepted updates = %v", got)
	}
	if got := testutil.ToFloat64(metrics.Submits.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok submits = %v", got)
	}
	if !strings.Contains(buf.String(), `"form":"metrics"`) {
		t.Fatalf("log lines should carry the form id: %s", buf.String())
	}
}

func TestElementValue(t *testing.T) {
	if got := form.ElementValue(form.ChangeEvent{Type: "checkbox", Checked: true, Value: "on"}); got != true {
		t.Fatalf("checkbox value = %v", got)
	}
	if got := form.ElementValue(form.ChangeEvent{Type: "text", Value: "hi"}); got != "hi" {
		t.Fatalf("text value = %v", got)
	}
}

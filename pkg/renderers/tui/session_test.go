package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/rule/goskema"
	"github.com/goliatone/go-formstate/pkg/schema"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	defaults     []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.defaults = append(s.defaults, cfg.Default)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newTestForm(t *testing.T, defaults map[string]any) *form.Form {
	t.Helper()
	s := schema.MustNew(map[string]schema.Field{
		"size":     {In: goskema.Number().Min(5, "must be at least 5"), Label: "Size"},
		"status":   {In: goskema.String().OneOf("draft", "published"), Options: []string{"draft", "published"}},
		"gift":     schema.Internal(goskema.Boolean()),
		"secret":   {In: goskema.String(), Control: schema.ControlPassword},
		"comments": {In: goskema.String(), Control: schema.ControlTextArea},
	})
	f, err := form.New(s, form.WithDefaultValues(defaults))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}

func TestRun_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"1", "12"},
		selectIdx: []int{1},
		confirm:   []bool{true},
		passwords: []string{"hunter2"},
		textAreas: []string{"hi"},
	}
	s, err := New(WithPromptDriver(driver), WithFieldOrder("size"))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	f := newTestForm(t, map[string]any{"size": 0})

	out, err := s.Run(context.Background(), f, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := `{"comments":"hi","gift":true,"secret":"hunter2","size":12,"status":"published"}`
	if string(out) != want {
		t.Fatalf("output = %s, want %s", out, want)
	}
	if diff := cmp.Diff([]string{"Invalid Size: must be at least 5"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	// The first prompt shows the default, the retry shows the rejected text.
	if diff := cmp.Diff([]string{"0", "1"}, driver.defaults); diff != "" {
		t.Fatalf("prompt defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_TooManyAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"1", "2"}}
	s, _ := New(WithPromptDriver(driver), WithMaxAttempts(2), WithFieldOrder("size"))

	_, err := s.Run(context.Background(), newTestForm(t, nil), nil)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRun_OutputFormats(t *testing.T) {
	cases := map[OutputFormat]string{
		OutputFormatFormURLEncoded: "comments=&gift=false&secret=&size=6&status=draft",
		OutputFormatPrettyText:     "comments=\ngift=false\nsecret=\nsize=6\nstatus=draft\n",
	}
	for format, want := range cases {
		t.Run(string(format), func(t *testing.T) {
			driver := &stubDriver{
				inputs:    []string{"6"},
				selectIdx: []int{0},
				confirm:   []bool{false},
				passwords: []string{""},
				textAreas: []string{""},
			}
			s, _ := New(WithPromptDriver(driver), WithOutputFormat(format))
			out, err := s.Run(context.Background(), newTestForm(t, nil), nil)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if string(out) != want {
				t.Fatalf("output = %q, want %q", out, want)
			}
		})
	}
}

func TestRun_SubmitTransformerAndOnValid(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"7"},
		selectIdx: []int{0},
		confirm:   []bool{true},
		passwords: []string{"x"},
		textAreas: []string{"y"},
	}
	var seen map[string]any
	s, _ := New(
		WithPromptDriver(driver),
		WithSubmitTransformer(func(v map[string]any) (map[string]any, error) {
			return map[string]any{"size": v["size"]}, nil
		}),
	)
	out, err := s.Run(context.Background(), newTestForm(t, nil), func(_ context.Context, v map[string]any) error {
		seen = v
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(out) != `{"size":7}` {
		t.Fatalf("output = %s", out)
	}
	if seen["gift"] != true {
		t.Fatalf("onValid should see untransformed values, got %v", seen)
	}
}

func TestRun_DriverErrorStops(t *testing.T) {
	s, _ := New(WithPromptDriver(&stubDriver{}))
	if _, err := s.Run(context.Background(), newTestForm(t, nil), nil); err == nil {
		t.Fatalf("expected driver error")
	}
	if s.ContentType() != "application/json" {
		t.Fatalf("content type = %q", s.ContentType())
	}
}

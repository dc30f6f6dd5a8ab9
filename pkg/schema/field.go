package schema

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/rule"
)

// Kind distinguishes descriptors with and without an external side.
type Kind int

const (
	// KindInternalOnly fields display their internal value as is.
	KindInternalOnly Kind = iota
	// KindWithExternal fields carry their own external rule and converters.
	KindWithExternal
)

func (k Kind) String() string {
	if k == KindWithExternal {
		return "with_external"
	}
	return "internal_only"
}

// Control hints the input kind adapters should render.
type Control string

const (
	ControlAuto     Control = ""
	ControlText     Control = "text"
	ControlCheckbox Control = "checkbox"
	ControlPassword Control = "password"
	ControlTextArea Control = "textarea"
	ControlSelect   Control = "select"
)

// Converter maps a value from one side of a field to the other.
type Converter func(ctx context.Context, value any) (any, error)

// Field is the descriptor for a single form field.
//
// A field is WithExternal when Ex, InternalToExternal and ExternalToInternal
// are all set. ExternalToInternal alone overrides the identity conversion of
// an internal-only field.
type Field struct {
	In                 rule.Rule
	Ex                 rule.Rule
	InternalToExternal Converter
	ExternalToInternal Converter

	// Presentation hints. They never affect validation.
	Label   string
	Control Control
	Options []string
}

// Kind reports the descriptor variant.
func (f Field) Kind() Kind {
	if f.Ex != nil && f.InternalToExternal != nil && f.ExternalToInternal != nil {
		return KindWithExternal
	}
	return KindInternalOnly
}

// HasExternal reports whether the field is KindWithExternal.
func (f Field) HasExternal() bool {
	return f.Kind() == KindWithExternal
}

// IsCheckbox reports whether the field renders as a checkbox: either
// explicitly, or implicitly because its internal rule is boolean.
func (f Field) IsCheckbox() bool {
	if f.Control != ControlAuto {
		return f.Control == ControlCheckbox
	}
	return rule.TypeOf(f.In) == "boolean"
}

// ResolvedControl returns Control, inferring checkbox or select when unset.
func (f Field) ResolvedControl() Control {
	switch {
	case f.Control != ControlAuto:
		return f.Control
	case f.IsCheckbox():
		return ControlCheckbox
	case len(f.Options) > 0:
		return ControlSelect
	default:
		return ControlText
	}
}

func (f Field) check() error {
	if f.In == nil {
		return ErrMissingRule
	}
	if (f.Ex != nil || f.InternalToExternal != nil) && f.Kind() != KindWithExternal {
		return ErrPartialExternal
	}
	return nil
}

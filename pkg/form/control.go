package form

import "context"

// Control is the narrow view of a form handed to controlled components: the
// external side of each field.
type Control struct {
	form *Form
}

// Control returns the form's Control.
func (f *Form) Control() Control {
	return Control{form: f}
}

// External returns the display value of name.
func (c Control) External(name string) (any, error) {
	return c.form.ExternalValue(name)
}

// SetExternal sets the display value of name.
func (c Control) SetExternal(ctx context.Context, name string, raw any) error {
	return c.form.SetExternalValue(ctx, name, raw)
}

// FieldProps is what a controlled component receives.
type FieldProps struct {
	Name     string
	Value    any
	OnChange func(ctx context.Context, value any) error
}

// Controller connects one field of a Control to a component.
type Controller struct {
	Name    string
	Control Control
}

// Field returns the props for the controller's field.
func (c Controller) Field() (FieldProps, error) {
	v, err := c.Control.External(c.Name)
	if err != nil {
		return FieldProps{}, err
	}
	name := c.Name
	control := c.Control
	return FieldProps{
		Name:  name,
		Value: v,
		OnChange: func(ctx context.Context, value any) error {
			return control.SetExternal(ctx, name, value)
		},
	}, nil
}

// Render calls render with the current props.
func (c Controller) Render(render func(FieldProps) error) error {
	props, err := c.Field()
	if err != nil {
		return err
	}
	return render(props)
}

// Package values keeps the internal and external value of every form field
// in a store.Store and recomputes field errors in the same transaction as
// each write.
package values

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/convert"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/store"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// FieldState reports whether a field has received a value.
type FieldState int

const (
	StateUninitialized FieldState = iota
	StateSet
)

func (s FieldState) String() string {
	if s == StateSet {
		return "set"
	}
	return "uninitialized"
}

const (
	prefixInternal = "in:"
	prefixExternal = "ex:"
	prefixState    = "state:"
	keyErrors      = "errors"
)

// Store is the dual value store of one form.
type Store struct {
	schema  schema.Schema
	backend store.Store
}

// Snapshot is a consistent copy of the whole form state.
type Snapshot struct {
	Internals map[string]any
	Externals map[string]any
	States    map[string]FieldState
	Errors    validate.Errors
}

// New seeds backend with defaults. Defaults are parsed through each field's
// internal rule; a default the rule rejects is stored as given so its error
// is visible right away.
func New(ctx context.Context, s schema.Schema, backend store.Store, defaults map[string]any) (*Store, error) {
	if backend == nil {
		backend = store.NewLocal()
	}
	vs := &Store{schema: s, backend: backend}

	names := make([]string, 0, len(defaults))
	for name := range defaults {
		if !s.Has(name) {
			return nil, schema.UnknownField(name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	internals := make(map[string]any, len(names))
	for _, name := range names {
		field, _ := s.Field(name)
		internal := defaults[name]
		if res := field.In.SafeParse(ctx, internal); res.OK() {
			internal = res.Data
		}
		internals[name] = internal
	}

	err := backend.Transact(func(tx store.Tx) error {
		externals, err := convert.AllToExternal(ctx, s, internals)
		if err != nil {
			return fmt.Errorf("values: defaults: %w", err)
		}
		for _, name := range names {
			tx.Write(prefixInternal+name, store.Set(internals[name]))
			tx.Write(prefixExternal+name, store.Set(externals[name]))
			tx.Write(prefixState+name, store.Set(StateSet))
		}
		return vs.recompute(ctx, tx, names...)
	})
	if err != nil {
		return nil, err
	}
	return vs, nil
}

// Schema returns the schema the store was built from.
func (vs *Store) Schema() schema.Schema {
	return vs.schema
}

// Internal returns the internal value of name, nil when unset.
func (vs *Store) Internal(name string) (any, error) {
	if !vs.schema.Has(name) {
		return nil, schema.UnknownField(name)
	}
	v, _ := vs.backend.Read(prefixInternal + name)
	return v, nil
}

// External returns the external value of name, nil when unset.
func (vs *Store) External(name string) (any, error) {
	if !vs.schema.Has(name) {
		return nil, schema.UnknownField(name)
	}
	v, _ := vs.backend.Read(prefixExternal + name)
	return v, nil
}

// State returns the state of name.
func (vs *Store) State(name string) (FieldState, error) {
	if !vs.schema.Has(name) {
		return StateUninitialized, schema.UnknownField(name)
	}
	v, _ := vs.backend.Read(prefixState + name)
	st, _ := v.(FieldState)
	return st, nil
}

// Errors returns a copy of the current field errors.
func (vs *Store) Errors() validate.Errors {
	v, _ := vs.backend.Read(keyErrors)
	errs, _ := v.(validate.Errors)
	return errs.Clone()
}

// Internals returns every field's internal value, nil for unset fields.
func (vs *Store) Internals() map[string]any {
	return vs.Snapshot().Internals
}

// Externals returns every field's external value, nil for unset fields.
func (vs *Store) Externals() map[string]any {
	return vs.Snapshot().Externals
}

// Snapshot reads both sides, the states and the errors in one transaction.
func (vs *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Internals: make(map[string]any, vs.schema.Len()),
		Externals: make(map[string]any, vs.schema.Len()),
		States:    make(map[string]FieldState, vs.schema.Len()),
	}
	_ = vs.backend.Transact(func(tx store.Tx) error {
		for _, name := range vs.schema.Names() {
			snap.Internals[name], _ = tx.Read(prefixInternal + name)
			snap.Externals[name], _ = tx.Read(prefixExternal + name)
			st, _ := tx.Read(prefixState + name)
			snap.States[name], _ = st.(FieldState)
		}
		errs, _ := tx.Read(keyErrors)
		e, _ := errs.(validate.Errors)
		snap.Errors = e.Clone()
		return nil
	})
	return snap
}

// SetInternal validates v with the field's internal rule. On success the
// parsed value and its external form are committed together and true is
// returned. On failure the internal value is left untouched and false is
// returned with a nil error; the external side shows v when it converts.
func (vs *Store) SetInternal(ctx context.Context, name string, v any) (bool, error) {
	field, err := vs.schema.Field(name)
	if err != nil {
		return false, err
	}
	res := field.In.SafeParse(ctx, v)

	accepted := false
	err = vs.backend.Transact(func(tx store.Tx) error {
		if res.OK() {
			external, err := convert.ToExternal(ctx, vs.schema, name, res.Data)
			if err != nil {
				return fmt.Errorf("values: set %q: %w", name, err)
			}
			tx.Write(prefixInternal+name, store.Set(res.Data))
			tx.Write(prefixExternal+name, store.Set(external))
			accepted = true
		} else if external, err := convert.ToExternal(ctx, vs.schema, name, v); err == nil {
			tx.Write(prefixExternal+name, store.Set(external))
		}
		tx.Write(prefixState+name, store.Set(StateSet))
		return vs.recompute(ctx, tx, name)
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// SetExternal stores raw as the external value, then tries to derive and
// commit a valid internal value from it. It reports whether the internal
// value changed. Conversion and validation failures keep the last valid
// internal value and are reported through Errors, not the returned error.
func (vs *Store) SetExternal(ctx context.Context, name string, raw any) (bool, error) {
	field, err := vs.schema.Field(name)
	if err != nil {
		return false, err
	}

	accepted := false
	err = vs.backend.Transact(func(tx store.Tx) error {
		tx.Write(prefixExternal+name, store.Set(raw))
		tx.Write(prefixState+name, store.Set(StateSet))
		if candidate, err := convert.ToInternal(ctx, vs.schema, name, raw); err == nil {
			if res := field.In.SafeParse(ctx, candidate); res.OK() {
				tx.Write(prefixInternal+name, store.Set(res.Data))
				accepted = true
			}
		}
		return vs.recompute(ctx, tx, name)
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// Subscribe calls fn with the field names touched by each committed write.
func (vs *Store) Subscribe(fn func(names []string)) (cancel func()) {
	return vs.backend.Subscribe(func(keys []string) {
		seen := map[string]struct{}{}
		var names []string
		for _, k := range keys {
			name, ok := fieldOf(k)
			if !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
		if len(names) > 0 {
			sort.Strings(names)
			fn(names)
		}
	})
}

// recompute refreshes the errors of names from their external values.
// Fields without an external value carry no error.
func (vs *Store) recompute(ctx context.Context, tx store.Tx, names ...string) error {
	prev, _ := tx.Read(keyErrors)
	current, _ := prev.(validate.Errors)
	next := current.Clone()
	for _, name := range names {
		external, ok := tx.Read(prefixExternal + name)
		if !ok {
			delete(next, name)
			continue
		}
		fe, valid, err := validate.Field(ctx, vs.schema, name, external)
		if err != nil {
			return err
		}
		if valid {
			delete(next, name)
		} else {
			next[name] = fe
		}
	}
	tx.Write(keyErrors, store.Set(next))
	return nil
}

func fieldOf(key string) (string, bool) {
	for _, prefix := range []string{prefixInternal, prefixExternal, prefixState} {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			return name, true
		}
	}
	return "", false
}

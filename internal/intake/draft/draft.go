// Package draft holds the in-progress, not-yet-submitted application state:
// field values, field-scoped error messages, and per-field touched flags.
package draft

import (
	"ensemble/internal/intake/schema"
	dErrors "ensemble/pkg/domain-errors"
)

// Draft is mutated on every keystroke-equivalent update and destroyed on
// successful submission or explicit reset. It is not safe for concurrent use;
// the owning session serializes access.
type Draft struct {
	sch     *schema.Schema
	values  map[string]string
	errors  dErrors.Fields
	touched map[string]bool
}

// New creates an empty draft for the given schema, every field initialized to
// the empty string.
func New(sch *schema.Schema) *Draft {
	d := &Draft{sch: sch}
	d.clear()
	return d
}

func (d *Draft) clear() {
	d.values = make(map[string]string, len(d.sch.Fields()))
	for _, f := range d.sch.Fields() {
		d.values[f.Name] = ""
	}
	d.errors = dErrors.Fields{}
	d.touched = make(map[string]bool)
}

// Set stores a field value and recomputes visibility. Fields hidden by the
// new snapshot are cleared to the empty string immediately, together with
// their errors and touched flags, so the draft is always internally
// consistent rather than being scrubbed lazily at submission time.
func (d *Draft) Set(name, value string) error {
	if !d.sch.Has(name) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown field %q", name)
	}
	d.values[name] = value
	d.touched[name] = true
	delete(d.errors, name)

	for _, hidden := range d.sch.HiddenFields(d.values) {
		if d.values[hidden] != "" || d.touched[hidden] {
			d.values[hidden] = ""
			delete(d.touched, hidden)
			delete(d.errors, hidden)
		}
	}
	return nil
}

// Value returns the stored value for a field.
func (d *Draft) Value(name string) string { return d.values[name] }

// Values returns a copy of the value snapshot.
func (d *Draft) Values() map[string]string {
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

// Visibility derives the current field states from the value snapshot.
func (d *Draft) Visibility() map[string]schema.State {
	return d.sch.Visibility(d.values)
}

// Touched reports whether the field has been set since creation or reset.
func (d *Draft) Touched(name string) bool { return d.touched[name] }

// Errors returns a copy of the current field error map.
func (d *Draft) Errors() dErrors.Fields {
	out := make(dErrors.Fields, len(d.errors))
	for k, v := range d.errors {
		msgs := make([]string, len(v))
		copy(msgs, v)
		out[k] = msgs
	}
	return out
}

// SetErrors merges field errors into the draft, replacing any existing
// messages per field. Used both for local validation failures and for
// server-reported field errors mapped back onto the form.
func (d *Draft) SetErrors(fields dErrors.Fields) {
	for name, msgs := range fields {
		copied := make([]string, len(msgs))
		copy(copied, msgs)
		d.errors[name] = copied
	}
}

// ClearErrors removes the error messages for the given fields.
func (d *Draft) ClearErrors(names ...string) {
	for _, name := range names {
		delete(d.errors, name)
	}
}

// HasErrors reports whether any field currently carries an error.
func (d *Draft) HasErrors() bool { return len(d.errors) > 0 }

// Reset clears the draft back to defaults.
func (d *Draft) Reset() { d.clear() }

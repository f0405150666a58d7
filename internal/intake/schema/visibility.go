package schema

// visibilityRule gates one dependent field on the value of a controlling
// field. While the predicate is false the field is hidden and its required
// flag cleared; the draft clears the stored value the moment the field
// becomes hidden so a stale hidden answer can never be submitted.
type visibilityRule struct {
	field      string
	controller string
	showWhen   func(controllerValue string) bool
}

// ShownWhen builds a visibility rule for field, shown while the predicate
// holds for the controller's current value.
func ShownWhen(field, controller string, predicate func(string) bool) visibilityRule {
	return visibilityRule{field: field, controller: controller, showWhen: predicate}
}

// Visibility derives the current state of every field from a value snapshot.
// It is a pure projection: no side effects, identical input yields identical
// output, so callers can recompute it on every change.
func (s *Schema) Visibility(values map[string]string) map[string]State {
	states := make(map[string]State, len(s.fields))
	for _, f := range s.fields {
		states[f.Name] = State{Visible: true, Required: !f.Optional}
	}
	for _, r := range s.rules {
		if !r.showWhen(values[r.controller]) {
			states[r.field] = State{Visible: false, Required: false}
		}
	}
	return states
}

// HiddenFields returns the names of fields hidden under the given snapshot,
// in declaration order. The draft uses this to clear values synchronously
// with the controlling field's change.
func (s *Schema) HiddenFields(values map[string]string) []string {
	vis := s.Visibility(values)
	var hidden []string
	for _, f := range s.fields {
		if !vis[f.Name].Visible {
			hidden = append(hidden, f.Name)
		}
	}
	return hidden
}

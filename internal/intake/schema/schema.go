// Package schema defines the membership application form: its fields, the
// partition of fields into wizard steps, per-field validation rules, and the
// conditional visibility rules that gate dependent fields.
//
// The schema is static configuration. All runtime state lives in the draft.
package schema

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "ensemble/pkg/domain-errors"
)

// Field describes a single form field.
//
// Rule is a go-playground/validator tag evaluated against the field's string
// value while the field is visible. Hidden fields are never validated.
type Field struct {
	Name     string
	Label    string
	Step     int
	Rule     string
	Options  []string
	Optional bool
}

// State captures whether a field is currently shown and enforced, derived
// from the draft values. Hidden implies not required.
type State struct {
	Visible  bool
	Required bool
}

// Schema is the full application form definition.
type Schema struct {
	fields   []Field
	byName   map[string]Field
	steps    [][]string
	rules    []visibilityRule
	validate *validator.Validate
}

// New builds a Schema and enforces the step partition invariant: step indexes
// are contiguous from 1, and every field belongs to exactly one step.
func New(fields []Field, rules []visibilityRule) (*Schema, error) {
	if len(fields) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "schema has no fields")
	}

	maxStep := 0
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "schema field without a name")
		}
		if _, dup := byName[f.Name]; dup {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "field %q appears twice", f.Name)
		}
		if f.Step < 1 {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "field %q has step %d; steps start at 1", f.Name, f.Step)
		}
		if f.Step > maxStep {
			maxStep = f.Step
		}
		byName[f.Name] = f
	}

	steps := make([][]string, maxStep+1)
	for _, f := range fields {
		steps[f.Step] = append(steps[f.Step], f.Name)
	}
	for step := 1; step <= maxStep; step++ {
		if len(steps[step]) == 0 {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "step %d has no fields", step)
		}
	}

	for _, r := range rules {
		if _, ok := byName[r.field]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "visibility rule targets unknown field %q", r.field)
		}
		if _, ok := byName[r.controller]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "visibility rule depends on unknown field %q", r.controller)
		}
	}

	return &Schema{
		fields:   fields,
		byName:   byName,
		steps:    steps,
		rules:    rules,
		validate: validator.New(),
	}, nil
}

// TotalSteps returns the number of wizard steps.
func (s *Schema) TotalSteps() int { return len(s.steps) - 1 }

// StepFields returns the names of the fields bound to the given step, or nil
// for an out-of-range step.
func (s *Schema) StepFields(step int) []string {
	if step < 1 || step >= len(s.steps) {
		return nil
	}
	out := make([]string, len(s.steps[step]))
	copy(out, s.steps[step])
	return out
}

// Fields returns all field definitions in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether the schema defines the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// ValidateStep checks exactly the given step's field set against the current
// values, honoring visibility: hidden fields pass unconditionally. Fields on
// other steps are never consulted, so an error there cannot block this step.
func (s *Schema) ValidateStep(step int, values map[string]string) dErrors.Fields {
	vis := s.Visibility(values)
	fieldErrs := dErrors.Fields{}
	for _, name := range s.steps[clampStep(step, s.TotalSteps())] {
		if msgs := s.validateField(name, values[name], vis); len(msgs) > 0 {
			fieldErrs[name] = msgs
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

// ValidateAll checks every field in the schema against the current values,
// honoring visibility. Submission uses it so a value edited after its step
// was passed cannot slip through unchecked.
func (s *Schema) ValidateAll(values map[string]string) dErrors.Fields {
	vis := s.Visibility(values)
	fieldErrs := dErrors.Fields{}
	for _, f := range s.fields {
		if msgs := s.validateField(f.Name, values[f.Name], vis); len(msgs) > 0 {
			fieldErrs[f.Name] = msgs
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

func (s *Schema) validateField(name, value string, vis map[string]State) []string {
	state := vis[name]
	if !state.Visible {
		return nil
	}
	f := s.byName[name]
	if value == "" {
		if state.Required {
			return []string{"is required"}
		}
		return nil
	}
	if f.Rule == "" {
		return nil
	}
	if err := s.validate.Var(value, f.Rule); err != nil {
		return messagesFor(f, err)
	}
	return nil
}

func clampStep(step, total int) int {
	if step < 1 {
		return 1
	}
	if step > total {
		return total
	}
	return step
}

// messagesFor turns validator errors into the short human-readable messages
// rendered beneath the offending control.
func messagesFor(f Field, err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"is invalid"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		switch ve.Tag() {
		case "required":
			msgs = append(msgs, "is required")
		case "email":
			msgs = append(msgs, "must be a valid email")
		case "numeric":
			msgs = append(msgs, "must contain only digits")
		case "alphanum":
			msgs = append(msgs, "must contain only letters and digits")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("must be one of: %s", strings.ReplaceAll(ve.Param(), " ", ", ")))
		case "min":
			msgs = append(msgs, fmt.Sprintf("must be at least %s characters", ve.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("must be at most %s characters", ve.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("must be exactly %s characters", ve.Param()))
		default:
			msgs = append(msgs, "is invalid")
		}
	}
	return msgs
}

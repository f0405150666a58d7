// Package wizard owns step navigation over a draft: the current step index,
// the field set bound to each step, and forward-navigation gating through
// step-scoped validation.
package wizard

import (
	"ensemble/internal/intake/draft"
	"ensemble/internal/intake/schema"
	dErrors "ensemble/pkg/domain-errors"
)

// Wizard drives a single applicant through the multi-step form. Steps are
// 1-based; the wizard starts on step 1 and is terminal once the final step's
// submission is accepted (the owning session resets it afterwards).
//
// Not safe for concurrent use; the owning session serializes access.
type Wizard struct {
	sch     *schema.Schema
	d       *draft.Draft
	current int
}

// New creates a wizard on step 1 with a fresh draft.
func New(sch *schema.Schema) *Wizard {
	return &Wizard{sch: sch, d: draft.New(sch), current: 1}
}

// CurrentStep returns the 1-based current step.
func (w *Wizard) CurrentStep() int { return w.current }

// TotalSteps returns the number of steps in the schema.
func (w *Wizard) TotalSteps() int { return w.sch.TotalSteps() }

// OnFinalStep reports whether the wizard sits on the last step.
func (w *Wizard) OnFinalStep() bool { return w.current == w.sch.TotalSteps() }

// Draft exposes the underlying draft.
func (w *Wizard) Draft() *draft.Draft { return w.d }

// Set stores a field value on the draft.
func (w *Wizard) Set(name, value string) error { return w.d.Set(name, value) }

// Next validates exactly the current step's field set and advances on
// success. Fields on later steps are never validated, so an applicant cannot
// be blocked by an error on a step they have not reached. A failed Next never
// returns an error value for validation problems; it reports them through the
// draft's field error channel and leaves the step unchanged.
func (w *Wizard) Next() bool {
	fieldErrs := w.ValidateCurrent()
	if len(fieldErrs) > 0 {
		w.d.SetErrors(fieldErrs)
		return false
	}
	w.d.ClearErrors(w.sch.StepFields(w.current)...)
	if w.current < w.sch.TotalSteps() {
		w.current++
		return true
	}
	return false
}

// Previous moves back one step. It never re-validates and never clears data
// already entered on earlier steps.
func (w *Wizard) Previous() bool {
	if w.current == 1 {
		return false
	}
	w.current--
	return true
}

// FirstStep returns to step 1 without clearing the draft.
func (w *Wizard) FirstStep() { w.current = 1 }

// Reset clears the entire draft to defaults and returns to step 1.
func (w *Wizard) Reset() {
	w.d.Reset()
	w.current = 1
}

// ValidateCurrent runs step-scoped validation for the current step and
// returns the field errors without mutating the draft.
func (w *Wizard) ValidateCurrent() dErrors.Fields {
	return w.sch.ValidateStep(w.current, w.d.Values())
}

// ValidateAll validates every visible field across all steps without
// mutating the draft. Fields can be rewritten after their step was passed,
// so submission must re-check the whole form, not just the final step.
func (w *Wizard) ValidateAll() dErrors.Fields {
	return w.sch.ValidateAll(w.d.Values())
}

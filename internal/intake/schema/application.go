package schema

// Field names for the club membership application. Handlers and the review
// console reference these instead of repeating string literals.
const (
	FieldFullName          = "full_name"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldYearOfStudy       = "year_of_study"
	FieldLateralEntry      = "lateral_entry"
	FieldRegNum            = "reg_num"
	FieldDepartment        = "department"
	FieldInstrumentAvail   = "instrument_avail"
	FieldInstrumentDetails = "instrument_details"
	FieldExperienceYears   = "experience_years"
	FieldPreferredRole     = "preferred_role"
)

// Sentinel values for the controlling fields.
const (
	InstrumentAvailable = "yes"
	YearFirst           = "first"
)

// Application returns the three-step membership application schema.
//
// Step 1: who the applicant is. Step 2: academic record. Step 3: musical
// background. lateral_entry is only asked of non-first-year applicants;
// instrument_details only when the applicant owns an instrument.
func Application() *Schema {
	fields := []Field{
		{Name: FieldFullName, Label: "Full name", Step: 1, Rule: "min=2,max=100"},
		{Name: FieldEmail, Label: "Email", Step: 1, Rule: "email"},
		{Name: FieldPhone, Label: "Phone number", Step: 1, Rule: "len=10,numeric"},
		{Name: FieldYearOfStudy, Label: "Year of study", Step: 1,
			Rule:    "oneof=first second third fourth",
			Options: []string{"first", "second", "third", "fourth"}},
		{Name: FieldLateralEntry, Label: "Lateral entry", Step: 1,
			Rule:    "oneof=yes no",
			Options: []string{"yes", "no"}},

		{Name: FieldRegNum, Label: "College registration number", Step: 2, Rule: "alphanum,min=5,max=20"},
		{Name: FieldDepartment, Label: "Department", Step: 2, Rule: "min=2,max=80"},

		{Name: FieldInstrumentAvail, Label: "Do you own an instrument?", Step: 3,
			Rule:    "oneof=yes no",
			Options: []string{"yes", "no"}},
		{Name: FieldInstrumentDetails, Label: "Instrument details", Step: 3, Rule: "min=2,max=120"},
		{Name: FieldExperienceYears, Label: "Years of experience", Step: 3,
			Rule: "numeric,max=2", Optional: true},
		{Name: FieldPreferredRole, Label: "Preferred role", Step: 3,
			Rule:    "oneof=vocalist instrumentalist producer crew",
			Options: []string{"vocalist", "instrumentalist", "producer", "crew"}},
	}

	rules := []visibilityRule{
		ShownWhen(FieldInstrumentDetails, FieldInstrumentAvail, func(v string) bool {
			return v == InstrumentAvailable
		}),
		ShownWhen(FieldLateralEntry, FieldYearOfStudy, func(v string) bool {
			return v != "" && v != YearFirst
		}),
	}

	s, err := New(fields, rules)
	if err != nil {
		// The application schema is static; a partition violation here is a
		// programming error, not runtime input.
		panic(err)
	}
	return s
}

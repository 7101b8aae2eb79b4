package student

import "github.com/studsight/studsight/core/wizard"

// RegistrationFormTarget identifies the registration form to the
// wizard's submitter.
const RegistrationFormTarget = "student-registration"

// RegistrationDefinition describes the multi-step student registration
// form driven by the wizard controller.
func RegistrationDefinition() wizard.Definition {
	return wizard.Definition{
		Name:       "Student registration",
		FormTarget: RegistrationFormTarget,
		Steps: []wizard.StepDef{
			{
				Title: "Personal details",
				Fields: []wizard.FieldDef{
					{Name: "first_name", Label: "First name", Kind: wizard.TextInput, Required: true},
					{Name: "surname", Label: "Surname", Kind: wizard.TextInput, Required: true},
					{Name: "dob", Label: "Date of birth", Kind: wizard.DateInput, Required: true,
						Description: "Year 12: 16-18 years old, Year 13: 17-19"},
					{Name: "gender", Label: "Gender", Kind: wizard.RadioGroup, Required: true, Options: []string{"M", "F"}},
					{Name: "year_group", Label: "Year group", Kind: wizard.RadioGroup, Required: true, Options: []string{"12", "13"}},
					{Name: "mastery", Label: "Mastery group", Kind: wizard.TextInput, Required: true},
					{Name: "email", Label: "Email", Kind: wizard.EmailInput, Required: true},
				},
			},
			{
				Title:       "Subjects",
				Description: "Pick four distinct subjects.",
				Fields: []wizard.FieldDef{
					{Name: "subject1", Label: "First subject", Kind: wizard.Select, Required: true, Options: Subjects},
					{Name: "subject2", Label: "Second subject", Kind: wizard.Select, Required: true, Options: Subjects},
					{Name: "subject3", Label: "Third subject", Kind: wizard.Select, Required: true, Options: Subjects},
					{Name: "subject4", Label: "Fourth subject", Kind: wizard.Select, Required: true, Options: Subjects},
				},
			},
			{
				Title: "Guardian & contact",
				Fields: []wizard.FieldDef{
					{Name: "guardian_name", Label: "Guardian name", Kind: wizard.TextInput, Required: true},
					{Name: "guardian_phone", Label: "Guardian phone", Kind: wizard.TelInput, Required: true},
					{Name: "address", Label: "Address", Kind: wizard.TextArea},
					{Name: "nationality", Label: "Nationality", Kind: wizard.TextInput},
					{Name: "country_of_birth", Label: "Country of birth", Kind: wizard.TextInput},
					{Name: "enrolled_at", Label: "Enrollment date", Kind: wizard.DateInput},
				},
			},
			{
				Title: "Medical",
				Fields: []wizard.FieldDef{
					{Name: "conditions", Label: "Conditions", Kind: wizard.TextArea},
					{Name: "medication", Label: "Medication", Kind: wizard.TextArea},
					{Name: "allergies", Label: "Allergies", Kind: wizard.TextArea},
					{Name: "needs", Label: "Additional needs", Kind: wizard.TextArea},
				},
			},
		},
	}
}

// RegistrationFromValues converts collected wizard values into a
// NewStudent ready for validation.
func RegistrationFromValues(values wizard.Values) NewStudent {
	yearGroup := 0
	switch values["year_group"] {
	case "12":
		yearGroup = 12
	case "13":
		yearGroup = 13
	}
	return NewStudent{
		FirstName: values["first_name"],
		Surname:   values["surname"],
		DOB:       values["dob"],
		Gender:    values["gender"],
		YearGroup: yearGroup,
		Mastery:   values["mastery"],
		Email:     values["email"],
		Subjects: []string{
			values["subject1"], values["subject2"], values["subject3"], values["subject4"],
		},
		GuardianName:   values["guardian_name"],
		GuardianPhone:  values["guardian_phone"],
		Address:        values["address"],
		Nationality:    values["nationality"],
		CountryOfBirth: values["country_of_birth"],
		EnrolledAt:     values["enrolled_at"],
		Conditions:     values["conditions"],
		Medication:     values["medication"],
		Allergies:      values["allergies"],
		Needs:          values["needs"],
	}
}

package teacher

import "github.com/studsight/studsight/core/wizard"

// RegistrationFormTarget identifies the add-teacher form to the
// wizard's submitter.
const RegistrationFormTarget = "teacher-registration"

// RegistrationDefinition describes the two-step add-teacher form.
func RegistrationDefinition() wizard.Definition {
	subjects := []string{"Mathematics", "English", "Science", "Computing", "History"}
	return wizard.Definition{
		Name:       "Teacher registration",
		FormTarget: RegistrationFormTarget,
		Steps: []wizard.StepDef{
			{
				Title: "Profile",
				Fields: []wizard.FieldDef{
					{Name: "first_name", Label: "First name", Kind: wizard.TextInput, Required: true},
					{Name: "surname", Label: "Surname", Kind: wizard.TextInput, Required: true},
					{Name: "email", Label: "Email", Kind: wizard.EmailInput, Required: true},
					{Name: "subject", Label: "Department", Kind: wizard.Select, Options: subjects},
					{Name: "role", Label: "Role", Kind: wizard.RadioGroup, Options: AllRoles},
				},
			},
			{
				Title: "Credentials",
				Fields: []wizard.FieldDef{
					{Name: "password", Label: "Password", Kind: wizard.TextInput, Required: true,
						Description: "At least 8 characters"},
					{Name: "password_confirm", Label: "Confirm password", Kind: wizard.TextInput, Required: true},
				},
			},
		},
	}
}

// RegistrationFromValues converts collected wizard values into a
// NewTeacher ready for validation.
func RegistrationFromValues(values wizard.Values) NewTeacher {
	return NewTeacher{
		FirstName:       values["first_name"],
		Surname:         values["surname"],
		Email:           values["email"],
		Subject:         values["subject"],
		Role:            values["role"],
		Password:        values["password"],
		PasswordConfirm: values["password_confirm"],
	}
}

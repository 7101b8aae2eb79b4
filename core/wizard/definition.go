package wizard

// FieldKind is the input kind of a field descriptor.
type FieldKind string

const (
	TextInput   FieldKind = "text"
	EmailInput  FieldKind = "email"
	TelInput    FieldKind = "tel"
	DateInput   FieldKind = "date"
	NumberInput FieldKind = "number"
	TextArea    FieldKind = "textarea"
	Select      FieldKind = "select"
	RadioGroup  FieldKind = "radio"
)

type (
	// FieldDef describes a single form field.
	FieldDef struct {
		// Name is the key under which the value is submitted. Must be
		// unique within the form.
		Name string `json:"name"`
		// Label as it appears on the rendered form.
		Label string `json:"label"`
		Kind  FieldKind `json:"kind"`
		// Whether the field must hold a value for its step to validate.
		Required bool `json:"required"`
		// Options lists the permissible choices for Select and
		// RadioGroup fields.
		Options []string `json:"options,omitempty"`
		// An optional hint displayed under the field (input constraints
		// such as the accepted age range).
		Description string `json:"description,omitempty"`
	}

	// StepDef describes one page of a multi-step form.
	StepDef struct {
		Title       string     `json:"title"`
		Description string     `json:"description,omitempty"`
		Fields      []FieldDef `json:"fields"`
	}

	// Definition describes a whole registration form. Front ends render
	// it; FormState binds it to a Controller.
	Definition struct {
		Name       string    `json:"name"`
		FormTarget string    `json:"form_target"`
		Steps      []StepDef `json:"steps"`
	}
)

// FieldNames returns the names of all fields across all steps, in order.
func (d Definition) FieldNames() []string {
	var names []string
	for _, step := range d.Steps {
		for _, fld := range step.Fields {
			names = append(names, fld.Name)
		}
	}
	return names
}

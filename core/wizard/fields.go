package wizard

import "strings"

// Values holds the collected form input, keyed by field name. A radio
// group or select stores the chosen option under the group's name.
type Values map[string]string

type valueField struct {
	def     FieldDef
	values  Values
	invalid bool
	focused bool
}

var (
	_ Field   = (*valueField)(nil)
	_ Focuser = (*valueField)(nil)
)

func (f *valueField) Name() string     { return f.def.Name }
func (f *valueField) Required() bool   { return f.def.Required }
func (f *valueField) Empty() bool      { return strings.TrimSpace(f.values[f.def.Name]) == "" }
func (f *valueField) SetInvalid(v bool) {
	f.invalid = v
	if !v {
		f.focused = false
	}
}
func (f *valueField) Focus() { f.focused = true }

type formStep struct {
	def     StepDef
	visible bool
	fields  []Field
}

var _ StepContainer = (*formStep)(nil)

func (s *formStep) Show()           { s.visible = true }
func (s *formStep) Hide()           { s.visible = false }
func (s *formStep) Fields() []Field { return s.fields }

type indicatorMark struct {
	active   bool
	finished bool
}

var _ IndicatorEntry = (*indicatorMark)(nil)

func (m *indicatorMark) SetActive(v bool)   { m.active = v }
func (m *indicatorMark) SetFinished(v bool) { m.finished = v }

type navButton struct {
	visible bool
	label   string
}

var _ NavControl = (*navButton)(nil)

func (b *navButton) Show()                { b.visible = true }
func (b *navButton) Hide()                { b.visible = false }
func (b *navButton) SetLabel(label string) { b.label = label }

// FormState binds a Definition to in-memory implementations of the
// controller's capability interfaces, so front ends without a rendering
// surface (the admin CLI, tests) can drive a wizard.
type FormState struct {
	def    Definition
	values Values
	steps  []*formStep
	marks  []*indicatorMark
	prev   *navButton
	next   *navButton
}

func NewFormState(def Definition) *FormState {
	fs := &FormState{
		def:    def,
		values: make(Values),
		prev:   new(navButton),
		next:   new(navButton),
	}
	for _, stepDef := range def.Steps {
		step := &formStep{def: stepDef}
		for _, fldDef := range stepDef.Fields {
			step.fields = append(step.fields, &valueField{def: fldDef, values: fs.values})
		}
		fs.steps = append(fs.steps, step)
		fs.marks = append(fs.marks, new(indicatorMark))
	}
	return fs
}

// Controller builds a wizard controller over this form's state. The
// definition's form target is carried into the options.
func (fs *FormState) Controller(form Submitter, opts Options) (*Controller, error) {
	steps := make([]StepContainer, len(fs.steps))
	for i, s := range fs.steps {
		steps[i] = s
	}
	marks := make([]IndicatorEntry, len(fs.marks))
	for i, m := range fs.marks {
		marks[i] = m
	}
	if opts.FormTarget == "" {
		opts.FormTarget = fs.def.FormTarget
	}
	return New(steps, marks, fs.prev, fs.next, form, opts)
}

func (fs *FormState) Definition() Definition { return fs.def }

// Set records a field value.
func (fs *FormState) Set(name, value string) { fs.values[name] = value }

// Value returns the recorded value for a field.
func (fs *FormState) Value(name string) string { return fs.values[name] }

// All returns a copy of all recorded values.
func (fs *FormState) All() Values {
	vals := make(Values, len(fs.values))
	for k, v := range fs.values {
		vals[k] = v
	}
	return vals
}

// VisibleStep returns the index of the visible step, or -1 when no step
// is visible (before Start or after submission).
func (fs *FormState) VisibleStep() int {
	idx := -1
	for i, s := range fs.steps {
		if s.visible {
			if idx >= 0 {
				return -1 // more than one visible: broken invariant
			}
			idx = i
		}
	}
	return idx
}

// InvalidFields returns the names of all fields currently marked invalid.
func (fs *FormState) InvalidFields() []string {
	var names []string
	for _, s := range fs.steps {
		for _, fld := range s.fields {
			if vf, ok := fld.(*valueField); ok && vf.invalid {
				names = append(names, vf.def.Name)
			}
		}
	}
	return names
}

// FocusedField returns the name of the focused field, if any.
func (fs *FormState) FocusedField() string {
	for _, s := range fs.steps {
		for _, fld := range s.fields {
			if vf, ok := fld.(*valueField); ok && vf.focused {
				return vf.def.Name
			}
		}
	}
	return ""
}

// Mark returns the active/finished flags of the indicator entry at i.
func (fs *FormState) Mark(i int) (active, finished bool) {
	return fs.marks[i].active, fs.marks[i].finished
}

// ActiveMark returns the index of the active indicator entry, or -1.
func (fs *FormState) ActiveMark() int {
	idx := -1
	for i, m := range fs.marks {
		if m.active {
			if idx >= 0 {
				return -1
			}
			idx = i
		}
	}
	return idx
}

// PrevVisible reports whether the "previous" control is shown.
func (fs *FormState) PrevVisible() bool { return fs.prev.visible }

// NextLabel returns the "next" control's current label.
func (fs *FormState) NextLabel() string { return fs.next.label }

// Package wizard implements the multi-step form controller used by the
// registration flows: a linear sequence of steps shown one at a time,
// with per-step validation gating forward navigation and a step
// indicator tracking progress.
package wizard

import "github.com/pkg/errors"

const (
	nextLabel   = "Next"
	submitLabel = "Submit"
)

type (
	// Field is one input inside a step. A radio group is a single Field:
	// Empty reports whether no member of the group is checked.
	Field interface {
		Name() string
		Required() bool
		Empty() bool
		SetInvalid(invalid bool)
	}

	// Focuser is optionally implemented by fields that can take focus;
	// the first invalid field of a failed step is focused.
	Focuser interface {
		Focus()
	}

	// StepContainer is one panel of the form.
	StepContainer interface {
		Show()
		Hide()
		Fields() []Field
	}

	// IndicatorEntry is one marker of the step indicator.
	IndicatorEntry interface {
		SetActive(active bool)
		SetFinished(finished bool)
	}

	// NavControl is a navigation affordance ("previous"/"next" button).
	NavControl interface {
		Show()
		Hide()
		SetLabel(label string)
	}

	// Submitter submits the enclosing form once the last step passes.
	Submitter interface {
		Submit(formTarget string)
	}
)

// Options parametrizes controller variants.
type Options struct {
	// FormTarget identifies the form handed to the Submitter.
	FormTarget string
	// ResetFinishedOnRevisit clears a step's finished mark when it is
	// displayed again; when false, finished marks are only ever added.
	ResetFinishedOnRevisit bool
}

// Controller owns the wizard state for one form instance.
// All methods must be called from a single goroutine; operations run
// synchronously in response to user interaction.
type Controller struct {
	steps   []StepContainer
	marks   []IndicatorEntry
	prev    NavControl
	next    NavControl
	form    Submitter
	opts    Options
	current int
	done    bool
}

func New(steps []StepContainer, marks []IndicatorEntry, prev, next NavControl, form Submitter, opts Options) (*Controller, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard: at least one step required")
	}
	if len(marks) != len(steps) {
		return nil, errors.Errorf("wizard: %d indicator entries for %d steps", len(marks), len(steps))
	}
	return &Controller{
		steps: steps,
		marks: marks,
		prev:  prev,
		next:  next,
		form:  form,
		opts:  opts,
	}, nil
}

// Start displays the first step.
func (c *Controller) Start() { c.Display(0) }

// Current returns the current step index.
func (c *Controller) Current() int { return c.current }

// Done reports whether the wizard has submitted.
func (c *Controller) Done() bool { return c.done }

// StepCount returns the number of steps.
func (c *Controller) StepCount() int { return len(c.steps) }

// Display shows the step at index i exclusively of the others and
// updates the navigation affordances and step indicator.
// i must be in [0, StepCount).
func (c *Controller) Display(i int) {
	for j, step := range c.steps {
		if j == i {
			step.Show()
		} else {
			step.Hide()
		}
	}
	c.current = i

	if i == 0 {
		c.prev.Hide()
	} else {
		c.prev.Show()
	}
	if i == len(c.steps)-1 {
		c.next.SetLabel(submitLabel)
	} else {
		c.next.SetLabel(nextLabel)
	}

	c.updateIndicator(i)
}

// Advance moves the wizard by delta (+1 or -1). Forward navigation is
// gated on the current step validating; backward navigation never is.
// It returns false when validation blocked the move, leaving all state
// unchanged. Advancing past the last step submits the form and ends the
// wizard.
func (c *Controller) Advance(delta int) bool {
	if delta > 0 && !c.Validate(c.current) {
		return false
	}

	c.steps[c.current].Hide()
	c.current += delta

	if c.current >= len(c.steps) {
		c.done = true
		if c.form != nil {
			c.form.Submit(c.opts.FormTarget)
		}
		return true
	}
	c.Display(c.current)
	return true
}

// Validate checks every field of the step at index i: previously
// invalid fields are reset, then required empty fields are marked
// invalid. On success the step's indicator entry is marked finished;
// on failure the first invalid field is focused when it supports it.
func (c *Controller) Validate(i int) bool {
	valid := true
	var firstInvalid Field
	for _, fld := range c.steps[i].Fields() {
		fld.SetInvalid(false)
		if fld.Required() && fld.Empty() {
			fld.SetInvalid(true)
			if firstInvalid == nil {
				firstInvalid = fld
			}
			valid = false
		}
	}

	if valid {
		c.marks[i].SetFinished(true)
		return true
	}
	if f, ok := firstInvalid.(Focuser); ok {
		f.Focus()
	}
	return false
}

func (c *Controller) updateIndicator(i int) {
	for _, mark := range c.marks {
		mark.SetActive(false)
	}
	c.marks[i].SetActive(true)
	if c.opts.ResetFinishedOnRevisit {
		c.marks[i].SetFinished(false)
	}
}

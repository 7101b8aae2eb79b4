package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/wizard"
)

// enroll registers a student interactively, driving the same wizard
// definition the web client renders.
func (cli *commandLine) enroll() error {
	form := wizard.NewFormState(student.RegistrationDefinition())
	sub := &registrationSubmitter{cli: cli, form: form}

	ctrl, err := form.Controller(sub, wizard.Options{})
	if err != nil {
		return err
	}
	ctrl.Start()

	scanner := bufio.NewScanner(cli.in)
	def := form.Definition()

	for !ctrl.Done() {
		step := def.Steps[ctrl.Current()]
		fmt.Fprintf(cli.out, "\n-- %s (step %d of %d) --\n", step.Title, ctrl.Current()+1, ctrl.StepCount())
		if step.Description != "" {
			fmt.Fprintln(cli.out, step.Description)
		}

		for _, fld := range step.Fields {
			fmt.Fprint(cli.out, fieldPrompt(fld))
			if !scanner.Scan() {
				return scanner.Err()
			}
			if value := strings.TrimSpace(scanner.Text()); value != "" {
				form.Set(fld.Name, value)
			}
		}

		if !ctrl.Advance(1) {
			fmt.Fprintf(cli.out, "missing required fields: %s\n", strings.Join(form.InvalidFields(), ", "))
		}
	}
	if sub.err != nil {
		return sub.err
	}

	fmt.Fprintf(cli.out, "enrolled %s (ID %d)\n", sub.created.Name(), sub.created.ID)
	return nil
}

func fieldPrompt(fld wizard.FieldDef) string {
	var b strings.Builder
	b.WriteString(fld.Label)
	if len(fld.Options) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(fld.Options, "/"))
	}
	if fld.Required {
		b.WriteString(" *")
	}
	b.WriteString(": ")
	return b.String()
}

// registrationSubmitter turns the collected wizard values into a
// registered student when the last step passes.
type registrationSubmitter struct {
	cli     *commandLine
	form    *wizard.FormState
	created student.Student
	err     error
}

func (sub *registrationSubmitter) Submit(formTarget string) {
	if formTarget != student.RegistrationFormTarget {
		sub.err = fmt.Errorf("unexpected form target %q", formTarget)
		return
	}

	ns := student.RegistrationFromValues(sub.form.All())
	if sub.err = ns.Validate(sub.cli.stdSvc); sub.err != nil {
		return
	}
	sub.created, sub.err = sub.cli.stdSvc.Register(ns)
}

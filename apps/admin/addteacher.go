package main

import (
	"strings"
	"time"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/teacher"
)

// addTeacher updates or creates a teacher.Teacher
func (cli *commandLine) addTeacher(firstName, surname, email, subject, mastery, pwd string, isAdmin bool) error {
	email = core.CleanString(email, true /* lower */)

	tchr, err := cli.tchrRepo.GetTeacherByEmail(email)
	if err != nil {
		if err != teacher.ErrNotFound {
			return err
		}
		tchr = teacher.Teacher{
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	tchr.FirstName = core.TitleString(firstName)
	tchr.Surname = core.TitleString(surname)
	tchr.Subject = core.TitleString(subject)
	tchr.Mastery = strings.ToUpper(core.CleanString(mastery))
	tchr.Role = teacher.RoleTeacher
	if isAdmin {
		tchr.Role = teacher.RoleAdmin
	}
	tchr.UpdatedAt = time.Now().UTC()
	if err := tchr.SetPassword(pwd); err != nil {
		return err
	}

	isActive := true
	if tchr.ID == 0 {
		tchr.IsActive = true
		_, err = cli.tchrRepo.CreateTeacher(tchr)
		return err
	}
	_, err = cli.tchrRepo.UpdateTeacher(tchr, &isActive)
	return err
}

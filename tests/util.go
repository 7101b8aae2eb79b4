package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
)

func CreateTeacher(
	t *testing.T,
	repo teacher.Repository,
	firstName, surname, email, pwd, subject, mastery, role string,
	isActive bool,
) teacher.Teacher {
	t.Helper()

	tstamp := time.Now().UTC()
	tchr := teacher.Teacher{
		FirstName: firstName,
		Surname:   surname,
		Email:     email,
		Subject:   subject,
		Mastery:   mastery,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := tchr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTeacher() failed: %v", err)
		}
	}
	tchr, err := repo.CreateTeacher(tchr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	firstName, surname, email string,
	yearGroup int,
	mastery string,
	subjects []string,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	st := student.Student{
		FirstName: firstName,
		Surname:   surname,
		DOB:       DOBForAge(17),
		Gender:    "F",
		YearGroup: yearGroup,
		Mastery:   mastery,
		Email:     email,
		Subjects:  subjects,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	st, err := repo.CreateStudent(st)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if err = repo.SaveTimetable(st.ID, student.NewTimetable(st.Mastery)); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// DOBForAge returns a date of birth making the student exactly `age`
// years old today.
func DOBForAge(age int) time.Time {
	return time.Now().UTC().AddDate(-age, 0, 0)
}

// Diff renders a unified diff of two strings for failure messages.
func Diff(want, got string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return fmt.Sprintf("diff failed: %v", err)
	}
	return diff
}

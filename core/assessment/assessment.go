// Package assessment implements the assessment log: midpoint and
// endpoint scores recorded per student and subject, with a per-subject
// summary of the latest score of each type.
package assessment

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/student"
)

// Assessment types. Each subject is assessed twice mid-course and once
// at the end.
const (
	TypeMidpoint1 = "midpoint1"
	TypeMidpoint2 = "midpoint2"
	TypeEndpoint  = "endpoint"
)

var Types = []string{TypeMidpoint1, TypeMidpoint2, TypeEndpoint}

// maxPerType caps retakes of one assessment type per subject.
const maxPerType = 3

var (
	ErrSubjectNotTaken    = errors.New("student does not take this subject")
	ErrTooManyAssessments = errors.New("no more than 3 assessments of this type per subject")
)

type (
	// Assessment is one recorded score.
	Assessment struct {
		ID        int       `json:"id"`
		StudentID int       `json:"student_id"`
		Subject   string    `json:"subject"`
		Type      string    `json:"type"`
		Score     float64   `json:"score"`
		Date      time.Time `json:"date"` // date only, UTC
	}

	// NewAssessment contains information needed to log a score.
	NewAssessment struct {
		StudentID int     `json:"student_id" validate:"required"`
		Subject   string  `json:"subject" validate:"required,oneof=Mathematics English Science Computing History"`
		Type      string  `json:"type" validate:"required,oneof=midpoint1 midpoint2 endpoint"`
		Date      string  `json:"date" validate:"required"` // 2006-01-02
		Score     float64 `json:"score" validate:"gte=0"`
	}

	// Summary is the latest score of each type for one subject.
	Summary struct {
		Subject   string   `json:"subject"`
		Midpoint1 *float64 `json:"midpoint1"`
		Midpoint2 *float64 `json:"midpoint2"`
		Endpoint  *float64 `json:"endpoint"`
	}

	Repository interface {
		CreateAssessment(a Assessment) (Assessment, error)
		// QueryAssessmentsByStudent returns assessments newest first.
		QueryAssessmentsByStudent(studentID int) ([]Assessment, error)
		CountAssessments(studentID int, subject, typ string) (int, error)
	}

	Service struct {
		repo     Repository
		students *student.Service
	}
)

func NewService(repo Repository, students *student.Service) *Service {
	return &Service{repo: repo, students: students}
}

func (na *NewAssessment) Validate() error {
	if err := core.Validate.Struct(na); err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", na.Date)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date, expected YYYY-MM-DD"})
	}
	now := time.Now().UTC()
	if date.After(now) {
		return core.NewValidationError(
			errors.New("future assessment date"),
			core.FieldError{Field: "date", Error: "assessment date cannot be in the future"},
		)
	}
	if date.Before(now.AddDate(-2, 0, 0)) {
		return core.NewValidationError(
			errors.New("assessment date too old"),
			core.FieldError{Field: "date", Error: "assessment date cannot be more than two years past"},
		)
	}
	return nil
}

// Log records a score. The student must take the subject, and each
// (subject, type) pair holds at most three records.
func (svc *Service) Log(na NewAssessment) (Assessment, error) {
	st, err := svc.students.GetByID(na.StudentID)
	if err != nil {
		return Assessment{}, err
	}
	if !st.Takes(na.Subject) {
		return Assessment{}, core.NewValidationError(
			ErrSubjectNotTaken,
			core.FieldError{Field: "subject", Error: ErrSubjectNotTaken.Error()},
		)
	}

	count, err := svc.repo.CountAssessments(na.StudentID, na.Subject, na.Type)
	if err != nil {
		return Assessment{}, errors.Wrap(err, "counting assessments")
	}
	if count >= maxPerType {
		return Assessment{}, ErrTooManyAssessments
	}

	date, err := time.Parse("2006-01-02", na.Date)
	if err != nil {
		return Assessment{}, err
	}
	return svc.repo.CreateAssessment(Assessment{
		StudentID: na.StudentID,
		Subject:   na.Subject,
		Type:      na.Type,
		Score:     na.Score,
		Date:      date,
	})
}

// StudentAssessments returns a student's assessments, newest first.
func (svc *Service) StudentAssessments(studentID int) ([]Assessment, error) {
	if _, err := svc.students.GetByID(studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssessmentsByStudent(studentID)
}

// StudentSummary returns one Summary per subject the student takes,
// holding the most recent score of each assessment type.
func (svc *Service) StudentSummary(studentID int) ([]Summary, error) {
	st, err := svc.students.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	as, err := svc.repo.QueryAssessmentsByStudent(studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}

	summaries := make([]Summary, len(st.Subjects))
	for i, subject := range st.Subjects {
		summaries[i] = Summary{Subject: subject}
		for _, a := range as {
			if a.Subject != subject {
				continue
			}
			score := a.Score
			switch a.Type {
			case TypeMidpoint1:
				if summaries[i].Midpoint1 == nil {
					summaries[i].Midpoint1 = &score
				}
			case TypeMidpoint2:
				if summaries[i].Midpoint2 == nil {
					summaries[i].Midpoint2 = &score
				}
			case TypeEndpoint:
				if summaries[i].Endpoint == nil {
					summaries[i].Endpoint = &score
				}
			}
		}
	}
	return summaries, nil
}

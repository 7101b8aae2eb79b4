package student

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/board"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excluded ...Student) error
		CreateStudent(st Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int) (Student, error)
		GetStudentByEmail(email string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(filter QueryFilter) ([]Student, error)
		UpdateStudent(st Student) (Student, error)
		DeleteStudentsByID(ids ...int) error

		GetTimetable(studentID int) ([]TimetableDay, error)
		SaveTimetable(studentID int, days []TimetableDay) error
	}

	Service struct {
		repo    Repository
		boards  *board.Service
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, boards *board.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		boards:  boards,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *Service) checkUniqueness(email string, excluded ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the student along with an empty five-day timetable.
// Periods 1 and 5 of every day hold the mastery group, the rest start free.
func (svc *Service) Register(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	dob, err := parseDate(ns.DOB)
	if err != nil {
		return Student{}, err
	}
	st := Student{
		FirstName: ns.FirstName,
		Surname:   ns.Surname,
		DOB:       dob,
		Gender:    ns.Gender,
		YearGroup: ns.YearGroup,
		Mastery:   ns.Mastery,
		Email:     ns.Email,
		Subjects:  ns.Subjects,
		Contact: Contact{
			GuardianName:   ns.GuardianName,
			GuardianPhone:  ns.GuardianPhone,
			Address:        ns.Address,
			Nationality:    ns.Nationality,
			CountryOfBirth: ns.CountryOfBirth,
		},
		Medical: Medical{
			Conditions: ns.Conditions,
			Medication: ns.Medication,
			Allergies:  ns.Allergies,
			Needs:      ns.Needs,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.EnrolledAt != "" {
		if st.Contact.EnrolledAt, err = parseDate(ns.EnrolledAt); err != nil {
			return Student{}, err
		}
	}

	st, err = svc.repo.CreateStudent(st)
	if err != nil {
		return Student{}, err
	}
	if err = svc.repo.SaveTimetable(st.ID, NewTimetable(st.Mastery)); err != nil {
		return Student{}, errors.Wrap(err, "initializing timetable")
	}
	return st, nil
}

// NewTimetable builds the initial five-day timetable: mastery on
// periods 1 and 5, everything else free.
func NewTimetable(mastery string) []TimetableDay {
	days := make([]TimetableDay, 5)
	for i := range days {
		days[i].Day = i + 1
		for p := range days[i].Periods {
			days[i].Periods[p] = FreePeriod
		}
		days[i].Periods[0] = mastery
		days[i].Periods[4] = mastery
	}
	return days
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id int) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) GetByEmail(email string) (Student, error) {
	return svc.repo.GetStudentByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(filter)
}

func (svc *Service) Update(id int, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}

	st := orig
	st.FirstName = us.FirstName
	st.Surname = us.Surname
	st.Email = us.Email
	st.YearGroup = us.YearGroup
	st.UpdatedAt = time.Now().UTC()
	if us.DOB != "" {
		if st.DOB, err = parseDate(us.DOB); err != nil {
			return Student{}, err
		}
	}
	if us.Gender != "" {
		st.Gender = us.Gender
	}
	if us.Mastery != "" {
		st.Mastery = strings.ToUpper(core.CleanString(us.Mastery))
	}
	if us.Subjects != nil {
		st.Subjects = us.Subjects
	}
	setIfPresent(&st.Contact.GuardianName, us.GuardianName)
	setIfPresent(&st.Contact.GuardianPhone, us.GuardianPhone)
	setIfPresent(&st.Contact.Address, us.Address)
	setIfPresent(&st.Contact.Nationality, us.Nationality)
	setIfPresent(&st.Contact.CountryOfBirth, us.CountryOfBirth)
	setIfPresent(&st.Medical.Conditions, us.Conditions)
	setIfPresent(&st.Medical.Medication, us.Medication)
	setIfPresent(&st.Medical.Allergies, us.Allergies)
	setIfPresent(&st.Medical.Needs, us.Needs)

	return svc.repo.UpdateStudent(st)
}

func setIfPresent(dst *string, val string) {
	if val = core.CleanString(val); val != "" {
		*dst = val
	}
}

// Delete removes the given students. Deletion is a two-request flow at
// the API level; this is the confirmed second step.
func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteStudentsByID(ids...)
}

func (svc *Service) Timetable(studentID int) ([]TimetableDay, error) {
	if _, err := svc.repo.GetStudentByID(studentID); err != nil {
		return nil, err
	}
	return svc.repo.GetTimetable(studentID)
}

// SetTimetable replaces the student's timetable. Periods 1 and 5 are
// pinned to the mastery group, and every other slot must be one of the
// student's four subjects or free.
func (svc *Service) SetTimetable(studentID int, days []TimetableDay) error {
	st, err := svc.repo.GetStudentByID(studentID)
	if err != nil {
		return err
	}
	for i := range days {
		if days[i].Day < 1 || days[i].Day > 5 {
			return core.NewValidationError(nil, core.FieldError{Field: "day", Error: "day must be between 1 and 5"})
		}
		days[i].Periods[0] = st.Mastery
		days[i].Periods[4] = st.Mastery
		for p, subject := range days[i].Periods {
			if p == 0 || p == 4 {
				continue
			}
			if subject == FreePeriod || st.Takes(subject) {
				continue
			}
			return core.NewValidationError(nil, core.FieldError{
				Field: "periods",
				Error: fmt.Sprintf("%s is not one of the student's subjects", subject),
			})
		}
	}
	return svc.repo.SaveTimetable(studentID, days)
}

// Flag posts a help request for the student on the flagging teacher's
// subject board and notifies the department by email.
func (svc *Service) Flag(studentID int, teacherID int, subject, deptEmail string) (board.Post, error) {
	st, err := svc.repo.GetStudentByID(studentID)
	if err != nil {
		return board.Post{}, err
	}

	post, err := svc.boards.Create(board.NewPost{
		Board:    subject,
		Title:    fmt.Sprintf("%s - Student Flag", subject),
		Content:  fmt.Sprintf("%s flagged for help in %s", st.Name(), subject),
		AuthorID: teacherID,
	})
	if err != nil {
		return board.Post{}, err
	}

	if deptEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Address: deptEmail}},
			Subject: fmt.Sprintf("[%s] %s flagged for help", core.Conf.AppName, st.Name()),
			Body:    post.Content,
		})
	}
	if svc.logger != nil {
		svc.logger.Info(fmt.Sprintf("student %d flagged for help in %s", st.ID, subject))
	}
	return post, nil
}

func ageRangeError(yearGroup int, bounds [2]int, age int) string {
	return fmt.Sprintf(
		"for Year %d, students should be %d-%d years old; this date of birth makes the student %d",
		yearGroup, bounds[0], bounds[1], age,
	)
}

package student

import (
	"strings"
	"time"

	"github.com/studsight/studsight/core"
)

// Subjects on offer. Every student picks four distinct ones; the
// remaining timetable slots are mastery or free periods.
const (
	SubjectMathematics = "Mathematics"
	SubjectEnglish     = "English"
	SubjectScience     = "Science"
	SubjectComputing   = "Computing"
	SubjectHistory     = "History"
)

var Subjects = []string{
	SubjectComputing,
	SubjectEnglish,
	SubjectHistory,
	SubjectMathematics,
	SubjectScience,
}

// FreePeriod marks an unassigned timetable slot.
const FreePeriod = "FREE"

// validAges maps a year group to the accepted age range (inclusive).
var validAges = map[int][2]int{
	12: {16, 18},
	13: {17, 19},
}

type (
	Student struct {
		ID        int       `json:"id"`
		FirstName string    `json:"first_name"`
		Surname   string    `json:"surname"`
		DOB       time.Time `json:"dob"`
		Gender    string    `json:"gender"`
		YearGroup int       `json:"year_group"`
		Mastery   string    `json:"mastery"`
		Email     string    `json:"email"`
		Subjects  []string  `json:"subjects"`
		Contact   Contact   `json:"contact"`
		Medical   Medical   `json:"medical"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Contact holds guardian and residence details.
	Contact struct {
		GuardianName   string    `json:"guardian_name"`
		GuardianPhone  string    `json:"guardian_phone"`
		Address        string    `json:"address"`
		Nationality    string    `json:"nationality"`
		CountryOfBirth string    `json:"country_of_birth"`
		EnrolledAt     time.Time `json:"enrolled_at"`
	}

	// Medical holds health details surfaced on the student profile.
	Medical struct {
		Conditions string `json:"conditions"`
		Medication string `json:"medication"`
		Allergies  string `json:"allergies"`
		Needs      string `json:"needs"`
	}

	// TimetableDay is one school day of a student's timetable. Slots 0
	// and 4 (periods 1 and 5) always carry the mastery group.
	TimetableDay struct {
		Day     int       `json:"day"` // 1 (Monday) - 5 (Friday)
		Periods [8]string `json:"periods"`
	}
)

// Name returns the student's full name.
func (s *Student) Name() string {
	return s.FirstName + " " + s.Surname
}

// Age returns the student's age in full years at the given date.
func (s *Student) Age(at time.Time) int {
	age := at.Year() - s.DOB.Year()
	if at.Month() < s.DOB.Month() || (at.Month() == s.DOB.Month() && at.Day() < s.DOB.Day()) {
		age--
	}
	return age
}

// Takes reports whether the student is enrolled in the subject.
func (s *Student) Takes(subject string) bool {
	for _, sub := range s.Subjects {
		if sub == subject {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	FirstName string   `json:"first_name" validate:"required"`
	Surname   string   `json:"surname" validate:"required"`
	DOB       string   `json:"dob" validate:"required"` // 2006-01-02
	Gender    string   `json:"gender" validate:"required,oneof=M F"`
	YearGroup int      `json:"year_group" validate:"yeargroup"`
	Mastery   string   `json:"mastery" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Subjects  []string `json:"subjects" validate:"required,len=4,unique,dive,oneof=Mathematics English Science Computing History"`

	GuardianName   string `json:"guardian_name" validate:"required"`
	GuardianPhone  string `json:"guardian_phone" validate:"required"`
	Address        string `json:"address"`
	Nationality    string `json:"nationality"`
	CountryOfBirth string `json:"country_of_birth"`
	EnrolledAt     string `json:"enrolled_at"` // 2006-01-02

	Conditions string `json:"conditions"`
	Medication string `json:"medication"`
	Allergies  string `json:"allergies"`
	Needs      string `json:"needs"`
}

func (ns *NewStudent) clean() {
	ns.FirstName = core.TitleString(ns.FirstName)
	ns.Surname = core.TitleString(ns.Surname)
	ns.Gender = core.CleanString(ns.Gender)
	ns.Mastery = strings.ToUpper(core.CleanString(ns.Mastery))
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.GuardianName = core.TitleString(ns.GuardianName)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	ns.Address = core.CleanString(ns.Address)
	ns.Nationality = core.TitleString(ns.Nationality)
	ns.CountryOfBirth = core.TitleString(ns.CountryOfBirth)
	ns.Conditions = core.TitleString(ns.Conditions)
	ns.Medication = core.TitleString(ns.Medication)
	ns.Allergies = core.TitleString(ns.Allergies)
	ns.Needs = core.TitleString(ns.Needs)
}

func (ns *NewStudent) Validate(svc *Service) error {
	ns.clean()

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	dob, err := parseDate(ns.DOB)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "dob", Error: "invalid date, expected YYYY-MM-DD"})
	}
	if err := validateAge(dob, ns.YearGroup); err != nil {
		return err
	}
	if ns.EnrolledAt != "" {
		if _, err := parseDate(ns.EnrolledAt); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "enrolled_at", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}
	return svc.checkUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Empty fields keep their current value.
type UpdateStudent struct {
	FirstName string   `json:"first_name"`
	Surname   string   `json:"surname"`
	DOB       string   `json:"dob"`
	Gender    string   `json:"gender" validate:"omitempty,oneof=M F"`
	YearGroup int      `json:"year_group" validate:"omitempty,yeargroup"`
	Mastery   string   `json:"mastery"`
	Email     string   `json:"email" validate:"omitempty,email"`
	Subjects  []string `json:"subjects" validate:"omitempty,len=4,unique,dive,oneof=Mathematics English Science Computing History"`

	GuardianName   string `json:"guardian_name"`
	GuardianPhone  string `json:"guardian_phone"`
	Address        string `json:"address"`
	Nationality    string `json:"nationality"`
	CountryOfBirth string `json:"country_of_birth"`

	Conditions string `json:"conditions"`
	Medication string `json:"medication"`
	Allergies  string `json:"allergies"`
	Needs      string `json:"needs"`
}

func (us *UpdateStudent) Validate(orig Student, svc *Service) error {
	if us.FirstName = core.TitleString(us.FirstName); us.FirstName == "" {
		us.FirstName = orig.FirstName
	}
	if us.Surname = core.TitleString(us.Surname); us.Surname == "" {
		us.Surname = orig.Surname
	}
	if us.Email = core.CleanString(us.Email, true /* lower */); us.Email == "" {
		us.Email = orig.Email
	}
	if us.YearGroup == 0 {
		us.YearGroup = orig.YearGroup
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}

	dob := orig.DOB
	if us.DOB != "" {
		var err error
		if dob, err = parseDate(us.DOB); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "dob", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}
	if err := validateAge(dob, us.YearGroup); err != nil {
		return err
	}
	if us.Email != orig.Email {
		return svc.checkUniqueness(us.Email, orig)
	}
	return nil
}

func validateAge(dob time.Time, yearGroup int) error {
	bounds, ok := validAges[yearGroup]
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "year_group", Error: "year group must be 12 or 13"})
	}
	s := Student{DOB: dob}
	if age := s.Age(time.Now()); age < bounds[0] || age > bounds[1] {
		return core.NewValidationError(nil, core.FieldError{
			Field: "dob",
			Error: ageRangeError(yearGroup, bounds, age),
		})
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// QueryFilter filters student listings.
type QueryFilter struct {
	// Search does a case-insensitive match on name or email.
	Search    string `query:"search"`
	YearGroup int    `query:"year_group"`
	Mastery   string `query:"mastery"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.YearGroup == 0 && qf.Mastery == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Mastery = core.CleanString(qf.Mastery)
}

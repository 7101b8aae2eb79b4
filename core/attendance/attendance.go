package attendance

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
)

// Attendance statuses. Single-letter aliases (p/a/l) are accepted when
// matching, so hand-entered data tallies correctly.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"

	// StatusNotMarked is the register placeholder; it is never stored.
	StatusNotMarked = "Not Marked"
)

var (
	// errors
	ErrSchoolClosed  = errors.New("school is closed on weekends")
	ErrOutsideHours  = errors.New("outside school hours")
	ErrNoClass       = errors.New("no class scheduled for this period")
	ErrInvalidStatus = errors.New("invalid status")
)

// Normalize maps a status or its single-letter alias to the canonical
// form; it returns "" for anything unknown.
func Normalize(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "present", "p":
		return StatusPresent
	case "absent", "a":
		return StatusAbsent
	case "late", "l":
		return StatusLate
	}
	return ""
}

// Is reports whether the stored status matches the canonical one,
// accepting aliases.
func Is(stored, canonical string) bool {
	return Normalize(stored) == canonical
}

type (
	// Mark is one attendance record: a student's status for one period
	// of one day. (StudentID, Date, Period) is unique.
	Mark struct {
		ID        int       `json:"id"`
		StudentID int       `json:"student_id"`
		TeacherID int       `json:"teacher_id"`
		Date      time.Time `json:"date"` // date only, UTC
		Period    int       `json:"period"`
		Status    string    `json:"status"`
	}

	// NewMark contains information needed to record attendance.
	NewMark struct {
		StudentID int    `json:"student_id" validate:"required"`
		Date      string `json:"date" validate:"required"` // 2006-01-02
		Period    int    `json:"period" validate:"period"`
		Status    string `json:"status" validate:"required"`
	}

	// RegisterEntry is one student row of the class register.
	RegisterEntry struct {
		Student student.Student `json:"student"`
		Status  string          `json:"status"`
	}

	// Register is the class in front of a teacher right now.
	Register struct {
		ClassName string          `json:"class_name"`
		ClassType string          `json:"class_type"` // "mastery" or "subject"
		Day       int             `json:"day"`
		Period    int             `json:"period"`
		Date      time.Time       `json:"date"`
		Entries   []RegisterEntry `json:"entries"`
	}

	Repository interface {
		GetMark(studentID int, date time.Time, period int) (Mark, error)
		UpsertMark(mark Mark) (Mark, error)
		// QueryMarksByStudentBetween returns marks with from <= Date <= to.
		QueryMarksByStudentBetween(studentID int, from, to time.Time) ([]Mark, error)
		QueryMarksByDatePeriod(date time.Time, period int) ([]Mark, error)
		// QueryClassStudents returns the students whose timetable has the
		// given slot value (mastery group or subject) on (day, period).
		QueryClassStudents(day, period int, slot string) ([]student.Student, error)
	}

	Service struct {
		repo Repository
	}
)

var ErrMarkNotFound = errors.New("attendance record not found")

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (nm *NewMark) Validate() error {
	if err := core.Validate.Struct(nm); err != nil {
		return err
	}
	status := Normalize(nm.Status)
	if status == "" {
		return core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: "status must be Present, Absent or Late"})
	}
	nm.Status = status
	if _, err := time.Parse("2006-01-02", nm.Date); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date, expected YYYY-MM-DD"})
	}
	return nil
}

// Mark records a student's attendance for a period; marking the same
// (student, date, period) again overwrites the status.
func (svc *Service) Mark(teacherID int, nm NewMark) (Mark, error) {
	date, err := time.Parse("2006-01-02", nm.Date)
	if err != nil {
		return Mark{}, err
	}
	return svc.repo.UpsertMark(Mark{
		StudentID: nm.StudentID,
		TeacherID: teacherID,
		Date:      date,
		Period:    nm.Period,
		Status:    nm.Status,
	})
}

// CurrentRegister resolves the class in front of the teacher at the
// given moment: the mastery group on mastery periods, the subject class
// otherwise, with each student's status for this period so far.
func (svc *Service) CurrentRegister(tchr teacher.Teacher, at time.Time) (Register, error) {
	day, ok := SchoolDay(at)
	if !ok {
		return Register{}, ErrSchoolClosed
	}
	period, ok := PeriodAt(at)
	if !ok {
		return Register{}, ErrOutsideHours
	}

	reg := Register{
		Day:    day,
		Period: period,
		Date:   time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
	}
	if MasteryPeriod(period) {
		if tchr.Mastery == "" {
			return Register{}, ErrNoClass
		}
		reg.ClassName = tchr.Mastery
		reg.ClassType = "mastery"
	} else {
		if tchr.Subject == "" {
			return Register{}, ErrNoClass
		}
		reg.ClassName = tchr.Subject
		reg.ClassType = "subject"
	}

	students, err := svc.repo.QueryClassStudents(day, period, reg.ClassName)
	if err != nil {
		return Register{}, errors.Wrap(err, "querying class students")
	}

	marks, err := svc.repo.QueryMarksByDatePeriod(reg.Date, period)
	if err != nil {
		return Register{}, errors.Wrap(err, "querying period marks")
	}
	byStudent := make(map[int]string, len(marks))
	for _, m := range marks {
		byStudent[m.StudentID] = m.Status
	}

	reg.Entries = make([]RegisterEntry, 0, len(students))
	for _, st := range students {
		status, ok := byStudent[st.ID]
		if !ok {
			status = StatusNotMarked
		}
		reg.Entries = append(reg.Entries, RegisterEntry{Student: st, Status: status})
	}
	return reg, nil
}

// StudentMarks returns a student's attendance records between two dates
// inclusive.
func (svc *Service) StudentMarks(studentID int, from, to time.Time) ([]Mark, error) {
	return svc.repo.QueryMarksByStudentBetween(studentID, from, to)
}

// CountStatus tallies the marks matching the canonical status,
// accepting stored aliases.
func CountStatus(marks []Mark, status string) int {
	var total int
	for _, m := range marks {
		if Is(m.Status, status) {
			total++
		}
	}
	return total
}

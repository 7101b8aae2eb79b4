// Package behaviour implements the behaviour event log: housepoints,
// demerits, detentions and withdrawals recorded against a student for a
// given period, with tallies feeding the weekly analytics.
package behaviour

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
)

// Event types.
const (
	TypeHousepoint = 1
	TypeDemerit    = 2
	TypeDetention  = 3
	TypeWithdrawal = 4
)

// Type pairs an event type ID with its display name.
type Type struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var Types = []Type{
	{TypeHousepoint, "Housepoint"},
	{TypeDemerit, "Demerit"},
	{TypeDetention, "Detention"},
	{TypeWithdrawal, "Withdrawal"},
}

// TypeName returns the display name for a type ID, "" if unknown.
func TypeName(id int) string {
	for _, t := range Types {
		if t.ID == id {
			return t.Name
		}
	}
	return ""
}

var ErrNotFound = errors.New("behaviour event not found")

type (
	// Event is one recorded behaviour incident.
	Event struct {
		ID          int       `json:"id"`
		StudentID   int       `json:"student_id"`
		TeacherID   int       `json:"teacher_id"`
		Date        time.Time `json:"date"` // date only, UTC
		Period      int       `json:"period"`
		TypeID      int       `json:"type_id"`
		Description string    `json:"description"`
	}

	// NewEvent contains information needed to log behaviour. Amount
	// logs the same incident that many times (e.g. 3 housepoints).
	NewEvent struct {
		StudentID   int    `json:"student_id" validate:"required"`
		Period      int    `json:"period" validate:"period"`
		TypeID      int    `json:"type_id" validate:"required,min=1,max=4"`
		Amount      int    `json:"amount" validate:"omitempty,min=1,max=10"`
		Description string `json:"description"`
	}

	Repository interface {
		CreateEvent(ev Event) (Event, error)
		// QueryEventsByStudentBetween returns events with from <= Date <= to.
		QueryEventsByStudentBetween(studentID int, from, to time.Time) ([]Event, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (ne *NewEvent) Validate() error {
	ne.Description = core.TitleString(ne.Description)
	if ne.Amount == 0 {
		ne.Amount = 1
	}
	return core.Validate.Struct(ne)
}

// Log records the event Amount times, dated today.
func (svc *Service) Log(teacherID int, ne NewEvent) ([]Event, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	events := make([]Event, 0, ne.Amount)
	for i := 0; i < ne.Amount; i++ {
		ev, err := svc.repo.CreateEvent(Event{
			StudentID:   ne.StudentID,
			TeacherID:   teacherID,
			Date:        today,
			Period:      ne.Period,
			TypeID:      ne.TypeID,
			Description: ne.Description,
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating behaviour event")
		}
		events = append(events, ev)
	}
	return events, nil
}

// StudentEvents returns a student's events between two dates inclusive.
func (svc *Service) StudentEvents(studentID int, from, to time.Time) ([]Event, error) {
	return svc.repo.QueryEventsByStudentBetween(studentID, from, to)
}

// CountType tallies the events of the given type.
func CountType(events []Event, typeID int) int {
	var total int
	for _, ev := range events {
		if ev.TypeID == typeID {
			total++
		}
	}
	return total
}

// CountByPeriod tallies events per period, skipping events recorded
// outside any period.
func CountByPeriod(events []Event) map[int]int {
	counts := make(map[int]int)
	for _, ev := range events {
		if ev.Period >= 1 && ev.Period <= 8 {
			counts[ev.Period]++
		}
	}
	return counts
}

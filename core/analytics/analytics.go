// Package analytics implements the week-over-week student analysis:
// attendance and behaviour tallies for the current ISO week compared
// with the previous one, plus the plain-text weekly report teachers
// review.
package analytics

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/behaviour"
	"github.com/studsight/studsight/core/student"
)

type (
	// AttendanceTally is one week's attendance counts.
	AttendanceTally struct {
		Present int `json:"present"`
		Absent  int `json:"absent"`
		Late    int `json:"late"`
	}

	// BehaviourTally is one week's behaviour counts by type.
	BehaviourTally struct {
		Housepoints int `json:"housepoints"`
		Demerits    int `json:"demerits"`
		Detentions  int `json:"detentions"`
		Withdrawals int `json:"withdrawals"`
	}

	// WeekComparison is the current ISO week against the previous one.
	WeekComparison struct {
		Student student.Student `json:"student"`
		Year    int             `json:"year"`
		Week    int             `json:"week"`

		CurrentAttendance  AttendanceTally `json:"current_attendance"`
		PreviousAttendance AttendanceTally `json:"previous_attendance"`
		CurrentBehaviour   BehaviourTally  `json:"current_behaviour"`
		PreviousBehaviour  BehaviourTally  `json:"previous_behaviour"`

		// WorstPeriod is the period with the most behaviour incidents
		// this week, 0 when the week has none.
		WorstPeriod int `json:"worst_period"`
	}

	// SeriesPoint is one labeled previous/current pair for the
	// dashboard's bar comparison.
	SeriesPoint struct {
		Label    string `json:"label"`
		Previous int    `json:"previous"`
		Current  int    `json:"current"`
	}

	Service struct {
		students   *student.Service
		attendance *attendance.Service
		behaviour  *behaviour.Service
	}
)

func NewService(students *student.Service, att *attendance.Service, beh *behaviour.Service) *Service {
	return &Service{students: students, attendance: att, behaviour: beh}
}

// ISOWeekRange returns the Monday and Sunday (inclusive) of the given
// ISO week.
func ISOWeekRange(year, week int) (start, end time.Time) {
	// Jan 4 is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	start = week1Monday.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// PreviousISOWeek returns the ISO week before (year, week), crossing
// the year boundary when needed.
func PreviousISOWeek(year, week int) (int, int) {
	if week > 1 {
		return year, week - 1
	}
	// Dec 28 is always in the last ISO week of its year.
	y, w := time.Date(year-1, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return y, w
}

// Compare builds the week-over-week comparison for a student, using
// the ISO week containing `today` as the current week.
func (svc *Service) Compare(studentID int, today time.Time) (WeekComparison, error) {
	st, err := svc.students.GetByID(studentID)
	if err != nil {
		return WeekComparison{}, err
	}

	year, week := today.ISOWeek()
	currStart, currEnd := ISOWeekRange(year, week)
	prevYear, prevWeek := PreviousISOWeek(year, week)
	prevStart, prevEnd := ISOWeekRange(prevYear, prevWeek)

	cmp := WeekComparison{Student: st, Year: year, Week: week}

	currMarks, err := svc.attendance.StudentMarks(studentID, currStart, currEnd)
	if err != nil {
		return WeekComparison{}, errors.Wrap(err, "querying current week attendance")
	}
	prevMarks, err := svc.attendance.StudentMarks(studentID, prevStart, prevEnd)
	if err != nil {
		return WeekComparison{}, errors.Wrap(err, "querying previous week attendance")
	}
	cmp.CurrentAttendance = tallyAttendance(currMarks)
	cmp.PreviousAttendance = tallyAttendance(prevMarks)

	currEvents, err := svc.behaviour.StudentEvents(studentID, currStart, currEnd)
	if err != nil {
		return WeekComparison{}, errors.Wrap(err, "querying current week behaviour")
	}
	prevEvents, err := svc.behaviour.StudentEvents(studentID, prevStart, prevEnd)
	if err != nil {
		return WeekComparison{}, errors.Wrap(err, "querying previous week behaviour")
	}
	cmp.CurrentBehaviour = tallyBehaviour(currEvents)
	cmp.PreviousBehaviour = tallyBehaviour(prevEvents)
	cmp.WorstPeriod = worstPeriod(currEvents)

	return cmp, nil
}

func tallyAttendance(marks []attendance.Mark) AttendanceTally {
	return AttendanceTally{
		Present: attendance.CountStatus(marks, attendance.StatusPresent),
		Absent:  attendance.CountStatus(marks, attendance.StatusAbsent),
		Late:    attendance.CountStatus(marks, attendance.StatusLate),
	}
}

func tallyBehaviour(events []behaviour.Event) BehaviourTally {
	return BehaviourTally{
		Housepoints: behaviour.CountType(events, behaviour.TypeHousepoint),
		Demerits:    behaviour.CountType(events, behaviour.TypeDemerit),
		Detentions:  behaviour.CountType(events, behaviour.TypeDetention),
		Withdrawals: behaviour.CountType(events, behaviour.TypeWithdrawal),
	}
}

// worstPeriod picks the period with the most incidents; ties go to the
// earliest period so the result is stable.
func worstPeriod(events []behaviour.Event) int {
	counts := behaviour.CountByPeriod(events)
	worst, max := 0, 0
	for period := 1; period <= 8; period++ {
		if c := counts[period]; c > max {
			worst, max = period, c
		}
	}
	return worst
}

// Total returns the week's overall attendance record count.
func (t AttendanceTally) Total() int {
	return t.Present + t.Absent + t.Late
}

// Total returns the week's overall behaviour event count.
func (t BehaviourTally) Total() int {
	return t.Housepoints + t.Demerits + t.Detentions + t.Withdrawals
}

// Series flattens the comparison into labeled previous/current pairs
// for the dashboard's bar comparison.
func (cmp WeekComparison) Series() []SeriesPoint {
	return []SeriesPoint{
		{"Present", cmp.PreviousAttendance.Present, cmp.CurrentAttendance.Present},
		{"Absent", cmp.PreviousAttendance.Absent, cmp.CurrentAttendance.Absent},
		{"Late", cmp.PreviousAttendance.Late, cmp.CurrentAttendance.Late},
		{"Housepoints", cmp.PreviousBehaviour.Housepoints, cmp.CurrentBehaviour.Housepoints},
		{"Demerits", cmp.PreviousBehaviour.Demerits, cmp.CurrentBehaviour.Demerits},
		{"Detentions", cmp.PreviousBehaviour.Detentions, cmp.CurrentBehaviour.Detentions},
		{"Withdrawals", cmp.PreviousBehaviour.Withdrawals, cmp.CurrentBehaviour.Withdrawals},
	}
}

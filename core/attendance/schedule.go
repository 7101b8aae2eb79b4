// Package attendance implements the bell schedule and per-period
// attendance marking: resolving the current period, building the class
// register for it, and recording Present/Absent/Late statuses.
package attendance

import "time"

// Slot is one period of the bell schedule. Start is inclusive, End
// exclusive, both in minutes since midnight.
type Slot struct {
	Period int
	Start  int
	End    int
}

func clock(hour, minute int) int { return hour*60 + minute }

// BellSchedule is the school day. Periods 1 and 5 are mastery periods;
// the rest are subject lessons.
var BellSchedule = []Slot{
	{1, clock(8, 20), clock(9, 0)},
	{2, clock(9, 0), clock(10, 0)},
	{3, clock(10, 0), clock(11, 0)},
	{4, clock(11, 15), clock(12, 15)},
	{5, clock(13, 15), clock(13, 45)},
	{6, clock(13, 45), clock(14, 45)},
	{7, clock(14, 45), clock(15, 45)},
	{8, clock(16, 0), clock(17, 50)},
}

// PeriodAt resolves the period in progress at t. It returns false
// between periods and outside school hours.
func PeriodAt(t time.Time) (int, bool) {
	m := clock(t.Hour(), t.Minute())
	for _, slot := range BellSchedule {
		if slot.Start <= m && m < slot.End {
			return slot.Period, true
		}
	}
	return 0, false
}

// SchoolDay returns the timetable day for t (1 Monday - 5 Friday); it
// returns false on weekends.
func SchoolDay(t time.Time) (int, bool) {
	switch wd := t.Weekday(); wd {
	case time.Saturday, time.Sunday:
		return 0, false
	default:
		return int(wd), true
	}
}

// MasteryPeriod reports whether the period is a mastery period.
func MasteryPeriod(period int) bool {
	return period == 1 || period == 5
}

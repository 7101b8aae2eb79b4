package analytics

import (
	"fmt"
	"strings"
)

// Report renders the comparison as the plain-text weekly report
// teachers review and departments receive by email.
func (cmp WeekComparison) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Student: %s (ID %d), Year %d, Gender: %s, Mastery: %s.\n",
		cmp.Student.Name(), cmp.Student.ID, cmp.Student.YearGroup, cmp.Student.Gender, cmp.Student.Mastery)
	fmt.Fprintf(&b, "Week %d of %d compared with the week before.\n\n", cmp.Week, cmp.Year)

	ca, pa := cmp.CurrentAttendance, cmp.PreviousAttendance
	fmt.Fprintf(&b, "Attendance: This week - Present %d/%d, Absent %d, Late %d. ",
		ca.Present, ca.Total(), ca.Absent, ca.Late)
	fmt.Fprintf(&b, "Last week - Present %d/%d, Absent %d, Late %d.\n",
		pa.Present, pa.Total(), pa.Absent, pa.Late)

	cb, pb := cmp.CurrentBehaviour, cmp.PreviousBehaviour
	fmt.Fprintf(&b, "Behaviour events: This week - %d events (%s). ", cb.Total(), describeBehaviour(cb))
	fmt.Fprintf(&b, "Last week - %d events (%s).\n", pb.Total(), describeBehaviour(pb))

	if cmp.WorstPeriod != 0 {
		fmt.Fprintf(&b, "Most behaviour incidents this week occurred during Period %d.\n", cmp.WorstPeriod)
	}
	return b.String()
}

func describeBehaviour(t BehaviourTally) string {
	if t.Total() == 0 {
		return "none"
	}
	var parts []string
	add := func(count int, name string) {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", name, count))
		}
	}
	add(t.Housepoints, "Housepoints")
	add(t.Demerits, "Demerits")
	add(t.Detentions, "Detentions")
	add(t.Withdrawals, "Withdrawals")
	return strings.Join(parts, ", ")
}

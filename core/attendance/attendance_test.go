package attendance

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
)

func TestPeriodAt(t *testing.T) {
	tests := []struct {
		hour, minute int
		wantPeriod   int
		wantOK       bool
	}{
		{8, 19, 0, false},
		{8, 20, 1, true},
		{8, 59, 1, true},
		{9, 0, 2, true},
		{10, 0, 3, true},
		{11, 0, 0, false}, // morning break
		{11, 14, 0, false},
		{11, 15, 4, true},
		{12, 15, 0, false}, // lunch
		{13, 15, 5, true},
		{13, 44, 5, true},
		{13, 45, 6, true},
		{14, 45, 7, true},
		{15, 45, 0, false}, // afternoon break
		{16, 0, 8, true},
		{17, 49, 8, true},
		{17, 50, 0, false},
		{3, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%02d:%02d", tt.hour, tt.minute), func(t *testing.T) {
			at := time.Date(2026, 3, 2, tt.hour, tt.minute, 0, 0, time.UTC) // a Monday
			period, ok := PeriodAt(at)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPeriod, period)
		})
	}
}

func TestSchoolDay(t *testing.T) {
	monday := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		at := monday.AddDate(0, 0, i)
		day, ok := SchoolDay(at)
		if i < 5 {
			assert.True(t, ok)
			assert.Equal(t, i+1, day)
		} else {
			assert.False(t, ok, "weekend should be closed")
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Present", StatusPresent},
		{"present", StatusPresent},
		{"p", StatusPresent},
		{"P", StatusPresent},
		{"a", StatusAbsent},
		{"Absent", StatusAbsent},
		{"l", StatusLate},
		{" Late ", StatusLate},
		{"x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestCountStatus(t *testing.T) {
	marks := []Mark{
		{Status: "Present"}, {Status: "p"}, {Status: "Absent"},
		{Status: "l"}, {Status: "Late"}, {Status: "present"},
	}
	assert.Equal(t, 3, CountStatus(marks, StatusPresent))
	assert.Equal(t, 1, CountStatus(marks, StatusAbsent))
	assert.Equal(t, 2, CountStatus(marks, StatusLate))
}

type fakeRepo struct {
	marks    []Mark
	students map[string][]student.Student // key "day/period/slot"
	lastID   int
}

func classKey(day, period int, slot string) string {
	return fmt.Sprintf("%d/%d/%s", day, period, slot)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{students: make(map[string][]student.Student)}
}

func (r *fakeRepo) GetMark(studentID int, date time.Time, period int) (Mark, error) {
	for _, m := range r.marks {
		if m.StudentID == studentID && m.Date.Equal(date) && m.Period == period {
			return m, nil
		}
	}
	return Mark{}, ErrMarkNotFound
}

func (r *fakeRepo) UpsertMark(mark Mark) (Mark, error) {
	for i, m := range r.marks {
		if m.StudentID == mark.StudentID && m.Date.Equal(mark.Date) && m.Period == mark.Period {
			r.marks[i].Status = mark.Status
			r.marks[i].TeacherID = mark.TeacherID
			return r.marks[i], nil
		}
	}
	r.lastID++
	mark.ID = r.lastID
	r.marks = append(r.marks, mark)
	return mark, nil
}

func (r *fakeRepo) QueryMarksByStudentBetween(studentID int, from, to time.Time) ([]Mark, error) {
	var res []Mark
	for _, m := range r.marks {
		if m.StudentID == studentID && !m.Date.Before(from) && !m.Date.After(to) {
			res = append(res, m)
		}
	}
	return res, nil
}

func (r *fakeRepo) QueryMarksByDatePeriod(date time.Time, period int) ([]Mark, error) {
	var res []Mark
	for _, m := range r.marks {
		if m.Date.Equal(date) && m.Period == period {
			res = append(res, m)
		}
	}
	return res, nil
}

func (r *fakeRepo) QueryClassStudents(day, period int, slot string) ([]student.Student, error) {
	return r.students[classKey(day, period, slot)], nil
}

func TestMarkUpsert(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	nm := NewMark{StudentID: 1, Date: "2026-03-02", Period: 3, Status: "p"}
	require.NoError(t, nm.Validate())
	assert.Equal(t, StatusPresent, nm.Status)

	mark, err := svc.Mark(9, nm)
	require.NoError(t, err)
	assert.Equal(t, 9, mark.TeacherID)
	assert.Equal(t, StatusPresent, mark.Status)

	// marking again overwrites instead of duplicating
	nm.Status = StatusLate
	mark2, err := svc.Mark(9, nm)
	require.NoError(t, err)
	assert.Equal(t, mark.ID, mark2.ID)
	assert.Equal(t, StatusLate, mark2.Status)
	assert.Len(t, repo.marks, 1)

	t.Run("invalid status", func(t *testing.T) {
		nm := NewMark{StudentID: 1, Date: "2026-03-02", Period: 3, Status: "sick"}
		assert.Error(t, nm.Validate())
	})

	t.Run("invalid period", func(t *testing.T) {
		nm := NewMark{StudentID: 1, Date: "2026-03-02", Period: 9, Status: "p"}
		assert.Error(t, nm.Validate())
	})
}

func TestCurrentRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	tchr := teacher.Teacher{ID: 9, Subject: "Science", Mastery: "B"}
	alice := student.Student{ID: 1, FirstName: "Alice", Surname: "Mwangi"}
	bob := student.Student{ID: 2, FirstName: "Bob", Surname: "Otieno"}

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	repo.students[classKey(1, 1, "B")] = []student.Student{alice}
	repo.students[classKey(1, 3, "Science")] = []student.Student{alice, bob}

	t.Run("weekend", func(t *testing.T) {
		_, err := svc.CurrentRegister(tchr, monday.AddDate(0, 0, 5).Add(10*time.Hour))
		assert.Equal(t, ErrSchoolClosed, err)
	})

	t.Run("between periods", func(t *testing.T) {
		_, err := svc.CurrentRegister(tchr, monday.Add(11*time.Hour+5*time.Minute))
		assert.Equal(t, ErrOutsideHours, err)
	})

	t.Run("mastery period", func(t *testing.T) {
		reg, err := svc.CurrentRegister(tchr, monday.Add(8*time.Hour+30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "mastery", reg.ClassType)
		assert.Equal(t, "B", reg.ClassName)
		assert.Equal(t, 1, reg.Period)
		require.Len(t, reg.Entries, 1)
		assert.Equal(t, StatusNotMarked, reg.Entries[0].Status)
	})

	t.Run("subject period with existing marks", func(t *testing.T) {
		nm := NewMark{StudentID: alice.ID, Date: "2026-03-02", Period: 3, Status: "Present"}
		require.NoError(t, nm.Validate())
		_, err := svc.Mark(tchr.ID, nm)
		require.NoError(t, err)

		reg, err := svc.CurrentRegister(tchr, monday.Add(10*time.Hour+30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "subject", reg.ClassType)
		assert.Equal(t, "Science", reg.ClassName)
		require.Len(t, reg.Entries, 2)
		assert.Equal(t, StatusPresent, reg.Entries[0].Status)
		assert.Equal(t, StatusNotMarked, reg.Entries[1].Status)
	})

	t.Run("no mastery group assigned", func(t *testing.T) {
		plain := teacher.Teacher{ID: 10, Subject: "Science"}
		_, err := svc.CurrentRegister(plain, monday.Add(8*time.Hour+30*time.Minute))
		assert.Equal(t, ErrNoClass, err)
	})
}

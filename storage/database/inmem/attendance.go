package inmemdb

import (
	"sort"
	"time"

	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/student"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetMark(studentID int, date time.Time, period int) (attendance.Mark, error) {
	repo.db.attendance.mutex.RLock()
	defer repo.db.attendance.mutex.RUnlock()

	for _, m := range repo.db.attendance.table {
		if m.StudentID == studentID && m.Date.Equal(date) && m.Period == period {
			return m, nil
		}
	}
	return attendance.Mark{}, attendance.ErrMarkNotFound
}

func (repo *attendanceRepository) UpsertMark(mark attendance.Mark) (attendance.Mark, error) {
	repo.db.attendance.mutex.Lock()
	defer repo.db.attendance.mutex.Unlock()

	for i, m := range repo.db.attendance.table {
		if m.StudentID == mark.StudentID && m.Date.Equal(mark.Date) && m.Period == mark.Period {
			repo.db.attendance.table[i].Status = mark.Status
			repo.db.attendance.table[i].TeacherID = mark.TeacherID
			return repo.db.attendance.table[i], nil
		}
	}
	repo.db.attendance.lastID++
	mark.ID = repo.db.attendance.lastID
	repo.db.attendance.table = append(repo.db.attendance.table, mark)
	return mark, nil
}

func (repo *attendanceRepository) QueryMarksByStudentBetween(studentID int, from, to time.Time) ([]attendance.Mark, error) {
	repo.db.attendance.mutex.RLock()
	defer repo.db.attendance.mutex.RUnlock()

	var res []attendance.Mark
	for _, m := range repo.db.attendance.table {
		if m.StudentID == studentID && !m.Date.Before(from) && !m.Date.After(to) {
			res = append(res, m)
		}
	}
	return res, nil
}

func (repo *attendanceRepository) QueryMarksByDatePeriod(date time.Time, period int) ([]attendance.Mark, error) {
	repo.db.attendance.mutex.RLock()
	defer repo.db.attendance.mutex.RUnlock()

	var res []attendance.Mark
	for _, m := range repo.db.attendance.table {
		if m.Date.Equal(date) && m.Period == period {
			res = append(res, m)
		}
	}
	return res, nil
}

func (repo *attendanceRepository) QueryClassStudents(day, period int, slot string) ([]student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	var res []student.Student
	for id, st := range repo.db.student.table {
		for _, tday := range repo.db.student.timetables[id] {
			if tday.Day == day && tday.Periods[period-1] == slot {
				res = append(res, *st)
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Surname != res[j].Surname {
			return res[i].Surname < res[j].Surname
		}
		return res[i].FirstName < res[j].FirstName
	})
	return res, nil
}

package inmemdb

import (
	"sort"
	"strings"

	"github.com/studsight/studsight/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(email string, excluded ...student.Student) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.query() {
		if st.Email != email {
			continue
		}
		excl := false
		for _, ex := range excluded {
			if ex.ID == st.ID {
				excl = true
				break
			}
		}
		if !excl {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lastID++
	st.ID = repo.db.lastID
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.query() {
		if st.Email == email {
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var res []student.Student
	for _, st := range repo.query() {
		if filter.YearGroup != 0 && st.YearGroup != filter.YearGroup {
			continue
		}
		if filter.Mastery != "" && st.Mastery != filter.Mastery {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(st.Name()), s) && !strings.Contains(st.Email, s) {
				continue
			}
		}
		res = append(res, st)
	}
	return res, nil
}

func (repo *studentRepository) UpdateStudent(st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.timetables, id)
	}
	return nil
}

func (repo *studentRepository) GetTimetable(studentID int) ([]student.TimetableDay, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	days := repo.db.timetables[studentID]
	res := make([]student.TimetableDay, len(days))
	copy(res, days)
	return res, nil
}

func (repo *studentRepository) SaveTimetable(studentID int, days []student.TimetableDay) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	saved := make([]student.TimetableDay, len(days))
	copy(saved, days)
	repo.db.timetables[studentID] = saved
	return nil
}

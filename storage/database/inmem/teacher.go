package inmemdb

import (
	"sort"
	"strings"

	"github.com/studsight/studsight/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teacher}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers
}

func (repo *teacherRepository) CheckEmailUniqueness(email string, excluded ...teacher.Teacher) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.query() {
		if t.Email != email {
			continue
		}
		excl := false
		for _, ex := range excluded {
			if ex.ID == t.ID {
				excl = true
				break
			}
		}
		if !excl {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lastID++
	t.ID = repo.db.lastID
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers() ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *teacherRepository) GetTeacherByID(id int) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(email string) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.query() {
		if t.Email == email {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) FilterTeachers(filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var res []teacher.Teacher
	for _, t := range repo.query() {
		if filter.Subject != "" && t.Subject != filter.Subject {
			continue
		}
		if filter.Role != "" && t.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && t.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Name()), s) && !strings.Contains(t.Email, s) {
				continue
			}
		}
		res = append(res, t)
	}
	return res, nil
}

func (repo *teacherRepository) UpdateTeacher(t teacher.Teacher, isActive *bool) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	orig, ok := repo.db.table[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if t.FirstName != "" {
		orig.FirstName = t.FirstName
	}
	if t.Surname != "" {
		orig.Surname = t.Surname
	}
	if t.Email != "" {
		orig.Email = t.Email
	}
	if t.Subject != "" {
		orig.Subject = t.Subject
	}
	if t.Mastery != "" {
		orig.Mastery = t.Mastery
	}
	if t.Role != "" {
		orig.Role = t.Role
	}
	if t.PasswordHash != nil {
		orig.PasswordHash = t.PasswordHash
	}
	if !t.LastLogin.IsZero() {
		orig.LastLogin = t.LastLogin
	}
	if !t.UpdatedAt.IsZero() {
		orig.UpdatedAt = t.UpdatedAt
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}

	repo.db.table[t.ID] = orig
	return *orig, nil
}

func (repo *teacherRepository) DeleteTeachersByID(ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

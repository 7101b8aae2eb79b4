package inmemdb

import (
	"sort"

	"github.com/studsight/studsight/core/assessment"
)

type assessmentRepository struct {
	db *assessmentTable
}

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{db: db.assessment}
}

func (repo *assessmentRepository) CreateAssessment(a assessment.Assessment) (assessment.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lastID++
	a.ID = repo.db.lastID
	repo.db.table = append(repo.db.table, a)
	return a, nil
}

func (repo *assessmentRepository) QueryAssessmentsByStudent(studentID int) ([]assessment.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var res []assessment.Assessment
	for _, a := range repo.db.table {
		if a.StudentID == studentID {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (repo *assessmentRepository) CountAssessments(studentID int, subject, typ string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int
	for _, a := range repo.db.table {
		if a.StudentID == studentID && a.Subject == subject && a.Type == typ {
			count++
		}
	}
	return count, nil
}

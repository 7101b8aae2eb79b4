package sqlxrepos

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/assessment"
)

const assessmentColumns = "id, student_id, subject, type, score, date"

type assessmentRow struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	Subject   string    `db:"subject"`
	Type      string    `db:"type"`
	Score     float64   `db:"score"`
	Date      time.Time `db:"date"`
}

func (r assessmentRow) toAssessment() assessment.Assessment {
	return assessment.Assessment{
		ID:        r.ID,
		StudentID: r.StudentID,
		Subject:   r.Subject,
		Type:      r.Type,
		Score:     r.Score,
		Date:      r.Date,
	}
}

type assessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) assessment.Repository {
	return &assessmentRepository{db: db}
}

func (repo *assessmentRepository) CreateAssessment(a assessment.Assessment) (assessment.Assessment, error) {
	query := `
		INSERT INTO assessment (student_id, subject, type, score, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + assessmentColumns

	var row assessmentRow
	err := repo.db.Get(&row, query, a.StudentID, a.Subject, a.Type, a.Score, a.Date)
	if err != nil {
		return assessment.Assessment{}, errors.Wrap(err, "creating assessment")
	}
	return row.toAssessment(), nil
}

func (repo *assessmentRepository) QueryAssessmentsByStudent(studentID int) ([]assessment.Assessment, error) {
	var rows []assessmentRow
	query := fmt.Sprintf(
		"SELECT %s FROM assessment WHERE student_id = $1 ORDER BY date DESC, id DESC",
		assessmentColumns,
	)
	if err := repo.db.Select(&rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}

	assessments := make([]assessment.Assessment, len(rows))
	for i, r := range rows {
		assessments[i] = r.toAssessment()
	}
	return assessments, nil
}

func (repo *assessmentRepository) CountAssessments(studentID int, subject, typ string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM assessment WHERE student_id = $1 AND subject = $2 AND type = $3"
	if err := repo.db.Get(&count, query, studentID, subject, typ); err != nil {
		return 0, errors.Wrap(err, "counting assessments")
	}
	return count, nil
}

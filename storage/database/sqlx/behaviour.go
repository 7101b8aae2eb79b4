package sqlxrepos

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/behaviour"
)

const eventColumns = "id, student_id, teacher_id, date, period, type_id, description"

type eventRow struct {
	ID          int       `db:"id"`
	StudentID   int       `db:"student_id"`
	TeacherID   int       `db:"teacher_id"`
	Date        time.Time `db:"date"`
	Period      int       `db:"period"`
	TypeID      int       `db:"type_id"`
	Description string    `db:"description"`
}

func (r eventRow) toEvent() behaviour.Event {
	return behaviour.Event{
		ID:          r.ID,
		StudentID:   r.StudentID,
		TeacherID:   r.TeacherID,
		Date:        r.Date,
		Period:      r.Period,
		TypeID:      r.TypeID,
		Description: r.Description,
	}
}

type behaviourRepository struct {
	db *sqlx.DB
}

func NewBehaviourRepository(db *sqlx.DB) behaviour.Repository {
	return &behaviourRepository{db: db}
}

func (repo *behaviourRepository) CreateEvent(ev behaviour.Event) (behaviour.Event, error) {
	query := `
		INSERT INTO behaviour_event (student_id, teacher_id, date, period, type_id, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + eventColumns

	var row eventRow
	err := repo.db.Get(&row, query, ev.StudentID, ev.TeacherID, ev.Date, ev.Period, ev.TypeID, ev.Description)
	if err != nil {
		return behaviour.Event{}, errors.Wrap(err, "creating behaviour event")
	}
	return row.toEvent(), nil
}

func (repo *behaviourRepository) QueryEventsByStudentBetween(studentID int, from, to time.Time) ([]behaviour.Event, error) {
	var rows []eventRow
	query := fmt.Sprintf(
		"SELECT %s FROM behaviour_event WHERE student_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date, id",
		eventColumns,
	)
	if err := repo.db.Select(&rows, query, studentID, from, to); err != nil {
		return nil, errors.Wrap(err, "querying behaviour events")
	}

	events := make([]behaviour.Event, len(rows))
	for i, r := range rows {
		events[i] = r.toEvent()
	}
	return events, nil
}

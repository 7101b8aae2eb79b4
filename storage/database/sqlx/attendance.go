package sqlxrepos

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/student"
)

const markColumns = "id, student_id, teacher_id, date, period, status"

type markRow struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	TeacherID int       `db:"teacher_id"`
	Date      time.Time `db:"date"`
	Period    int       `db:"period"`
	Status    string    `db:"status"`
}

func (r markRow) toMark() attendance.Mark {
	return attendance.Mark{
		ID:        r.ID,
		StudentID: r.StudentID,
		TeacherID: r.TeacherID,
		Date:      r.Date,
		Period:    r.Period,
		Status:    r.Status,
	}
}

func toMarks(rows []markRow) []attendance.Mark {
	marks := make([]attendance.Mark, len(rows))
	for i, r := range rows {
		marks[i] = r.toMark()
	}
	return marks
}

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetMark(studentID int, date time.Time, period int) (attendance.Mark, error) {
	var row markRow
	query := fmt.Sprintf("SELECT %s FROM attendance_mark WHERE student_id = $1 AND date = $2 AND period = $3", markColumns)
	if err := repo.db.Get(&row, query, studentID, date, period); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Mark{}, attendance.ErrMarkNotFound
		}
		return attendance.Mark{}, errors.Wrap(err, "getting attendance mark")
	}
	return row.toMark(), nil
}

func (repo *attendanceRepository) UpsertMark(mark attendance.Mark) (attendance.Mark, error) {
	query := `
		INSERT INTO attendance_mark (student_id, teacher_id, date, period, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, date, period)
		DO UPDATE SET teacher_id = EXCLUDED.teacher_id, status = EXCLUDED.status
		RETURNING ` + markColumns

	var row markRow
	err := repo.db.Get(&row, query, mark.StudentID, mark.TeacherID, mark.Date, mark.Period, mark.Status)
	if err != nil {
		return attendance.Mark{}, errors.Wrap(err, "upserting attendance mark")
	}
	return row.toMark(), nil
}

func (repo *attendanceRepository) QueryMarksByStudentBetween(studentID int, from, to time.Time) ([]attendance.Mark, error) {
	var rows []markRow
	query := fmt.Sprintf(
		"SELECT %s FROM attendance_mark WHERE student_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date, period",
		markColumns,
	)
	if err := repo.db.Select(&rows, query, studentID, from, to); err != nil {
		return nil, errors.Wrap(err, "querying attendance marks")
	}
	return toMarks(rows), nil
}

func (repo *attendanceRepository) QueryMarksByDatePeriod(date time.Time, period int) ([]attendance.Mark, error) {
	var rows []markRow
	query := fmt.Sprintf("SELECT %s FROM attendance_mark WHERE date = $1 AND period = $2 ORDER BY id", markColumns)
	if err := repo.db.Select(&rows, query, date, period); err != nil {
		return nil, errors.Wrap(err, "querying attendance marks")
	}
	return toMarks(rows), nil
}

func (repo *attendanceRepository) QueryClassStudents(day, period int, slot string) ([]student.Student, error) {
	var rows []studentRow
	// postgres arrays are 1-indexed, so periods[period] is the right slot
	query := fmt.Sprintf(`
		SELECT %s FROM student s
		JOIN timetable_day td ON td.student_id = s.id
		WHERE td.day = $1 AND td.periods[$2] = $3
		ORDER BY s.surname, s.first_name`,
		prefixColumns("s", studentColumns),
	)
	if err := repo.db.Select(&rows, query, day, period, slot); err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	return toStudents(rows), nil
}

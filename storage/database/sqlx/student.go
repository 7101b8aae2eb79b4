package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/student"
)

const studentColumns = "id, first_name, surname, dob, gender, year_group, mastery, email, subjects, " +
	"guardian_name, guardian_phone, address, nationality, country_of_birth, enrolled_at, " +
	"conditions, medication, allergies, needs, created_at, updated_at"

type studentRow struct {
	ID             int            `db:"id"`
	FirstName      string         `db:"first_name"`
	Surname        string         `db:"surname"`
	DOB            time.Time      `db:"dob"`
	Gender         string         `db:"gender"`
	YearGroup      int            `db:"year_group"`
	Mastery        string         `db:"mastery"`
	Email          string         `db:"email"`
	Subjects       pq.StringArray `db:"subjects"`
	GuardianName   string         `db:"guardian_name"`
	GuardianPhone  string         `db:"guardian_phone"`
	Address        string         `db:"address"`
	Nationality    string         `db:"nationality"`
	CountryOfBirth string         `db:"country_of_birth"`
	EnrolledAt     sql.NullTime   `db:"enrolled_at"`
	Conditions     string         `db:"conditions"`
	Medication     string         `db:"medication"`
	Allergies      string         `db:"allergies"`
	Needs          string         `db:"needs"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	st := student.Student{
		ID:        r.ID,
		FirstName: r.FirstName,
		Surname:   r.Surname,
		DOB:       r.DOB,
		Gender:    r.Gender,
		YearGroup: r.YearGroup,
		Mastery:   r.Mastery,
		Email:     r.Email,
		Subjects:  r.Subjects,
		Contact: student.Contact{
			GuardianName:   r.GuardianName,
			GuardianPhone:  r.GuardianPhone,
			Address:        r.Address,
			Nationality:    r.Nationality,
			CountryOfBirth: r.CountryOfBirth,
		},
		Medical: student.Medical{
			Conditions: r.Conditions,
			Medication: r.Medication,
			Allergies:  r.Allergies,
			Needs:      r.Needs,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.EnrolledAt.Valid {
		st.Contact.EnrolledAt = r.EnrolledAt.Time
	}
	return st
}

func toStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, len(rows))
	for i, r := range rows {
		students[i] = r.toStudent()
	}
	return students
}

// enrolledAtArg maps the zero time to NULL.
func enrolledAtArg(st student.Student) interface{} {
	if st.Contact.EnrolledAt.IsZero() {
		return nil
	}
	return st.Contact.EnrolledAt
}

// subjectsArg maps a nil slice to the empty array; the subjects column
// is NOT NULL.
func subjectsArg(st student.Student) pq.StringArray {
	if st.Subjects == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(st.Subjects)
}

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(email string, excluded ...student.Student) error {
	query := "SELECT COUNT(*) FROM student WHERE email = ?"
	args := []interface{}{email}
	if len(excluded) > 0 {
		ids := make([]int, len(excluded))
		for i, st := range excluded {
			ids[i] = st.ID
		}
		var err error
		query, args, err = sqlx.In(query+" AND id NOT IN (?)", email, ids)
		if err != nil {
			return errors.Wrap(err, "checking email uniqueness")
		}
	}

	var count int
	if err := repo.db.Get(&count, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	query := `
		INSERT INTO student (
			first_name, surname, dob, gender, year_group, mastery, email, subjects,
			guardian_name, guardian_phone, address, nationality, country_of_birth, enrolled_at,
			conditions, medication, allergies, needs, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + studentColumns

	var row studentRow
	err := repo.db.Get(
		&row, query,
		st.FirstName, st.Surname, st.DOB, st.Gender, st.YearGroup, st.Mastery, st.Email, subjectsArg(st),
		st.Contact.GuardianName, st.Contact.GuardianPhone, st.Contact.Address, st.Contact.Nationality,
		st.Contact.CountryOfBirth, enrolledAtArg(st),
		st.Medical.Conditions, st.Medical.Medication, st.Medical.Allergies, st.Medical.Needs,
		st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	query := fmt.Sprintf("SELECT %s FROM student ORDER BY id", studentColumns)
	if err := repo.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return toStudents(rows), nil
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	var row studentRow
	query := fmt.Sprintf("SELECT %s FROM student WHERE id = $1", studentColumns)
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	var row studentRow
	query := fmt.Sprintf("SELECT %s FROM student WHERE email = $1", studentColumns)
	if err := repo.db.Get(&row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	cond := func(clause string, vals ...interface{}) {
		for _, v := range vals {
			args = append(args, v)
		}
		where = append(where, clause)
	}

	if filter.YearGroup != 0 {
		cond(fmt.Sprintf("year_group = $%d", len(args)+1), filter.YearGroup)
	}
	if filter.Mastery != "" {
		cond(fmt.Sprintf("mastery = $%d", len(args)+1), filter.Mastery)
	}
	if filter.Search != "" {
		cond(
			fmt.Sprintf("(first_name || ' ' || surname ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+2),
			"%"+filter.Search+"%", "%"+filter.Search+"%",
		)
	}

	query := fmt.Sprintf("SELECT %s FROM student", studentColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	var rows []studentRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return toStudents(rows), nil
}

func (repo *studentRepository) UpdateStudent(st student.Student) (student.Student, error) {
	query := `
		UPDATE student SET
			first_name = $1, surname = $2, dob = $3, gender = $4, year_group = $5, mastery = $6,
			email = $7, subjects = $8,
			guardian_name = $9, guardian_phone = $10, address = $11, nationality = $12,
			country_of_birth = $13, enrolled_at = $14,
			conditions = $15, medication = $16, allergies = $17, needs = $18, updated_at = $19
		WHERE id = $20
		RETURNING ` + studentColumns

	var row studentRow
	err := repo.db.Get(
		&row, query,
		st.FirstName, st.Surname, st.DOB, st.Gender, st.YearGroup, st.Mastery,
		st.Email, subjectsArg(st),
		st.Contact.GuardianName, st.Contact.GuardianPhone, st.Contact.Address, st.Contact.Nationality,
		st.Contact.CountryOfBirth, enrolledAtArg(st),
		st.Medical.Conditions, st.Medical.Medication, st.Medical.Allergies, st.Medical.Needs,
		st.UpdatedAt, st.ID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	// timetable, attendance and behaviour rows cascade
	query, args, err := sqlx.In("DELETE FROM student WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

func (repo *studentRepository) GetTimetable(studentID int) ([]student.TimetableDay, error) {
	var rows []struct {
		Day     int            `db:"day"`
		Periods pq.StringArray `db:"periods"`
	}
	query := "SELECT day, periods FROM timetable_day WHERE student_id = $1 ORDER BY day"
	if err := repo.db.Select(&rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "getting timetable")
	}

	days := make([]student.TimetableDay, len(rows))
	for i, r := range rows {
		day := student.TimetableDay{Day: r.Day}
		copy(day.Periods[:], r.Periods)
		days[i] = day
	}
	return days, nil
}

func (repo *studentRepository) SaveTimetable(studentID int, days []student.TimetableDay) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "saving timetable")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec("DELETE FROM timetable_day WHERE student_id = $1", studentID); err != nil {
		return errors.Wrap(err, "saving timetable")
	}
	for _, day := range days {
		_, err = tx.Exec(
			"INSERT INTO timetable_day (student_id, day, periods) VALUES ($1, $2, $3)",
			studentID, day.Day, pq.StringArray(day.Periods[:]),
		)
		if err != nil {
			return errors.Wrap(err, "saving timetable")
		}
	}
	return errors.Wrap(tx.Commit(), "saving timetable")
}

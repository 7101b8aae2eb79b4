package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/teacher"
)

const teacherColumns = "id, first_name, surname, email, subject, mastery, role, is_active, password_hash, created_at, updated_at, last_login"

type teacherRow struct {
	ID           int          `db:"id"`
	FirstName    string       `db:"first_name"`
	Surname      string       `db:"surname"`
	Email        string       `db:"email"`
	Subject      string       `db:"subject"`
	Mastery      string       `db:"mastery"`
	Role         string       `db:"role"`
	IsActive     bool         `db:"is_active"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	t := teacher.Teacher{
		ID:           r.ID,
		FirstName:    r.FirstName,
		Surname:      r.Surname,
		Email:        r.Email,
		Subject:      r.Subject,
		Mastery:      r.Mastery,
		Role:         r.Role,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.LastLogin.Valid {
		t.LastLogin = r.LastLogin.Time
	}
	return t
}

func toTeachers(rows []teacherRow) []teacher.Teacher {
	teachers := make([]teacher.Teacher, len(rows))
	for i, r := range rows {
		teachers[i] = r.toTeacher()
	}
	return teachers
}

type teacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CheckEmailUniqueness(email string, excluded ...teacher.Teacher) error {
	query := "SELECT COUNT(*) FROM teacher WHERE email = ?"
	args := []interface{}{email}
	if len(excluded) > 0 {
		ids := make([]int, len(excluded))
		for i, t := range excluded {
			ids[i] = t.ID
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
		return teacher.ErrEmailExists
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(t teacher.Teacher) (teacher.Teacher, error) {
	query := `
		INSERT INTO teacher (first_name, surname, email, subject, mastery, role, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + teacherColumns

	var row teacherRow
	err := repo.db.Get(
		&row, query,
		t.FirstName, t.Surname, t.Email, t.Subject, t.Mastery, t.Role, t.IsActive, t.PasswordHash, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return row.toTeacher(), nil
}

func (repo *teacherRepository) QueryAllTeachers() ([]teacher.Teacher, error) {
	var rows []teacherRow
	query := fmt.Sprintf("SELECT %s FROM teacher ORDER BY id", teacherColumns)
	if err := repo.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return toTeachers(rows), nil
}

func (repo *teacherRepository) GetTeacherByID(id int) (teacher.Teacher, error) {
	var row teacherRow
	query := fmt.Sprintf("SELECT %s FROM teacher WHERE id = $1", teacherColumns)
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.toTeacher(), nil
}

func (repo *teacherRepository) GetTeacherByEmail(email string) (teacher.Teacher, error) {
	var row teacherRow
	query := fmt.Sprintf("SELECT %s FROM teacher WHERE email = $1", teacherColumns)
	if err := repo.db.Get(&row, query, email); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.toTeacher(), nil
}

func (repo *teacherRepository) FilterTeachers(filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	cond := func(clause string, vals ...interface{}) {
		for _, v := range vals {
			args = append(args, v)
		}
		where = append(where, clause)
	}

	if filter.Subject != "" {
		cond(fmt.Sprintf("subject = $%d", len(args)+1), filter.Subject)
	}
	if filter.Role != "" {
		cond(fmt.Sprintf("role = $%d", len(args)+1), filter.Role)
	}
	if filter.IsActive != nil {
		cond(fmt.Sprintf("is_active = $%d", len(args)+1), *filter.IsActive)
	}
	if filter.Search != "" {
		cond(
			fmt.Sprintf("(first_name || ' ' || surname ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+2),
			"%"+filter.Search+"%", "%"+filter.Search+"%",
		)
	}

	query := fmt.Sprintf("SELECT %s FROM teacher", teacherColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	var rows []teacherRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering teachers")
	}
	return toTeachers(rows), nil
}

// UpdateTeacher only saves set fields; zero values are kept as is.
func (repo *teacherRepository) UpdateTeacher(t teacher.Teacher, isActive *bool) (teacher.Teacher, error) {
	sets := make([]string, 0, 10)
	args := make([]interface{}, 0, 11)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if t.FirstName != "" {
		set("first_name", t.FirstName)
	}
	if t.Surname != "" {
		set("surname", t.Surname)
	}
	if t.Email != "" {
		set("email", t.Email)
	}
	if t.Subject != "" {
		set("subject", t.Subject)
	}
	if t.Mastery != "" {
		set("mastery", t.Mastery)
	}
	if t.Role != "" {
		set("role", t.Role)
	}
	if t.PasswordHash != nil {
		set("password_hash", t.PasswordHash)
	}
	if !t.LastLogin.IsZero() {
		set("last_login", t.LastLogin)
	}
	if !t.UpdatedAt.IsZero() {
		set("updated_at", t.UpdatedAt)
	}
	if isActive != nil {
		set("is_active", *isActive)
	}
	if len(sets) == 0 {
		return repo.GetTeacherByID(t.ID)
	}

	args = append(args, t.ID)
	query := fmt.Sprintf(
		"UPDATE teacher SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), teacherColumns,
	)

	var row teacherRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return row.toTeacher(), nil
}

func (repo *teacherRepository) DeleteTeachersByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM teacher WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	return nil
}

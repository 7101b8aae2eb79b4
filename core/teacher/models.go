package teacher

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/studsight/studsight/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

var AllRoles = []string{RoleAdmin, RoleTeacher}

type Teacher struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"first_name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	Subject      string    `json:"subject"` // department; empty for pure admins
	Mastery      string    `json:"mastery"` // mastery group they tutor, if any
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (t *Teacher) Name() string {
	return t.FirstName + " " + t.Surname
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

func (t *Teacher) IsAdmin() bool {
	return t.Role == RoleAdmin
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	FirstName       string `json:"first_name" validate:"required"`
	Surname         string `json:"surname" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Subject         string `json:"subject" validate:"omitempty,oneof=Mathematics English Science Computing History"`
	Mastery         string `json:"mastery"`
	Role            string `json:"role" validate:"omitempty,oneof=admin teacher"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nt *NewTeacher) Validate(svc *Service) error {
	nt.FirstName = core.TitleString(nt.FirstName)
	nt.Surname = core.TitleString(nt.Surname)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Mastery = strings.ToUpper(core.CleanString(nt.Mastery))
	if nt.Role == "" {
		nt.Role = RoleTeacher
	}

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkUniqueness(nt.Email)
}

// UpdateTeacher defines what information may be provided to modify an
// existing Teacher.
type UpdateTeacher struct {
	FirstName       string `json:"first_name"`
	Surname         string `json:"surname"`
	Email           string `json:"email" validate:"omitempty,email"`
	Subject         string `json:"subject" validate:"omitempty,oneof=Mathematics English Science Computing History"`
	Role            string `json:"role" validate:"omitempty,oneof=admin teacher"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, svc *Service) error {
	if ut.FirstName = core.TitleString(ut.FirstName); ut.FirstName == "" {
		ut.FirstName = orig.FirstName
	}
	if ut.Surname = core.TitleString(ut.Surname); ut.Surname == "" {
		ut.Surname = orig.Surname
	}
	if ut.Email = core.CleanString(ut.Email, true /* lower */); ut.Email == "" {
		ut.Email = orig.Email
	}

	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	if ut.Email != orig.Email {
		return svc.checkUniqueness(ut.Email, orig)
	}
	return nil
}

// ResetTeacherPassword carries the password reset confirmation payload.
type ResetTeacherPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetTeacherPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	// Search does a case-insensitive match on name or email.
	Search   string `query:"search"`
	Subject  string `query:"subject"`
	Role     string `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Subject == "" && qf.Role == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}

package teacher

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
)

var (
	// errors
	ErrNotFound           = errors.New("teacher not found")
	ErrEmailExists        = errors.New("a teacher with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminBulkDelete    = errors.New("admin accounts cannot be bulk-deleted")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excluded ...Teacher) error
		CreateTeacher(t Teacher) (Teacher, error)
		QueryAllTeachers() ([]Teacher, error)
		GetTeacherByID(id int) (Teacher, error)
		GetTeacherByEmail(email string) (Teacher, error)
		// FilterTeachers applies AND operation on available QueryFilter fields.
		FilterTeachers(filter QueryFilter) ([]Teacher, error)
		UpdateTeacher(t Teacher, isActive *bool) (Teacher, error)
		DeleteTeachersByID(ids ...int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkUniqueness(email string, excluded ...Teacher) error {
	if err := svc.repo.CheckEmailUniqueness(email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	t := Teacher{
		FirstName: nt.FirstName,
		Surname:   nt.Surname,
		Email:     nt.Email,
		Subject:   nt.Subject,
		Mastery:   nt.Mastery,
		Role:      nt.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}
	return svc.repo.CreateTeacher(t)
}

func (svc *Service) QueryAll() ([]Teacher, error) {
	return svc.repo.QueryAllTeachers()
}

func (svc *Service) GetByID(id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(id)
}

func (svc *Service) GetByEmail(email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(filter QueryFilter) ([]Teacher, error) {
	return svc.repo.FilterTeachers(filter)
}

func (svc *Service) Update(id int, ut UpdateTeacher) (Teacher, error) {
	t := Teacher{
		ID:        id,
		FirstName: ut.FirstName,
		Surname:   ut.Surname,
		Email:     ut.Email,
		Subject:   ut.Subject,
		Role:      ut.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if ut.Password != "" {
		if err := t.SetPassword(ut.Password); err != nil {
			return Teacher{}, err
		}
	}
	return svc.repo.UpdateTeacher(t, ut.IsActive)
}

// Delete removes the given teachers. Admin accounts are refused so a
// bulk cleanup cannot lock everyone out.
func (svc *Service) Delete(ids ...int) error {
	for _, id := range ids {
		t, err := svc.repo.GetTeacherByID(id)
		if err != nil {
			return err
		}
		if t.IsAdmin() {
			return ErrAdminBulkDelete
		}
	}
	return svc.repo.DeleteTeachersByID(ids...)
}

// Authenticate verifies the credentials and records the login time.
func (svc *Service) Authenticate(email, password string) (Teacher, error) {
	t, err := svc.GetByEmail(email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Teacher{}, ErrInvalidCredentials
		}
		return Teacher{}, err
	}
	if !t.IsActive {
		return Teacher{}, ErrInvalidCredentials
	}
	if err = t.CheckPassword(password); err != nil {
		return Teacher{}, ErrInvalidCredentials
	}

	t.LastLogin = time.Now().UTC()
	t.UpdatedAt = t.LastLogin
	return svc.repo.UpdateTeacher(t, nil)
}

// RequestPasswordReset emails the teacher a single-use reset link made
// of their encoded ID and a signed token.
func (svc *Service) RequestPasswordReset(email string) error {
	t, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	token, err := MakeToken(t)
	if err != nil {
		return errors.Wrap(err, "generating reset token")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: t.Name(), Address: t.Email}},
		Subject: fmt.Sprintf("[%s] Password reset", core.Conf.AppName),
		Body: fmt.Sprintf(
			"Hello %s,\n\nUse the credentials below to reset your password. "+
				"They expire after %d days.\n\nUID: %s\nToken: %s\n",
			t.FirstName,
			int(core.Conf.PasswordResetTimeoutDelta/(24*time.Hour)),
			EncodeUID(t),
			token,
		),
	})
	return nil
}

// ResetPassword verifies the reset token and sets the new password.
func (svc *Service) ResetPassword(rp ResetTeacherPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	t, err := svc.repo.GetTeacherByID(id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(t, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err = t.SetPassword(rp.Password); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateTeacher(t, nil)
	return err
}

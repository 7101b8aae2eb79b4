package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/teacher"
)

var errTchrNotFoundInCtx = errors.New("teacher object not found in echo.Context")

type teacherApi struct {
	svc *teacher.Service
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *teacher.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/teachers")

	// un-authed endpoints
	tg.POST("/login", api.login)
	tg.POST("/password-reset", api.resetPassword)
	tg.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := tg.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/register", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.DELETE("", api.destroyMultiple, adminMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", ctxTeacherOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	tchr, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tchr)
}

func (api *teacherApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *teacherApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(data.Email); !(err == nil || errors.Cause(err) == teacher.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *teacherApi) confirmPasswordReset(ctx echo.Context) error {
	var data teacher.ResetTeacherPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetTeacherPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *teacherApi) query(ctx echo.Context) error {
	filter := new(teacher.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []teacher.Teacher{})
	}

	teachers, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	tchr, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTchrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) update(ctx echo.Context) error {
	tchr, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTchrNotFoundInCtx, "retrieving object from context")
	}

	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}

	ctxTchr, err := getContextTeacher(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	if !ctxTchr.IsAdmin() {
		// `IsActive`, `Role` and `Email` can only be changed by admin
		if data.IsActive != nil || data.Role != "" || data.Email != "" {
			return errHttpForbidden
		}
	}

	if err := data.Validate(tchr, api.svc); err != nil {
		return err
	}

	tchr, err = api.svc.Update(tchr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	tchr, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTchrNotFoundInCtx, "retrieving object from context")
	}

	// ctxTeacher cannot delete themselves
	ctxTchr, err := getContextTeacher(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	if tchr.ID == ctxTchr.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(tchr.ID); err != nil {
		if errors.Cause(err) == teacher.ErrAdminBulkDelete {
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxTeacher cannot delete themselves
	ctxTchr, err := getContextTeacher(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	for _, id := range query.IDs {
		if id == ctxTchr.ID {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(query.IDs...); err != nil {
		if errors.Cause(err) == teacher.ErrAdminBulkDelete {
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting teachers")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func ctxTeacherOrAdminMiddleware(svc *teacher.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxTchr, err := getContextTeacher(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context teacher")
			}

			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}
			if id == ctxTchr.ID || ctxTchr.IsAdmin() {
				if tchr, err := svc.GetByID(id); err == nil {
					ctx.Set("object", tchr)
					return next(ctx)
				} else if errors.Cause(err) != teacher.ErrNotFound {
					return errors.Wrap(err, "finding teacher by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []int `query:"id"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}

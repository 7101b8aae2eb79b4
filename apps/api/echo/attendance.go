package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/teacher"
)

type attendanceApi struct {
	svc        *attendance.Service
	teacherSvc *teacher.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, teacherSvc *teacher.Service) {
	api := attendanceApi{svc: svc, teacherSvc: teacherSvc}

	ag := g.Group("/attendance", jwt)
	ag.GET("/register", api.currentRegister)
	ag.POST("/marks", api.mark)
	ag.GET("/schedule", api.schedule)
}

// Handlers

// currentRegister resolves the class in front of the requesting teacher
// right now and returns the register to mark.
func (api *attendanceApi) currentRegister(ctx echo.Context) error {
	tchr, err := getContextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}

	reg, err := api.svc.CurrentRegister(tchr, NowFunc())
	if err != nil {
		switch errors.Cause(err) {
		case attendance.ErrSchoolClosed, attendance.ErrOutsideHours, attendance.ErrNoClass:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "resolving current register")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	teacherID := claimsSubjectID(claims)

	mark, err := api.svc.Mark(teacherID, data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, mark)
}

func (api *attendanceApi) schedule(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, attendance.BellSchedule)
}

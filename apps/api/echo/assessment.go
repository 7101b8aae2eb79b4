package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/student"
)

type assessmentApi struct {
	svc *assessment.Service
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assessment.Service) {
	api := assessmentApi{svc: svc}

	ag := g.Group("/assessments", jwt)
	ag.GET("/types", api.queryTypes)
	ag.POST("", api.log)
}

// Handlers

func (api *assessmentApi) queryTypes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, assessment.Types)
}

func (api *assessmentApi) log(ctx echo.Context) error {
	var data assessment.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.Log(data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound:
			return errHttpNotFound
		case assessment.ErrTooManyAssessments:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

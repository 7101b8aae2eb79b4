package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/behaviour"
)

type behaviourApi struct {
	svc *behaviour.Service
}

func registerBehaviourAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *behaviour.Service) {
	api := behaviourApi{svc: svc}

	bg := g.Group("/behaviour", jwt)
	bg.GET("/types", api.queryTypes)
	bg.POST("/events", api.log)
}

// Handlers

func (api *behaviourApi) queryTypes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, behaviour.Types)
}

func (api *behaviourApi) log(ctx echo.Context) error {
	var data behaviour.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	events, err := api.svc.Log(claimsSubjectID(claims), data)
	if err != nil {
		return errors.Wrap(err, "logging behaviour")
	}
	return ctx.JSON(http.StatusCreated, events)
}

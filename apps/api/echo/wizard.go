package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
	"github.com/studsight/studsight/core/wizard"
)

// wizardDefinitions maps form targets to the step definitions clients
// render their multi-step forms from.
var wizardDefinitions = map[string]func() wizard.Definition{
	student.RegistrationFormTarget: student.RegistrationDefinition,
	teacher.RegistrationFormTarget: teacher.RegistrationDefinition,
}

func registerWizardAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	wg := g.Group("/wizards", jwt)
	wg.GET("", queryWizards)
	wg.GET("/:target", retrieveWizard)
}

func queryWizards(ctx echo.Context) error {
	targets := make([]string, 0, len(wizardDefinitions))
	for target := range wizardDefinitions {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return ctx.JSON(http.StatusOK, targets)
}

func retrieveWizard(ctx echo.Context) error {
	def, ok := wizardDefinitions[ctx.Param("target")]
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, def())
}

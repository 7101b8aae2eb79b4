package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/analytics"
	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/behaviour"
	"github.com/studsight/studsight/core/student"
)

type studentApi struct {
	svc        *student.Service
	attendance *attendance.Service
	behaviour  *behaviour.Service
	assessment *assessment.Service
	analytics  *analytics.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := studentApi{
		svc:        deps.StudentSvc,
		attendance: deps.AttendanceSvc,
		behaviour:  deps.BehaviourSvc,
		assessment: deps.AssessmentSvc,
		analytics:  deps.AnalyticsSvc,
	}

	sg := g.Group("/students", jwt)

	// any authed teacher
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.GET("/:id/timetable", api.timetable)
	sg.GET("/:id/attendance", api.attendanceMarks)
	sg.GET("/:id/behaviour", api.behaviourEvents)
	sg.GET("/:id/assessments", api.assessments)
	sg.GET("/:id/assessments/summary", api.assessmentSummary)
	sg.GET("/:id/analytics", api.weekComparison)
	sg.GET("/:id/report", api.report)
	sg.POST("/:id/flag", api.flag)

	// admin only
	ag := sg.Group("", adminMiddleware())
	ag.POST("/register", api.create)
	ag.POST("/import", api.importCSV)
	ag.POST("/import-mapped", api.importMapped)
	ag.DELETE("", api.destroyMultiple)
	ag.PUT("/:id", api.update)
	ag.PUT("/:id/timetable", api.setTimetable)
	ag.DELETE("/:id", api.destroy)
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	st, err := api.svc.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}

	students, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	st, err := api.svc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.GetByID(id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	if err := api.svc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) importCSV(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "csv file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	res, err := api.svc.ImportCSV(src)
	if err != nil {
		var mismatch *student.HeadersMismatchError
		if errors.As(err, &mismatch) {
			return ctx.JSON(http.StatusBadRequest, HeadersMismatchResponse{
				Error:           mismatch.Error(),
				Headers:         mismatch.Headers,
				ExpectedHeaders: student.ExpectedHeaders,
			})
		}
		if errors.Cause(err) == student.ErrEmptyImport {
			return core.NewValidationError(nil, core.FieldError{Field: "file", Error: err.Error()})
		}
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) importMapped(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "csv file is required"})
	}

	var mapping student.HeaderMapping
	if raw := ctx.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "mapping", Error: "invalid header mapping"})
		}
	}
	if len(mapping) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "mapping", Error: "header mapping is required"})
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	res, err := api.svc.ImportMapped(src, mapping)
	if err != nil {
		if errors.Cause(err) == student.ErrEmptyImport {
			return core.NewValidationError(nil, core.FieldError{Field: "file", Error: err.Error()})
		}
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) timetable(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	days, err := api.svc.Timetable(id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting timetable")
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *studentApi) setTimetable(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var days []student.TimetableDay
	if err := ctx.Bind(&days); err != nil {
		return errors.Wrap(err, "binding to []TimetableDay")
	}

	if err := api.svc.SetTimetable(id, days); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}

	days, err = api.svc.Timetable(id)
	if err != nil {
		return errors.Wrap(err, "getting timetable")
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *studentApi) flag(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data FlagRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FlagRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	post, err := api.svc.Flag(id, claimsSubjectID(claims), data.Subject, data.DeptEmail)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *studentApi) attendanceMarks(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rng, err := bindDateRange(ctx)
	if err != nil {
		return err
	}

	marks, err := api.attendance.StudentMarks(id, rng.From, rng.To)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if marks == nil {
		marks = []attendance.Mark{}
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *studentApi) behaviourEvents(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	rng, err := bindDateRange(ctx)
	if err != nil {
		return err
	}

	events, err := api.behaviour.StudentEvents(id, rng.From, rng.To)
	if err != nil {
		return errors.Wrap(err, "querying behaviour")
	}
	if events == nil {
		events = []behaviour.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *studentApi) assessments(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	as, err := api.assessment.StudentAssessments(id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying assessments")
	}
	if as == nil {
		as = []assessment.Assessment{}
	}
	return ctx.JSON(http.StatusOK, as)
}

func (api *studentApi) assessmentSummary(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	summaries, err := api.assessment.StudentSummary(id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "summarising assessments")
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *studentApi) weekComparison(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	cmp, err := api.analytics.Compare(id, NowFunc())
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "comparing weeks")
	}
	return ctx.JSON(http.StatusOK, WeekComparisonResponse{
		WeekComparison: cmp,
		Series:         cmp.Series(),
	})
}

func (api *studentApi) report(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	cmp, err := api.analytics.Compare(id, NowFunc())
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "comparing weeks")
	}
	return ctx.String(http.StatusOK, cmp.Report())
}

type (
	FlagRequest struct {
		Subject   string `json:"subject" validate:"required,oneof=Mathematics English Science Computing History"`
		DeptEmail string `json:"dept_email" validate:"required,email"`
	}

	HeadersMismatchResponse struct {
		Error           string   `json:"error"`
		Headers         []string `json:"headers"`
		ExpectedHeaders []string `json:"expected_headers"`
	}

	WeekComparisonResponse struct {
		analytics.WeekComparison
		Series []analytics.SeriesPoint `json:"series"`
	}
)

func (fr *FlagRequest) Validate() error {
	fr.DeptEmail = core.CleanString(fr.DeptEmail, true /* lower */)
	return core.Validate.Struct(fr)
}

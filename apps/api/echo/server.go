package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/analytics"
	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/behaviour"
	"github.com/studsight/studsight/core/board"
	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
)

type (
	// Deps holds the services the API serves.
	Deps struct {
		Logger        core.Logger
		TeacherSvc    *teacher.Service
		StudentSvc    *student.Service
		AttendanceSvc *attendance.Service
		BehaviourSvc  *behaviour.Service
		AssessmentSvc *assessment.Service
		AnalyticsSvc  *analytics.Service
		BoardSvc      *board.Service

		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		addr         string
		deps         *Deps
		app          *echo.Echo
		serverErrors chan error
		shutdown     chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, deps *Deps) Server {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s := &server{
		addr:         addr,
		deps:         deps,
		app:          echo.New(),
		serverErrors: make(chan error, 1),
		shutdown:     shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.TeacherSvc, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerTeacherAPI(v1, jwt, s.deps.TeacherSvc)
	registerStudentAPI(v1, jwt, s.deps)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc, s.deps.TeacherSvc)
	registerBehaviourAPI(v1, jwt, s.deps.BehaviourSvc)
	registerAssessmentAPI(v1, jwt, s.deps.AssessmentSvc)
	registerBoardAPI(v1, jwt, s.deps.BoardSvc)
	registerWizardAPI(v1, jwt)
}

func (s *server) Start() {
	s.serverErrors <- s.app.Start(s.addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.serverErrors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown initiates a graceful shutdown when an integrity issue is caught.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}

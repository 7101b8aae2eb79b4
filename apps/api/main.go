package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/studsight/studsight/apps/api/echo"
	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/analytics"
	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/behaviour"
	"github.com/studsight/studsight/core/board"
	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
	emailsvc "github.com/studsight/studsight/services/email"
	logsvc "github.com/studsight/studsight/services/logger"
	"github.com/studsight/studsight/storage/database"
	sqlxrepos "github.com/studsight/studsight/storage/database/sqlx"
)

func main() {
	conf := core.Conf

	// set up loggers
	logger := newLogger("API : ", conf)
	dbLogger := newLogger("DB : ", conf)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	boardSvc := board.NewService(sqlxrepos.NewBoardRepository(db), student.Subjects)
	tchrSvc := teacher.NewService(sqlxrepos.NewTeacherRepository(db), mailSvc)
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db), boardSvc, mailSvc, logger)
	attSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db))
	behSvc := behaviour.NewService(sqlxrepos.NewBehaviourRepository(db))
	assSvc := assessment.NewService(sqlxrepos.NewAssessmentRepository(db), stdSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.Host+":6060", http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Server.Addr,
		&echoapi.Deps{
			Logger:        logger,
			TeacherSvc:    tchrSvc,
			StudentSvc:    stdSvc,
			AttendanceSvc: attSvc,
			BehaviourSvc:  behSvc,
			AssessmentSvc: assSvc,
			AnalyticsSvc:  analytics.NewService(stdSvc, attSvc, behSvc),
			BoardSvc:      boardSvc,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// newLogger reports to Rollbar outside Debug mode, stdout otherwise.
func newLogger(prefix string, conf *core.Config) core.Logger {
	std := log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if conf.Debug || conf.RollbarToken == "" {
		return logsvc.NewStdLogger(std)
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(true)
	return logger
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

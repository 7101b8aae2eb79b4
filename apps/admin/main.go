package main

import (
	"log"
	"os"

	"github.com/studsight/studsight/core"
	"github.com/studsight/studsight/core/board"
	"github.com/studsight/studsight/core/student"
	emailsvc "github.com/studsight/studsight/services/email"
	"github.com/studsight/studsight/storage/database"
	sqlxrepos "github.com/studsight/studsight/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	mailSvc := emailsvc.NewConsoleService()
	boardSvc := board.NewService(sqlxrepos.NewBoardRepository(db), student.Subjects)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		tchrRepo: sqlxrepos.NewTeacherRepository(db),
		stdSvc:   student.NewService(sqlxrepos.NewStudentRepository(db), boardSvc, mailSvc, nil),
		in:       os.Stdin,
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

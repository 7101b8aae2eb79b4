// Package inmemdb provides in-memory repository implementations used
// by tests and local development.
package inmemdb

import (
	"sync"

	"github.com/studsight/studsight/core/assessment"
	"github.com/studsight/studsight/core/attendance"
	"github.com/studsight/studsight/core/behaviour"
	"github.com/studsight/studsight/core/board"
	"github.com/studsight/studsight/core/student"
	"github.com/studsight/studsight/core/teacher"
)

type (
	DB struct {
		teacher    *teacherTable
		student    *studentTable
		attendance *attendanceTable
		behaviour  *behaviourTable
		assessment *assessmentTable
		board      *boardTable
	}

	teacherTable struct {
		table  map[int]*teacher.Teacher
		lastID int
		mutex  sync.RWMutex
	}

	studentTable struct {
		table      map[int]*student.Student
		timetables map[int][]student.TimetableDay
		lastID     int
		mutex      sync.RWMutex
	}

	attendanceTable struct {
		table  []attendance.Mark
		lastID int
		mutex  sync.RWMutex
	}

	behaviourTable struct {
		table  []behaviour.Event
		lastID int
		mutex  sync.RWMutex
	}

	assessmentTable struct {
		table  []assessment.Assessment
		lastID int
		mutex  sync.RWMutex
	}

	boardTable struct {
		table  map[int]*board.Post
		lastID int
		mutex  sync.RWMutex
	}
)

// Reset drops all rows; tests call it between cases.
func (db *DB) Reset() {
	db.teacher.mutex.Lock()
	db.teacher.table = make(map[int]*teacher.Teacher)
	db.teacher.lastID = 0
	db.teacher.mutex.Unlock()

	db.student.mutex.Lock()
	db.student.table = make(map[int]*student.Student)
	db.student.timetables = make(map[int][]student.TimetableDay)
	db.student.lastID = 0
	db.student.mutex.Unlock()

	db.attendance.mutex.Lock()
	db.attendance.table = nil
	db.attendance.lastID = 0
	db.attendance.mutex.Unlock()

	db.behaviour.mutex.Lock()
	db.behaviour.table = nil
	db.behaviour.lastID = 0
	db.behaviour.mutex.Unlock()

	db.assessment.mutex.Lock()
	db.assessment.table = nil
	db.assessment.lastID = 0
	db.assessment.mutex.Unlock()

	db.board.mutex.Lock()
	db.board.table = make(map[int]*board.Post)
	db.board.lastID = 0
	db.board.mutex.Unlock()
}

func Open() (*DB, error) {
	db := &DB{
		teacher: &teacherTable{table: make(map[int]*teacher.Teacher)},
		student: &studentTable{
			table:      make(map[int]*student.Student),
			timetables: make(map[int][]student.TimetableDay),
		},
		attendance: &attendanceTable{},
		behaviour:  &behaviourTable{},
		assessment: &assessmentTable{},
		board:      &boardTable{table: make(map[int]*board.Post)},
	}
	return db, nil
}

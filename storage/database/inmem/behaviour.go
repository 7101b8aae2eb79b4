package inmemdb

import (
	"time"

	"github.com/studsight/studsight/core/behaviour"
)

type behaviourRepository struct {
	db *behaviourTable
}

func NewBehaviourRepository(db *DB) behaviour.Repository {
	return &behaviourRepository{db: db.behaviour}
}

func (repo *behaviourRepository) CreateEvent(ev behaviour.Event) (behaviour.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lastID++
	ev.ID = repo.db.lastID
	repo.db.table = append(repo.db.table, ev)
	return ev, nil
}

func (repo *behaviourRepository) QueryEventsByStudentBetween(studentID int, from, to time.Time) ([]behaviour.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var res []behaviour.Event
	for _, ev := range repo.db.table {
		if ev.StudentID == studentID && !ev.Date.Before(from) && !ev.Date.After(to) {
			res = append(res, ev)
		}
	}
	return res, nil
}

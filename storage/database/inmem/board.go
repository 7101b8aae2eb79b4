package inmemdb

import (
	"sort"

	"github.com/studsight/studsight/core/board"
)

type boardRepository struct {
	db *boardTable
}

func NewBoardRepository(db *DB) board.Repository {
	return &boardRepository{db: db.board}
}

func (repo *boardRepository) CreatePost(post board.Post) (board.Post, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.lastID++
	post.ID = repo.db.lastID
	repo.db.table[post.ID] = &post
	return post, nil
}

func (repo *boardRepository) QueryPostsByBoard(name string) ([]board.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var res []board.Post
	for _, p := range repo.db.table {
		if p.Board == name {
			res = append(res, *p)
		}
	}
	// newest first
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (repo *boardRepository) GetPostByID(id int) (board.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return board.Post{}, board.ErrNotFound
}

func (repo *boardRepository) DeletePostsByID(ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

package sqlxrepos

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/board"
)

const postColumns = "id, board, title, content, author_id, attachment, filename, created_at"

type postRow struct {
	ID         int       `db:"id"`
	Board      string    `db:"board"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	AuthorID   int       `db:"author_id"`
	Attachment []byte    `db:"attachment"`
	Filename   string    `db:"filename"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r postRow) toPost() board.Post {
	return board.Post{
		ID:         r.ID,
		Board:      r.Board,
		Title:      r.Title,
		Content:    r.Content,
		AuthorID:   r.AuthorID,
		Attachment: r.Attachment,
		Filename:   r.Filename,
		CreatedAt:  r.CreatedAt,
	}
}

type boardRepository struct {
	db *sqlx.DB
}

func NewBoardRepository(db *sqlx.DB) board.Repository {
	return &boardRepository{db: db}
}

func (repo *boardRepository) CreatePost(post board.Post) (board.Post, error) {
	query := `
		INSERT INTO post (board, title, content, author_id, attachment, filename, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + postColumns

	var row postRow
	err := repo.db.Get(&row, query, post.Board, post.Title, post.Content, post.AuthorID, post.Attachment, post.Filename, post.CreatedAt)
	if err != nil {
		return board.Post{}, errors.Wrap(err, "creating post")
	}
	return row.toPost(), nil
}

func (repo *boardRepository) QueryPostsByBoard(name string) ([]board.Post, error) {
	var rows []postRow
	query := fmt.Sprintf("SELECT %s FROM post WHERE board = $1 ORDER BY created_at DESC, id DESC", postColumns)
	if err := repo.db.Select(&rows, query, name); err != nil {
		return nil, errors.Wrap(err, "querying posts")
	}

	posts := make([]board.Post, len(rows))
	for i, r := range rows {
		posts[i] = r.toPost()
	}
	return posts, nil
}

func (repo *boardRepository) GetPostByID(id int) (board.Post, error) {
	var row postRow
	query := fmt.Sprintf("SELECT %s FROM post WHERE id = $1", postColumns)
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return board.Post{}, board.ErrNotFound
		}
		return board.Post{}, errors.Wrap(err, "getting post")
	}
	return row.toPost(), nil
}

func (repo *boardRepository) DeletePostsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM post WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting posts")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting posts")
	}
	return nil
}

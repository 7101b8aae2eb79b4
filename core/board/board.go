// Package board implements the staff message boards: a general board
// plus one board per subject department. Posts carry an optional binary
// attachment. Student help flags land here as posts on the flagging
// teacher's subject board.
package board

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
)

// BoardGeneral is the school-wide board; the subject boards are named
// after the subjects themselves.
const BoardGeneral = "General"

var (
	// errors
	ErrNotFound     = errors.New("post not found")
	ErrUnknownBoard = errors.New("unknown board")
	ErrNotAuthor    = errors.New("only the author may delete this post")
)

type (
	Post struct {
		ID         int       `json:"id"`
		Board      string    `json:"board"`
		Title      string    `json:"title"`
		Content    string    `json:"content"`
		AuthorID   int       `json:"author_id"`
		Attachment []byte    `json:"-"`
		Filename   string    `json:"filename,omitempty"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	// NewPost contains information needed to publish a Post.
	NewPost struct {
		Board      string `json:"board" validate:"required"`
		Title      string `json:"title" validate:"required"`
		Content    string `json:"content" validate:"required"`
		AuthorID   int    `json:"-"`
		Attachment []byte `json:"-"`
		Filename   string `json:"filename"`
	}

	Repository interface {
		CreatePost(post Post) (Post, error)
		QueryPostsByBoard(name string) ([]Post, error)
		GetPostByID(id int) (Post, error)
		DeletePostsByID(ids ...int) error
	}

	Service struct {
		repo   Repository
		boards []string
	}
)

func NewService(repo Repository, subjects []string) *Service {
	boards := make([]string, 0, len(subjects)+1)
	boards = append(boards, BoardGeneral)
	boards = append(boards, subjects...)
	return &Service{repo: repo, boards: boards}
}

// Boards lists the available boards, the general one first.
func (svc *Service) Boards() []string { return svc.boards }

func (svc *Service) knownBoard(name string) bool {
	for _, b := range svc.boards {
		if b == name {
			return true
		}
	}
	return false
}

func (np *NewPost) Validate() error {
	np.Board = core.CleanString(np.Board)
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return core.Validate.Struct(np)
}

func (svc *Service) Create(np NewPost) (Post, error) {
	if !svc.knownBoard(np.Board) {
		return Post{}, core.NewValidationError(ErrUnknownBoard, core.FieldError{Field: "board", Error: ErrUnknownBoard.Error()})
	}
	return svc.repo.CreatePost(Post{
		Board:      np.Board,
		Title:      np.Title,
		Content:    np.Content,
		AuthorID:   np.AuthorID,
		Attachment: np.Attachment,
		Filename:   np.Filename,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) QueryByBoard(name string) ([]Post, error) {
	if !svc.knownBoard(name) {
		return nil, ErrUnknownBoard
	}
	return svc.repo.QueryPostsByBoard(name)
}

func (svc *Service) GetByID(id int) (Post, error) {
	return svc.repo.GetPostByID(id)
}

// Delete removes a post. Admins may delete any post; other authors only
// their own.
func (svc *Service) Delete(id, requesterID int, isAdmin bool) error {
	post, err := svc.repo.GetPostByID(id)
	if err != nil {
		return err
	}
	if !isAdmin && post.AuthorID != requesterID {
		return ErrNotAuthor
	}
	return svc.repo.DeletePostsByID(id)
}

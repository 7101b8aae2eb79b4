package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studsight/studsight/core/board"
)

type boardApi struct {
	svc *board.Service
}

func registerBoardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *board.Service) {
	api := boardApi{svc: svc}

	bg := g.Group("/boards", jwt)
	bg.GET("", api.queryBoards)
	bg.GET("/:name/posts", api.queryPosts)
	bg.POST("/posts", api.create)
	bg.GET("/posts/:id", api.retrieve)
	bg.GET("/posts/:id/attachment", api.attachment)
	bg.DELETE("/posts/:id", api.destroy)
}

// Handlers

func (api *boardApi) queryBoards(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Boards())
}

func (api *boardApi) queryPosts(ctx echo.Context) error {
	posts, err := api.svc.QueryByBoard(ctx.Param("name"))
	if err != nil {
		if errors.Cause(err) == board.ErrUnknownBoard {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying posts")
	}
	if posts == nil {
		posts = []board.Post{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

// create accepts either a JSON body or a multipart form with an
// optional `attachment` file.
func (api *boardApi) create(ctx echo.Context) error {
	var data board.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}

	if file, err := ctx.FormFile("attachment"); err == nil {
		src, err := file.Open()
		if err != nil {
			return errors.Wrap(err, "opening attachment")
		}
		data.Attachment, err = ioutil.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return errors.Wrap(err, "reading attachment")
		}
		data.Filename = file.Filename
		data.Board = ctx.FormValue("board")
		data.Title = ctx.FormValue("title")
		data.Content = ctx.FormValue("content")
	}

	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.AuthorID = claimsSubjectID(claims)

	post, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *boardApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	post, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == board.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting post")
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *boardApi) attachment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	post, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == board.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting post")
	}
	if post.Attachment == nil {
		return errHttpNotFound
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+post.Filename+`"`)
	return ctx.Blob(http.StatusOK, echo.MIMEOctetStream, post.Attachment)
}

func (api *boardApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(id, claimsSubjectID(claims), claims.IsAdmin); err != nil {
		switch errors.Cause(err) {
		case board.ErrNotFound:
			return errHttpNotFound
		case board.ErrNotAuthor:
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}

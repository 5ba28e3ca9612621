package authors

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/display"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	authorService *Service
}

type listPage struct {
	Title   string
	Authors []*models.Author
}

type detailPage struct {
	Title  string
	Author *models.Author
	Books  []*models.Book
}

type formPage struct {
	Title  string
	Form   AuthorPayload
	Errors []errcodes.FieldViolation
}

type deletePage struct {
	Title  string
	Author *models.Author
	Books  []*models.Book
}

// authorID returns the id route param, or false when it can't name an author.
func authorID(c echo.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx, ListAuthorsOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_list", listPage{
		Title:   "Author List",
		Authors: authors,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := authorID(c)
	if !ok {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.authorService.GetBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_detail", detailPage{
		Title:  "Author Detail",
		Author: author,
		Books:  books,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, "Create Author", AuthorPayload{}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := AuthorPayload{}
	if err := c.Bind(&params); err != nil {
		if vf, ok := errcodes.AsValidationFailure(err); ok {
			return h.renderForm(c, "Create Author", params, vf.Violations)
		}
		return errors.WithStack(err)
	}

	author, err := params.author("")
	if err != nil {
		return errors.WithStack(err)
	}
	err = h.authorService.CreateAuthor(ctx, author)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("author created", logger.Data{"author_id": author.ID})

	return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorURL(author)))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := authorID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Author")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.authorService.GetBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderDelete(c, author, books)
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := authorID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Author")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.authorService.GetBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(books) > 0 {
		return h.renderDelete(c, author, books)
	}

	err = h.authorService.DeleteAuthor(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("author deleted", logger.Data{"author_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := authorID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Author")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorsPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, "Update Author", payloadFromAuthor(author), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := authorID(c)
	if !ok {
		return errcodes.NotFound("Author")
	}

	params := AuthorPayload{}
	if err := c.Bind(&params); err != nil {
		if vf, ok := errcodes.AsValidationFailure(err); ok {
			return h.renderForm(c, "Update Author", params, vf.Violations)
		}
		return errors.WithStack(err)
	}

	author, err := params.author(id)
	if err != nil {
		return errors.WithStack(err)
	}
	err = h.authorService.UpdateAuthor(ctx, author, UpdateAuthorOptions{
		Columns: authorColumns,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("author updated", logger.Data{"author_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.AuthorURL(author)))
}

func (h *handler) renderForm(c echo.Context, title string, params AuthorPayload, violations []errcodes.FieldViolation) error {
	return errors.WithStack(c.Render(http.StatusOK, "author_form", formPage{
		Title:  title,
		Form:   params,
		Errors: violations,
	}))
}

func (h *handler) renderDelete(c echo.Context, author *models.Author, books []*models.Book) error {
	return errors.WithStack(c.Render(http.StatusOK, "author_delete", deletePage{
		Title:  "Delete Author",
		Author: author,
		Books:  books,
	}))
}

package books

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/authors"
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/display"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/genres"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService   *Service
	authorService *authors.Service
	genreService  *genres.Service
}

type listPage struct {
	Title string
	Books []*View
}

type detailPage struct {
	Title     string
	Book      *View
	Instances []*models.BookInstance
}

type formPage struct {
	Title   string
	Form    BookPayload
	Authors []*models.Author
	Genres  []*models.Genre
	Errors  []errcodes.FieldViolation
}

type deletePage struct {
	Title     string
	Book      *View
	Instances []*models.BookInstance
}

func bookID(c echo.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBookViews(ctx, ListBooksOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_list", listPage{
		Title: "Book List",
		Books: books,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookID(c)
	if !ok {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBookView(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	instances, err := h.bookService.GetInstances(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_detail", detailPage{
		Title:     book.Title,
		Book:      book,
		Instances: instances,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, "Create Book", BookPayload{Genre: []string{}}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params, vf, err := h.bind(c)
	if err != nil {
		return errors.WithStack(err)
	}
	if vf.Err() != nil {
		return h.renderForm(c, "Create Book", params, vf.Violations)
	}

	book := params.book("")
	err = h.bookService.CreateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("book created", logger.Data{"book_id": book.ID})

	return errors.WithStack(c.Redirect(http.StatusFound, display.BookURL(book)))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
	}

	book, err := h.bookService.RetrieveBookView(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Book")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	instances, err := h.bookService.GetInstances(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderDelete(c, book, instances)
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := bookID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
	}

	book, err := h.bookService.RetrieveBookView(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Book")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	instances, err := h.bookService.GetInstances(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(instances) > 0 {
		return h.renderDelete(c, book, instances)
	}

	err = h.bookService.DeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("book deleted", logger.Data{"book_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Book")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BooksPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, "Update Book", payloadFromBook(book), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := bookID(c)
	if !ok {
		return errcodes.NotFound("Book")
	}

	params, vf, err := h.bind(c)
	if err != nil {
		return errors.WithStack(err)
	}
	if vf.Err() != nil {
		return h.renderForm(c, "Update Book", params, vf.Violations)
	}

	book := params.book(id)
	err = h.bookService.UpdateBook(ctx, book, UpdateBookOptions{
		Columns:      bookColumns,
		UpdateGenres: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("book updated", logger.Data{"book_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.BookURL(book)))
}

// bind binds the book form and checks that the author and genres it refers
// to exist. Violations are returned separately from unexpected errors.
func (h *handler) bind(c echo.Context) (BookPayload, *errcodes.ValidationFailure, error) {
	params := BookPayload{}
	vf := &errcodes.ValidationFailure{}
	if err := c.Bind(&params); err != nil {
		failure, ok := errcodes.AsValidationFailure(err)
		if !ok {
			return params, nil, errors.WithStack(err)
		}
		vf = failure
	}
	params.Genre = binder.NormalizeList(params.Genre)

	if err := h.checkReferences(c.Request().Context(), params, vf); err != nil {
		return params, nil, err
	}
	return params, vf, nil
}

func (h *handler) checkReferences(ctx context.Context, params BookPayload, vf *errcodes.ValidationFailure) error {
	if !vf.Has("author") {
		_, err := h.authorService.RetrieveAuthor(ctx, authors.RetrieveAuthorOptions{
			ID: &params.Author,
		})
		if errors.Is(err, errcodes.NotFound("Author")) {
			vf.Add("author", `"author" must be an existing author`)
		} else if err != nil {
			return errors.WithStack(err)
		}
	}

	if !vf.Has("genre") && len(params.Genre) > 0 {
		ids := uniqueIDs(params.Genre)
		found, err := h.genreService.ListGenres(ctx, genres.ListGenresOptions{
			IDs: ids,
		})
		if err != nil {
			return errors.WithStack(err)
		}
		if len(found) != len(ids) {
			vf.Add("genre", `"genre" must only contain existing genres`)
		}
	}

	return nil
}

func (h *handler) renderForm(c echo.Context, title string, params BookPayload, violations []errcodes.FieldViolation) error {
	ctx := c.Request().Context()

	authorList, err := h.authorService.ListAuthors(ctx, authors.ListAuthorsOptions{})
	if err != nil {
		return errors.WithStack(err)
	}
	genreList, err := h.genreService.ListGenres(ctx, genres.ListGenresOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_form", formPage{
		Title:   title,
		Form:    params,
		Authors: authorList,
		Genres:  genreList,
		Errors:  violations,
	}))
}

func (h *handler) renderDelete(c echo.Context, book *View, instances []*models.BookInstance) error {
	return errors.WithStack(c.Render(http.StatusOK, "book_delete", deletePage{
		Title:     "Delete Book",
		Book:      book,
		Instances: instances,
	}))
}

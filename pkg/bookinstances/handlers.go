package bookinstances

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/books"
	"github.com/locallibrary/library/pkg/display"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookInstanceService *Service
	bookService         *books.Service
}

type listPage struct {
	Title     string
	Instances []*View
}

type detailPage struct {
	Title    string
	Instance *View
}

type formPage struct {
	Title    string
	Form     BookInstancePayload
	Books    []*models.Book
	Statuses []string
	Errors   []errcodes.FieldViolation
}

func bookInstanceID(c echo.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	instances, err := h.bookInstanceService.ListBookInstanceViews(ctx, ListBookInstancesOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_list", listPage{
		Title:     "Book Instance List",
		Instances: instances,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookInstanceID(c)
	if !ok {
		return errcodes.NotFound("BookInstance")
	}

	instance, err := h.bookInstanceService.RetrieveBookInstanceView(ctx, RetrieveBookInstanceOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	title := "Copy: "
	if instance.Book != nil {
		title += instance.Book.Title
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_detail", detailPage{
		Title:    title,
		Instance: instance,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, "Create BookInstance", BookInstancePayload{
		Status: models.BookInstanceStatusMaintenance,
	}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params, vf, err := h.bind(c)
	if err != nil {
		return errors.WithStack(err)
	}
	if vf.Err() != nil {
		return h.renderForm(c, "Create BookInstance", params, vf.Violations)
	}

	instance, err := params.bookInstance("")
	if err != nil {
		return errors.WithStack(err)
	}
	err = h.bookInstanceService.CreateBookInstance(ctx, instance)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("book instance created", logger.Data{"book_instance_id": instance.ID})

	return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstanceURL(instance)))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookInstanceID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstancesPath))
	}

	instance, err := h.bookInstanceService.RetrieveBookInstanceView(ctx, RetrieveBookInstanceOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("BookInstance")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstancesPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_delete", detailPage{
		Title:    "Delete BookInstance",
		Instance: instance,
	}))
}

// deleteBookInstance has no guard; nothing references a copy.
func (h *handler) deleteBookInstance(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := bookInstanceID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstancesPath))
	}

	err := h.bookInstanceService.DeleteBookInstance(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("book instance deleted", logger.Data{"book_instance_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstancesPath))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookInstanceID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstancesPath))
	}

	instance, err := h.bookInstanceService.RetrieveBookInstance(ctx, RetrieveBookInstanceOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("BookInstance")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstancesPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, "Update BookInstance", payloadFromBookInstance(instance), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := bookInstanceID(c)
	if !ok {
		return errcodes.NotFound("BookInstance")
	}

	params, vf, err := h.bind(c)
	if err != nil {
		return errors.WithStack(err)
	}
	if vf.Err() != nil {
		return h.renderForm(c, "Update BookInstance", params, vf.Violations)
	}

	instance, err := params.bookInstance(id)
	if err != nil {
		return errors.WithStack(err)
	}
	if instance.DueBack.IsZero() {
		instance.DueBack = time.Now()
	}
	err = h.bookInstanceService.UpdateBookInstance(ctx, instance, UpdateBookInstanceOptions{
		Columns: bookInstanceColumns,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("book instance updated", logger.Data{"book_instance_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.BookInstanceURL(instance)))
}

// bind binds the copy form and checks that the book it refers to exists.
func (h *handler) bind(c echo.Context) (BookInstancePayload, *errcodes.ValidationFailure, error) {
	ctx := c.Request().Context()
	params := BookInstancePayload{}
	vf := &errcodes.ValidationFailure{}
	if err := c.Bind(&params); err != nil {
		failure, ok := errcodes.AsValidationFailure(err)
		if !ok {
			return params, nil, errors.WithStack(err)
		}
		vf = failure
	}

	if !vf.Has("book") {
		_, err := h.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{
			ID: &params.Book,
		})
		if errors.Is(err, errcodes.NotFound("Book")) {
			vf.Add("book", `"book" must be an existing book`)
		} else if err != nil {
			return params, nil, errors.WithStack(err)
		}
	}

	return params, vf, nil
}

func (h *handler) renderForm(c echo.Context, title string, params BookInstancePayload, violations []errcodes.FieldViolation) error {
	ctx := c.Request().Context()

	bookList, err := h.bookService.ListBooks(ctx, books.ListBooksOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_form", formPage{
		Title:    title,
		Form:     params,
		Books:    bookList,
		Statuses: models.BookInstanceStatuses,
		Errors:   violations,
	}))
}

package genres

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
	genreService *Service
}

type listPage struct {
	Title  string
	Genres []*models.Genre
}

type detailPage struct {
	Title string
	Genre *models.Genre
	Books []*models.Book
}

type formPage struct {
	Title  string
	Form   GenrePayload
	Errors []errcodes.FieldViolation
}

type deletePage struct {
	Title string
	Genre *models.Genre
	Books []*models.Book
}

// genreID returns the id route param, or false when it can't name a genre.
func genreID(c echo.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	genres, err := h.genreService.ListGenres(ctx, ListGenresOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_list", listPage{
		Title:  "Genre List",
		Genres: genres,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := genreID(c)
	if !ok {
		return errcodes.NotFound("Genre")
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.genreService.GetBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_detail", detailPage{
		Title: "Genre Detail",
		Genre: genre,
		Books: books,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return errors.WithStack(c.Render(http.StatusOK, "genre_form", formPage{
		Title: "Create Genre",
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := GenrePayload{}
	if err := c.Bind(&params); err != nil {
		if vf, ok := errcodes.AsValidationFailure(err); ok {
			return h.renderForm(c, "Create Genre", params, vf.Violations)
		}
		return errors.WithStack(err)
	}

	genre, created, err := h.genreService.FindOrCreateGenre(ctx, params.Name)
	if err != nil {
		return errors.WithStack(err)
	}
	if created {
		log.Info("genre created", logger.Data{"genre_id": genre.ID})
	}

	return errors.WithStack(c.Redirect(http.StatusFound, display.GenreURL(genre)))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := genreID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Genre")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.genreService.GetBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderDelete(c, genre, books)
}

func (h *handler) deleteGenre(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := genreID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Genre")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	books, err := h.genreService.GetBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(books) > 0 {
		return h.renderDelete(c, genre, books)
	}

	err = h.genreService.DeleteGenre(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("genre deleted", logger.Data{"genre_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := genreID(c)
	if !ok {
		return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{
		ID: &id,
	})
	if errors.Is(err, errcodes.NotFound("Genre")) {
		return errors.WithStack(c.Redirect(http.StatusFound, display.GenresPath))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, "Update Genre", GenrePayload{Name: genre.Name}, nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	id, ok := genreID(c)
	if !ok {
		return errcodes.NotFound("Genre")
	}

	params := GenrePayload{}
	if err := c.Bind(&params); err != nil {
		if vf, ok := errcodes.AsValidationFailure(err); ok {
			return h.renderForm(c, "Update Genre", params, vf.Violations)
		}
		return errors.WithStack(err)
	}

	// The name has to stay unique across genres.
	existing, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{
		Name: &params.Name,
	})
	if err == nil && existing.ID != id {
		vf := &errcodes.ValidationFailure{}
		vf.Add("name", `"name" is already used by another genre`)
		return h.renderForm(c, "Update Genre", params, vf.Violations)
	}
	if err != nil && !errors.Is(err, errcodes.NotFound("Genre")) {
		return errors.WithStack(err)
	}

	genre := &models.Genre{
		ID:   id,
		Name: params.Name,
	}
	err = h.genreService.UpdateGenre(ctx, genre, UpdateGenreOptions{
		Columns: []string{"name"},
	})
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("genre updated", logger.Data{"genre_id": id})

	return errors.WithStack(c.Redirect(http.StatusFound, display.GenreURL(genre)))
}

func (h *handler) renderForm(c echo.Context, title string, params GenrePayload, violations []errcodes.FieldViolation) error {
	return errors.WithStack(c.Render(http.StatusOK, "genre_form", formPage{
		Title:  title,
		Form:   params,
		Errors: violations,
	}))
}

func (h *handler) renderDelete(c echo.Context, genre *models.Genre, books []*models.Book) error {
	return errors.WithStack(c.Render(http.StatusOK, "genre_delete", deletePage{
		Title: "Delete Genre",
		Genre: genre,
		Books: books,
	}))
}

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/authors"
	"github.com/locallibrary/library/pkg/bookinstances"
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/books"
	"github.com/locallibrary/library/pkg/config"
	"github.com/locallibrary/library/pkg/database"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/genres"
	"github.com/locallibrary/library/pkg/migrations"
	"github.com/locallibrary/library/pkg/models"
	"github.com/locallibrary/library/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seedCatalog creates one author, two genres, one book and two copies, one
// of them available.
func seedCatalog(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()

	author := &models.Author{FirstName: "Frank", FamilyName: "Herbert"}
	require.NoError(t, authors.NewService(db).CreateAuthor(ctx, author))

	genreService := genres.NewService(db)
	scifi, _, err := genreService.FindOrCreateGenre(ctx, "Science Fiction")
	require.NoError(t, err)
	_, _, err = genreService.FindOrCreateGenre(ctx, "Classic")
	require.NoError(t, err)

	book := &models.Book{
		Title:    "Dune",
		AuthorID: author.ID,
		Summary:  "Spice.",
		ISBN:     "9780441013593",
		GenreIDs: []string{scifi.ID},
	}
	require.NoError(t, books.NewService(db).CreateBook(ctx, book))

	instanceService := bookinstances.NewService(db)
	require.NoError(t, instanceService.CreateBookInstance(ctx, &models.BookInstance{
		BookID:  book.ID,
		Imprint: "Ace 1990",
		Status:  models.BookInstanceStatusAvailable,
	}))
	require.NoError(t, instanceService.CreateBookInstance(ctx, &models.BookInstance{
		BookID:  book.ID,
		Imprint: "Ace 1990",
	}))
}

func TestCounts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Counts{}, counts)

	seedCatalog(t, db)

	counts, err = svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Counts{
		Books:           1,
		Copies:          2,
		AvailableCopies: 1,
		Authors:         1,
		Genres:          2,
	}, counts)
}

func TestReset(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	seedCatalog(t, db)

	require.NoError(t, svc.Reset(ctx))

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Counts{}, counts)

	links, err := db.NewSelect().Model((*models.BookGenre)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, links)
}

func TestIndex(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	seedCatalog(t, db)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	r, err := views.New()
	require.NoError(t, err)
	e.Renderer = r
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutes(e)
	RegisterRoutesWithGroup(e.Group("/catalog"), db)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog", rr.Header().Get(echo.HeaderLocation))

	req = httptest.NewRequest(http.MethodGet, "/catalog", nil)
	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Local Library Home")
	assert.Contains(t, body, "<strong>Copies:</strong> 2")
	assert.Contains(t, body, "<strong>Copies available:</strong> 1")
	assert.Contains(t, body, "<strong>Genres:</strong> 2")
}

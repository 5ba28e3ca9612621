package books

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/models"
	"github.com/locallibrary/library/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// setupTestServer sets up an Echo server with the book routes registered.
func setupTestServer(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	r, err := views.New()
	require.NoError(t, err)
	e.Renderer = r
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	g := e.Group("/catalog", binder.AllowEmptyBody)
	RegisterRoutesWithGroup(g, db)

	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func postForm(e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestCreateBook_WithEmptyGenreList(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	author := setupTestAuthor(t, db, "Frank", "Herbert")

	rr := postForm(e, "/catalog/book/create", url.Values{
		"title":   {"Dune"},
		"author":  {author.ID},
		"summary": {"Spice."},
		"isbn":    {"9780441013593"},
	})
	require.Equal(t, http.StatusFound, rr.Code)
	location := rr.Header().Get(echo.HeaderLocation)
	require.True(t, strings.HasPrefix(location, "/catalog/book/"))

	id := strings.TrimPrefix(location, "/catalog/book/")
	view, err := NewService(db).RetrieveBookView(context.Background(), RetrieveBookOptions{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, "Dune", view.Title)
	assert.Empty(t, view.Genres)

	rr = get(e, location)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<title>Dune | Local Library</title>")
	assert.Contains(t, body, "Herbert, Frank")
	assert.Contains(t, body, "There are no copies of this book in the library.")
}

func TestCreateBook_WithGenres(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	author := setupTestAuthor(t, db, "Frank", "Herbert")
	scifi := setupTestGenre(t, db, "Science Fiction")
	classic := setupTestGenre(t, db, "Classic")

	rr := postForm(e, "/catalog/book/create", url.Values{
		"title":   {"Dune"},
		"author":  {author.ID},
		"summary": {"Spice."},
		"isbn":    {"9780441013593"},
		"genre":   {scifi.ID, classic.ID},
	})
	require.Equal(t, http.StatusFound, rr.Code)

	rr = get(e, rr.Header().Get(echo.HeaderLocation))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Classic")
	assert.Contains(t, body, "Science Fiction")
}

func TestCreateBook_InvalidRedisplaysForm(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	author := setupTestAuthor(t, db, "Frank", "Herbert")
	genre := setupTestGenre(t, db, "Science Fiction")

	rr := postForm(e, "/catalog/book/create", url.Values{
		"title":   {"  "},
		"author":  {author.ID},
		"summary": {"Spice & <more>"},
		"isbn":    {""},
		"genre":   {genre.ID},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Create Book")
	assert.Contains(t, body, "&#34;title&#34; is required")
	assert.Contains(t, body, "&#34;isbn&#34; is required")
	assert.Contains(t, body, "Spice &amp; &lt;more&gt;")
	assert.Contains(t, body, `value="`+author.ID+`" selected`)
	assert.Contains(t, body, `value="`+genre.ID+`" checked`)

	count, err := svc.CountBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateBook_UnknownReferences(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rr := postForm(e, "/catalog/book/create", url.Values{
		"title":   {"Dune"},
		"author":  {uuid.NewString()},
		"summary": {"Spice."},
		"isbn":    {"9780441013593"},
		"genre":   {uuid.NewString()},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "&#34;author&#34; must be an existing author")
	assert.Contains(t, body, "&#34;genre&#34; must only contain existing genres")

	rr = postForm(e, "/catalog/book/create", url.Values{
		"title":   {"Dune"},
		"author":  {"nobody"},
		"summary": {"Spice."},
		"isbn":    {"9780441013593"},
		"genre":   {"nothing"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body = rr.Body.String()
	assert.Contains(t, body, "&#34;author&#34; must be a valid identifier")
	assert.Contains(t, body, "&#34;genre&#34; must be a valid identifier")
}

func TestRetrieveBook_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rr := get(e, "/catalog/book/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Book not found.")

	rr = get(e, "/catalog/book/not-an-id")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListBooks_Handler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	author := setupTestAuthor(t, db, "Frank", "Herbert")
	require.NoError(t, svc.CreateBook(context.Background(), newBook(author.ID)))

	rr := get(e, "/catalog/books")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Book List")
	assert.Contains(t, body, "Dune</a> (Herbert, Frank)")
}

func TestDeleteBook_GuardAndRelease(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	ctx := context.Background()
	author := setupTestAuthor(t, db, "Frank", "Herbert")
	book := newBook(author.ID)
	require.NoError(t, svc.CreateBook(ctx, book))
	instance := setupTestInstance(t, db, book.ID, "Ace, 1990")

	rr := postForm(e, "/catalog/book/"+book.ID+"/delete", url.Values{"bookid": {book.ID}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Delete the following copies")
	_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)

	_, err = db.NewDelete().Model((*models.BookInstance)(nil)).Where("id = ?", instance.ID).Exec(ctx)
	require.NoError(t, err)

	rr = get(e, "/catalog/book/"+book.ID+"/delete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Do you really want to delete this Book?")

	rr = postForm(e, "/catalog/book/"+book.ID+"/delete", url.Values{"bookid": {book.ID}})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/books", rr.Header().Get(echo.HeaderLocation))
	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestDeleteBook_AbsentRedirectsToList(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	path := "/catalog/book/" + uuid.NewString() + "/delete"
	rr := get(e, path)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/books", rr.Header().Get(echo.HeaderLocation))

	rr = postForm(e, path, url.Values{})
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/books", rr.Header().Get(echo.HeaderLocation))
}

func TestUpdateBook_Handler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	ctx := context.Background()
	author := setupTestAuthor(t, db, "Frank", "Herbert")
	genre := setupTestGenre(t, db, "Science Fiction")
	book := newBook(author.ID, genre.ID)
	require.NoError(t, svc.CreateBook(ctx, book))

	rr := get(e, "/catalog/book/"+book.ID+"/update")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Update Book")
	assert.Contains(t, rr.Body.String(), `value="`+genre.ID+`" checked`)

	form := url.Values{
		"title":   {"Dune Messiah"},
		"author":  {author.ID},
		"summary": {"More spice."},
		"isbn":    {"9780593098233"},
	}
	rr = postForm(e, "/catalog/book/"+book.ID+"/update", form)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/book/"+book.ID, rr.Header().Get(echo.HeaderLocation))

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Empty(t, got.GenreIDs)

	rr = postForm(e, "/catalog/book/"+uuid.NewString()+"/update", form)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = get(e, "/catalog/book/"+uuid.NewString()+"/update")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/books", rr.Header().Get(echo.HeaderLocation))
}

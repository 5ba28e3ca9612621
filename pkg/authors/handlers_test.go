package authors

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

// setupTestServer sets up an Echo server with the author routes registered.
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

func TestCreateAuthor_RoundTripsThroughDetail(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rr := postForm(e, "/catalog/author/create", url.Values{
		"first_name":    {" Patrick "},
		"family_name":   {"Rothfuss"},
		"date_of_birth": {"1973-06-06"},
		"date_of_death": {""},
	})
	require.Equal(t, http.StatusFound, rr.Code)
	location := rr.Header().Get(echo.HeaderLocation)
	require.True(t, strings.HasPrefix(location, "/catalog/author/"))

	id := strings.TrimPrefix(location, "/catalog/author/")
	author, err := NewService(db).RetrieveAuthor(context.Background(), RetrieveAuthorOptions{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, "Patrick", author.FirstName)
	assert.Nil(t, author.DateOfDeath)

	rr = get(e, location)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Author: Rothfuss, Patrick")
	assert.Contains(t, rr.Body.String(), "Jun 6, 1973 - ")
}

func TestCreateAuthor_InvalidLeavesCountUnchanged(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)

	rr := postForm(e, "/catalog/author/create", url.Values{
		"first_name":    {"J.R.R."},
		"family_name":   {""},
		"date_of_birth": {"not a date"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "&#34;first_name&#34; must contain only letters and numbers")
	assert.Contains(t, body, "&#34;family_name&#34; is required")
	assert.Contains(t, body, "&#34;date_of_birth&#34; should be a valid ISO 8601 date")
	assert.Less(t, strings.Index(body, "first_name&#34; must"), strings.Index(body, "family_name&#34; is"))

	count, err := svc.CountAuthors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateAuthor_SanitizedValuesRoundTrip(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	form := url.Values{"first_name": {"  O'Brien "}, "family_name": {" Flann "}}
	first := postForm(e, "/catalog/author/create", form)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), `value="O&#x27;Brien"`)
	assert.Contains(t, first.Body.String(), `value="Flann"`)

	second := postForm(e, "/catalog/author/create", form)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRetrieveAuthor_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	rr := get(e, "/catalog/author/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Author not found.")

	rr = get(e, "/catalog/author/12345")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAuthors_Handler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateAuthor(ctx, &models.Author{FirstName: "Patrick", FamilyName: "Rothfuss"}))
	require.NoError(t, svc.CreateAuthor(ctx, &models.Author{FirstName: "Isaac", FamilyName: "Asimov"}))

	rr := get(e, "/catalog/authors")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Author List")
	assert.Less(t, strings.Index(body, "Asimov, Isaac"), strings.Index(body, "Rothfuss, Patrick"))
}

func TestDeleteAuthor_GuardAndRelease(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	ctx := context.Background()

	author := &models.Author{FirstName: "Patrick", FamilyName: "Rothfuss"}
	require.NoError(t, svc.CreateAuthor(ctx, author))
	book := setupTestBook(t, db, author.ID, "The Name of the Wind")

	rr := get(e, "/catalog/author/"+author.ID+"/delete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Delete the following books")

	rr = postForm(e, "/catalog/author/"+author.ID+"/delete", url.Values{"authorid": {author.ID}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "The Name of the Wind")
	_, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	require.NoError(t, err)

	_, err = db.NewDelete().Model((*models.Book)(nil)).Where("id = ?", book.ID).Exec(ctx)
	require.NoError(t, err)

	rr = get(e, "/catalog/author/"+author.ID+"/delete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Do you really want to delete this Author?")

	rr = postForm(e, "/catalog/author/"+author.ID+"/delete", url.Values{"authorid": {author.ID}})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/authors", rr.Header().Get(echo.HeaderLocation))
	_, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))
}

func TestDeleteAuthor_AbsentRedirectsToList(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	path := "/catalog/author/" + uuid.NewString() + "/delete"
	rr := get(e, path)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/authors", rr.Header().Get(echo.HeaderLocation))

	rr = postForm(e, path, url.Values{})
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/authors", rr.Header().Get(echo.HeaderLocation))
}

func TestUpdateAuthor_Handler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db)
	ctx := context.Background()

	author := &models.Author{FirstName: "Isaac", FamilyName: "Asimov"}
	require.NoError(t, svc.CreateAuthor(ctx, author))

	rr := get(e, "/catalog/author/"+author.ID+"/update")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="Asimov"`)
	assert.Contains(t, rr.Body.String(), "Update Author")

	form := url.Values{"first_name": {"Isaac"}, "family_name": {"Asimov"}, "date_of_birth": {"1920-01-02"}}
	for i := 0; i < 2; i++ {
		rr = postForm(e, "/catalog/author/"+author.ID+"/update", form)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/catalog/author/"+author.ID, rr.Header().Get(echo.HeaderLocation))
	}

	got, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	require.NoError(t, err)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, "1920-01-02", got.DateOfBirth.Format("2006-01-02"))
	count, err := svc.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rr = postForm(e, "/catalog/author/"+author.ID+"/update", url.Values{"first_name": {""}, "family_name": {"Asimov"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "&#34;first_name&#34; is required")

	rr = get(e, "/catalog/author/"+uuid.NewString()+"/update")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/catalog/authors", rr.Header().Get(echo.HeaderLocation))

	rr = postForm(e, "/catalog/author/"+uuid.NewString()+"/update", form)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

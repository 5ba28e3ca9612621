package errcodes

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	fail bool
}

func (r *stubRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	if r.fail {
		return errors.New("template exploded")
	}
	p := data.(Payload)
	_, err := fmt.Fprintf(w, "%s|%d|%s", name, p.StatusCode, p.Message)
	return err
}

func handle(t *testing.T, e *echo.Echo, err error, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/catalog/author/x", nil)
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rec := httptest.NewRecorder()
	NewHandler().Handle(err, e.NewContext(req, rec))
	return rec
}

func TestHandle_RendersErrorView(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Renderer = &stubRenderer{}

	rec := handle(t, e, errors.WithStack(NotFound("Author")), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error|404|Author not found.", rec.Body.String())
}

func TestHandle_GenericErrorIsInternal(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Renderer = &stubRenderer{}

	rec := handle(t, e, errors.New("connection refused"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error|500|Internal Server Error", rec.Body.String())
}

func TestHandle_EchoError(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Renderer = &stubRenderer{}

	rec := handle(t, e, echo.ErrMethodNotAllowed, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "error|405|Method Not Allowed", rec.Body.String())
}

func TestHandle_FallsBackToText(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Renderer = &stubRenderer{fail: true}

	rec := handle(t, e, NotFound("Book"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found.", rec.Body.String())

	rec = handle(t, echo.New(), NotFound("Book"), "")
	assert.Equal(t, "Book not found.", rec.Body.String())
}

func TestHandle_JSON(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Renderer = &stubRenderer{}

	vf := &ValidationFailure{}
	vf.Add("name", `"name" is required`)
	rec := handle(t, e, vf, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"validation_error","message":"\"name\" is required","status_code":422,"violations":[{"field":"name","message":"\"name\" is required"}]}}`, rec.Body.String())
}

func TestValidationFailure(t *testing.T) {
	t.Parallel()

	vf := &ValidationFailure{}
	assert.NoError(t, vf.Err())

	vf.Add("first_name", "first")
	vf.Add("family_name", "second")
	assert.True(t, vf.Has("first_name"))
	assert.False(t, vf.Has("date_of_birth"))
	assert.Equal(t, "first; second", vf.Error())

	got, ok := AsValidationFailure(errors.WithStack(vf.Err()))
	require.True(t, ok)
	assert.Same(t, vf, got)

	_, ok = AsValidationFailure(NotFound("Genre"))
	assert.False(t, ok)
}

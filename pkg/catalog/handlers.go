package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/display"
	"github.com/pkg/errors"
)

type handler struct {
	catalogService *Service
}

type indexPage struct {
	Title  string
	Counts *Counts
}

func (h *handler) index(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.catalogService.Counts(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "index", indexPage{
		Title:  "Local Library Home",
		Counts: counts,
	}))
}

func home(c echo.Context) error {
	return errors.WithStack(c.Redirect(http.StatusFound, display.CatalogPath))
}

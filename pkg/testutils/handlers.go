package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/catalog"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	catalogService *catalog.Service
}

// resetCatalogResponse is the response body for resetting the catalog.
type resetCatalogResponse struct {
	Counts *catalog.Counts `json:"counts"`
}

// resetCatalog deletes every catalog record.
// DELETE /test/catalog.
func (h *handler) resetCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.catalogService.Reset(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to reset catalog")
	}
	logger.FromContext(ctx).Info("catalog reset")

	counts, err := h.catalogService.Counts(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, resetCatalogResponse{
		Counts: counts,
	})
}

package catalog

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the site root, which redirects to the catalog.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", home)
}

// RegisterRoutesWithGroup registers the catalog home page.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		catalogService: NewService(db),
	}

	g.GET("", h.index)
	g.GET("/", h.index)
}

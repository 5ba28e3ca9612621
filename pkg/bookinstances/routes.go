package bookinstances

import (
	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/books"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book instance routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	bookInstanceService := NewService(db)
	bookService := books.NewService(db)

	h := &handler{
		bookInstanceService: bookInstanceService,
		bookService:         bookService,
	}

	g.GET("/bookinstances", h.list)
	g.GET("/bookinstance/create", h.createForm)
	g.POST("/bookinstance/create", h.create)
	g.GET("/bookinstance/:id", h.retrieve)
	g.GET("/bookinstance/:id/delete", h.deleteForm)
	g.POST("/bookinstance/:id/delete", h.deleteBookInstance)
	g.GET("/bookinstance/:id/update", h.updateForm)
	g.POST("/bookinstance/:id/update", h.update)
}

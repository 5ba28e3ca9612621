package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locallibrary/library/pkg/authors"
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/bookinstances"
	"github.com/locallibrary/library/pkg/books"
	"github.com/locallibrary/library/pkg/catalog"
	"github.com/locallibrary/library/pkg/config"
	"github.com/locallibrary/library/pkg/database"
	"github.com/locallibrary/library/pkg/display"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/genres"
	"github.com/locallibrary/library/pkg/metrics"
	"github.com/locallibrary/library/pkg/testutils"
	"github.com/locallibrary/library/pkg/views"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func init() {
	// Groups capture the handler when they are created, so it has to be set
	// before any routes are registered.
	echo.NotFoundHandler = notFoundHandler
}

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	r, err := views.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Renderer = r

	m := metrics.New()

	e.Use(logger.Middleware())
	e.Use(m.Middleware())
	e.Use(recovery.Middleware())
	if cfg.Environment != "production" {
		e.Use(queryLogging)
	}

	health.RegisterRoutes(e)
	m.RegisterRoutes(e)

	catalog.RegisterRoutes(e)
	registerCatalogRoutes(e, db)

	// Test-only routes for resetting the catalog between e2e runs
	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

// registerCatalogRoutes registers the pages of every catalog entity under
// /catalog. Delete confirmations post no body, so empty bodies are allowed.
func registerCatalogRoutes(e *echo.Echo, db *bun.DB) {
	g := e.Group(display.CatalogPath, binder.AllowEmptyBody)

	catalog.RegisterRoutesWithGroup(g, db)
	authors.RegisterRoutesWithGroup(g, db)
	books.RegisterRoutesWithGroup(g, db)
	genres.RegisterRoutesWithGroup(g, db)
	bookinstances.RegisterRoutesWithGroup(g, db)
}

// QueryLogHeader asks for the SQL run by a request to be logged.
const QueryLogHeader = "X-Log-Queries"

func queryLogging(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get(QueryLogHeader) == "true" {
			req := c.Request()
			c.SetRequest(req.WithContext(database.WithLogging(req.Context())))
		}
		return next(c)
	}
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}

package errcodes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// ErrorView is the name of the template used to render error pages.
const ErrorView = "error"

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler that uses HTTP errors accordingly, and any
// generic error will be interpreted as an internal server error.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}
	if c.Response().Committed {
		return
	}

	httpCode, payload := h.generatePayload(c, err)

	// Internal server errors
	if httpCode == http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	if wantsJSON(c) {
		if err := c.JSON(httpCode, map[string]interface{}{"error": payload}); err != nil {
			logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
		}
		return
	}

	if c.Echo().Renderer != nil {
		rerr := c.Render(httpCode, ErrorView, payload)
		if rerr == nil {
			return
		}
		logger.FromEchoContext(c).Err(errors.WithStack(rerr)).Error("error handler render error")
		if c.Response().Committed {
			return
		}
	}

	if err := c.String(httpCode, payload.Message); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler string error")
	}
}

// Payload is what an error page or error response is built from.
type Payload struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	StatusCode int              `json:"status_code"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

func (h *Handler) generatePayload(_ echo.Context, err error) (int, Payload) {
	code := ""
	msg := ""
	httpCode := http.StatusInternalServerError
	var violations []FieldViolation

	// Echo errors
	var he *echo.HTTPError
	if ok := errors.As(err, &he); ok {
		httpCode = he.Code
		msg = fmt.Sprint(he.Message)
		code = strcase.ToSnake(msg)
	}

	// Custom errors
	var e *Error
	if ok := errors.As(err, &e); ok {
		httpCode = e.HTTPCode
		code = e.Code
		msg = e.Message
	}

	// Violations that no handler turned back into a form
	if vf, ok := AsValidationFailure(err); ok {
		httpCode = http.StatusUnprocessableEntity
		code = "validation_error"
		msg = vf.Error()
		violations = vf.Violations
	}

	// Internal server errors that aren't Echo errors or custom errors
	if httpCode == http.StatusInternalServerError && msg == "" {
		code = "internal_server_error"
		msg = "Internal Server Error"
	}

	return httpCode, Payload{
		Code:       code,
		Message:    msg,
		StatusCode: httpCode,
		Violations: violations,
	}
}

func wantsJSON(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.HasPrefix(accept, echo.MIMEApplicationJSON)
}

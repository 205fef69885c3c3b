package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/domain"
)

// ErrorResponse is the error envelope: a top-level message plus optional
// field-scoped messages. Successful responses carry the bare resource.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Debug   *DebugDetail        `json:"debug,omitempty"`
}

// DebugDetail carries the underlying error, exposed only in debug mode.
type DebugDetail struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns the global error handler for echo. Domain
// errors map to their status codes; everything unrecognized becomes a 500
// with the detail hidden unless debug is on.
func NewHTTPErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := mapError(err, debug)
		if status >= http.StatusInternalServerError {
			slog.Error("unhandled error",
				"error", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
			)
		}

		if jsonErr := c.JSON(status, resp); jsonErr != nil {
			slog.Error("failed to send error response", "error", jsonErr)
		}
	}
}

func mapError(err error, debug bool) (int, ErrorResponse) {
	// echo's own HTTP errors: router 404/405 and any passthrough status.
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code, ErrorResponse{Message: httpErrorMessage(echoErr)}
	}

	var validationErrs domain.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Validation failed",
			Errors:  validationErrs,
		}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnprocessableEntity, ErrorResponse{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Message: "Unauthenticated"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Message: "Forbidden"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Message: "Not found"}
	default:
		resp := ErrorResponse{Message: "Server error"}
		if debug {
			resp.Debug = &DebugDetail{Message: err.Error()}
		}
		return http.StatusInternalServerError, resp
	}
}

func httpErrorMessage(err *echo.HTTPError) string {
	switch err.Code {
	case http.StatusNotFound:
		return "Not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusTooManyRequests:
		return "Too many requests"
	}
	if msg, ok := err.Message.(string); ok && msg != "" {
		return msg
	}
	return http.StatusText(err.Code)
}

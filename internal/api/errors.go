package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"reservation-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func message(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// statusOf maps a service error kind to an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrCapacity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"message": ...}. Unexpected errors are logged and hidden.
func respondError(c echo.Context, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return c.JSON(statusOf(svcErr), message(svcErr.Message))
	}

	logger.Error().Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("method", c.Request().Method).
		Str("uri", c.Request().RequestURI).
		Msg("internal error")
	return c.JSON(http.StatusInternalServerError, message("internal server error"))
}

// HTTPErrorHandler renders errors that escape handlers and middleware.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		switch he.Code {
		case http.StatusNotFound:
			msg = "route not found"
		case http.StatusMethodNotAllowed:
			msg = "method not allowed"
		default:
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
		}
		if he.Code >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("request failed")
			msg = "internal server error"
		}
		if werr := c.JSON(he.Code, message(msg)); werr != nil {
			logger.Error().Err(werr).Msg("failed to write error response")
		}
		return
	}

	if werr := respondError(c, err); werr != nil {
		logger.Error().Err(werr).Msg("failed to write error response")
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/repository"
)

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

type deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, successBody{Success: true, Data: data})
}

func created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, successBody{Success: true, Data: data})
}

// statusOf is the only place a failure kind becomes an HTTP status.
func statusOf(k apperror.Kind) int {
	switch k {
	case apperror.KindMalformed, apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// storeError classifies a gateway failure for entity, e.g. "floor plan".
// Unrecognised errors pass through and surface as internal.
func storeError(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(entity)
	case errors.Is(err, repository.ErrConflict):
		return apperror.Conflict(entity+" already exists", err)
	case errors.Is(err, repository.ErrReference):
		return &apperror.Error{Kind: apperror.KindValidation, Message: "referenced record does not exist", Err: err}
	case errors.Is(err, repository.ErrOutOfRange):
		return &apperror.Error{Kind: apperror.KindValidation, Message: "value out of range", Err: err}
	default:
		return err
	}
}

// ErrorHandler replaces echo's default so that every failure, including
// router-level 404 and 405, is answered with the error envelope.  Only
// internal failures are logged, with the cause; callers see a generic
// message.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := render(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, errorBody) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		status := statusOf(ae.Kind)
		if status == http.StatusInternalServerError {
			return status, errorBody{Error: "internal server error"}
		}
		return status, errorBody{Error: ae.Message, Details: ae.Details}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		return he.Code, errorBody{Error: msg}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal server error"}
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/repository"
)

func TestStatusOf(t *testing.T) {
	cases := map[apperror.Kind]int{
		apperror.KindMalformed:       http.StatusBadRequest,
		apperror.KindValidation:      http.StatusBadRequest,
		apperror.KindUnauthenticated: http.StatusUnauthorized,
		apperror.KindNotFound:        http.StatusNotFound,
		apperror.KindConflict:        http.StatusConflict,
		apperror.KindRateLimited:     http.StatusTooManyRequests,
		apperror.KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusOf(kind), kind.String())
	}
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, storeError("workstation", nil))

	err := storeError("workstation", fmt.Errorf("lookup: %w", repository.ErrNotFound))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "workstation not found", err.(*apperror.Error).Message)

	assert.Equal(t, apperror.KindConflict, apperror.KindOf(storeError("vinyl slot", repository.ErrConflict)))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(storeError("venue object", repository.ErrReference)))

	err = storeError("vinyl slot", fmt.Errorf("%w: Out of range value for column 'capacity'", repository.ErrOutOfRange))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "value out of range", err.(*apperror.Error).Message)

	raw := errors.New("connection reset")
	assert.Same(t, raw, storeError("floor plan", raw))
}

func TestRenderHidesInternalCauses(t *testing.T) {
	status, body := render(errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)

	status, body = render(echo.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method Not Allowed", body.Error)

	status, body = render(apperror.Validation([]apperror.FieldError{{Field: "name", Message: "is required"}}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body.Details, 1)
}

func TestErrorHandlerLogsOnlyInternal(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	h := ErrorHandler(zap.New(core))

	rec := httptest.NewRecorder()
	h(apperror.NotFound("floor plan"), e.NewContext(httptest.NewRequest(http.MethodGet, "/api/floorplans/x", nil), rec))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"floor plan not found"}`, rec.Body.String())
	assert.Zero(t, logs.Len())

	rec = httptest.NewRecorder()
	h(errors.New("boom"), e.NewContext(httptest.NewRequest(http.MethodGet, "/api/floorplans", nil), rec))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)
}

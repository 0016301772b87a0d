package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health answers load balancers.  When db is set it also pings the
// database and reports 503 if it is unreachable.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "database unavailable"})
			}
		}
		return ok(c, echo.Map{"status": "ok"})
	}
}

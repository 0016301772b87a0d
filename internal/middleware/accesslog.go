package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"
)

// RequestID tags every request with an X-Request-ID, reusing the caller's
// header when present.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: uuid.NewString,
    })
}

// AccessLog writes one structured line per request.  It must run after
// RequestID so the id is already on the response.
func AccessLog(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // Let the error handler write the response so the status is final.
                c.Error(err)
            }
            req, res := c.Request(), c.Response()
            fields := []zap.Field{
                zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
                zap.String("method", req.Method),
                zap.String("path", req.URL.Path),
                zap.String("route", c.Path()),
                zap.Int("status", res.Status),
                zap.Duration("latency", time.Since(start)),
                zap.String("remote_ip", c.RealIP()),
            }
            switch {
            case res.Status >= 500:
                log.Error("request", fields...)
            case res.Status >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}

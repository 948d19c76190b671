package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs HTTP request/response metadata.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			start := time.Now()
			if err = next(c); err != nil {
				//先にレスポンスを確定させてからstatusを記録する
				c.Error(err)
			}
			latency := time.Since(start)

			if logger != nil {
				logger.Info("http request",
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
					slog.Int("status", c.Response().Status),
					slog.String("client_ip", c.RealIP()),
					slog.String("latency", latency.String()),
				)
			}

			return
		}
	}
}

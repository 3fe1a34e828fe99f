package logging

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger logs method, route, status and latency for every request.
// Handler errors are passed to Echo's error handler first so the logged
// status matches what the client receives.
func RequestLogger(l zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			res := c.Response()

			ev := l.Info()
			switch {
			case res.Status >= 500:
				ev = l.Error()
			case res.Status >= 400:
				ev = l.Warn()
			}
			if err != nil {
				ev = ev.Err(err)
			}
			ev.Str("method", req.Method).
				Str("route", c.Path()).
				Str("uri", req.RequestURI).
				Int("status", res.Status).
				Str("ip", c.RealIP()).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}

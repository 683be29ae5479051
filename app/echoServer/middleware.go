// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"libraryapi/app/echoServer/jwtx"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// JWTAuth verifies the bearer token and puts the caller into the
// context. Missing or invalid credentials answer 403, matching the
// borrowing-list contract.
func JWTAuth(secret string) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "authentication required")
		},
	})

	extract := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := jwtx.CallerFromToken(c)
			if err != nil {
				rid := c.Response().Header().Get(echo.HeaderXRequestID)
				slog.Warn("auth claims rejected", "err", err, "req_id", rid, "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusForbidden, "authentication required")
			}
			jwtx.SetCaller(c, caller)
			return next(c)
		}
	}

	return []echo.MiddlewareFunc{verify, extract}
}

// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"libraryapi/access"
)

const callerKey = "caller"

// CallerFromToken builds the access.Caller from the verified JWT that
// echo-jwt stored in the context. Refresh tokens are rejected here: only
// access tokens open the authenticated surface.
func CallerFromToken(c echo.Context) (access.Caller, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return access.Caller{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return access.Caller{}, errors.New("invalid jwt claims")
	}
	if typ, _ := claims["typ"].(string); typ != "access" {
		return access.Caller{}, errors.New("not an access token")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return access.Caller{}, errors.New("sub missing in claims")
	}
	staff, _ := claims["is_staff"].(bool)
	return access.Caller{UserID: int64(sub), Staff: staff}, nil
}

// SetCaller stores the caller for the handlers downstream.
func SetCaller(c echo.Context, caller access.Caller) { c.Set(callerKey, caller) }

// Caller returns the caller a middleware stored earlier. The bool is
// false on unauthenticated routes.
func Caller(c echo.Context) (access.Caller, bool) {
	caller, ok := c.Get(callerKey).(access.Caller)
	return caller, ok
}

package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryapi/app/echoServer/jwtx"
	"libraryapi/model"
	authsvc "libraryapi/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new library user with a unique email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already taken"
// @Failure      500  {object}  map[string]any "internal server error"
// @Router       /users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case errors.Is(err, authsvc.ErrBadInput):
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("register failed", "err", err, "req_id", rid, "path", c.Path())
			return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"user":    u,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns access and refresh JWTs
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	_, pair, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCreds) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("login failed", "err", err, "req_id", rid, "path", c.Path())
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// Refresh
// @Summary      Refresh access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RefreshReq  true  "Refresh payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /users/token/refresh [post]
func (ct *Controller) Refresh(c echo.Context) error {
	var req model.RefreshReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	access, err := ct.Svc.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// Me
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      403  {object}  map[string]any
// @Router       /users/me [get]
func (ct *Controller) Me(c echo.Context) error {
	caller, ok := jwtx.Caller(c)
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "authentication required")
	}
	u, err := ct.Svc.Me(c.Request().Context(), caller.UserID)
	if err != nil {
		if errors.Is(err, authsvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("me failed", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}

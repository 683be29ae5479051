package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryapi/app/echoServer/jwtx"
	"libraryapi/model"
	booksvc "libraryapi/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func toInput(req BookReq) booksvc.Input {
	return booksvc.Input{
		Title:     req.Title,
		Author:    req.Author,
		Cover:     model.CoverType(req.Cover),
		Inventory: req.Inventory,
		DailyFee:  req.DailyFee,
	}
}

// POST /books  (staff)
func (h *Controller) Create(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	b, err := h.Svc.Create(c.Request().Context(), caller, toInput(req))
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Book{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, b)
}

// PUT/PATCH /books/:id  (staff)
func (h *Controller) Update(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	b, err := h.Svc.Update(c.Request().Context(), caller, id, toInput(req))
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /books/:id  (staff)
func (h *Controller) Delete(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), caller, id); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		default:
			h.Log.Error("book delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

package borrowing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryapi/app/echoServer/jwtx"
	"libraryapi/model"
	borrowingsvc "libraryapi/service/borrowing"
)

const outOfStockMsg = "This book is out of stock."

type Controller struct {
	Svc borrowingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// fieldErr is the field-scoped validation shape: {"book_id": ["..."]}.
func fieldErr(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{field: []string{msg}})
}

// POST /borrowings
func (h *Controller) Create(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	var req CreateBorrowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	borrowDate, err := model.ParseDate(req.BorrowDate)
	if err != nil {
		return fieldErr(c, "borrow_date", err.Error())
	}
	expected, err := model.ParseDate(req.ExpectedReturnDate)
	if err != nil {
		return fieldErr(c, "expected_return_date", err.Error())
	}

	d, err := h.Svc.Create(c.Request().Context(), caller, borrowingsvc.CreateInput{
		BorrowDate:         borrowDate,
		ExpectedReturnDate: expected,
		BookID:             req.BookID,
	})
	if err != nil {
		switch borrowingsvc.Code(err) {
		case borrowingsvc.ErrOutOfStock:
			return fieldErr(c, "book_id", outOfStockMsg)
		case borrowingsvc.ErrBookNotFound:
			return fieldErr(c, "book_id", "Book not found.")
		case borrowingsvc.ErrBadDates:
			return fieldErr(c, "expected_return_date", "Expected return date precedes borrow date.")
		default:
			h.Log.Error("borrowing create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, d)
}

// GET /borrowings?is_active=true&user_id=N
func (h *Controller) List(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	var q borrowingsvc.ListQuery
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return fieldErr(c, "user_id", "Enter a valid user id.")
		}
		q.UserID = &id
	}
	if v := c.QueryParam("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return fieldErr(c, "is_active", "Enter a valid boolean.")
		}
		q.IsActive = active
	}

	rows, err := h.Svc.List(c.Request().Context(), caller, q)
	if err != nil {
		h.Log.Error("borrowing list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.BorrowingDetail{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /borrowings/:id
func (h *Controller) Detail(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	d, err := h.Svc.Get(c.Request().Context(), caller, id)
	if err != nil {
		if borrowingsvc.Code(err) == borrowingsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("borrowing detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, d)
}

// PUT/PATCH /borrowings/:id
func (h *Controller) Update(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBorrowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	in := borrowingsvc.UpdateInput{}
	if in.BorrowDate, err = model.ParseDate(req.BorrowDate); err != nil {
		return fieldErr(c, "borrow_date", err.Error())
	}
	if in.ExpectedReturnDate, err = model.ParseDate(req.ExpectedReturnDate); err != nil {
		return fieldErr(c, "expected_return_date", err.Error())
	}
	if req.ActualReturnDate != nil {
		actual, err := model.ParseDate(*req.ActualReturnDate)
		if err != nil {
			return fieldErr(c, "actual_return_date", err.Error())
		}
		in.ActualReturnDate = &actual
	}

	d, err := h.Svc.Update(c.Request().Context(), caller, id, in)
	if err != nil {
		switch borrowingsvc.Code(err) {
		case borrowingsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case borrowingsvc.ErrBadDates:
			return fieldErr(c, "expected_return_date", "Expected return date precedes borrow date.")
		default:
			h.Log.Error("borrowing update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, d)
}

// DELETE /borrowings/:id
func (h *Controller) Delete(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), caller, id); err != nil {
		if borrowingsvc.Code(err) == borrowingsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("borrowing delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /borrowings/:id/return
func (h *Controller) Return(c echo.Context) error {
	caller, _ := jwtx.Caller(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	d, err := h.Svc.Return(c.Request().Context(), caller, id)
	if err != nil {
		switch borrowingsvc.Code(err) {
		case borrowingsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case borrowingsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case borrowingsvc.ErrNotActive:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrowing already returned"})
		default:
			h.Log.Error("borrowing return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, d)
}

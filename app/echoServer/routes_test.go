package echoServer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"libraryapi/app/echoServer"
	authctrl "libraryapi/app/echoServer/controller/auth"
	bookctrl "libraryapi/app/echoServer/controller/book"
	borrowingctrl "libraryapi/app/echoServer/controller/borrowing"
	"libraryapi/model"
	bookrepo "libraryapi/repository/book"
	borrowingrepo "libraryapi/repository/borrowing"
	authsvc "libraryapi/service/auth"
	booksvc "libraryapi/service/book"
	borrowingsvc "libraryapi/service/borrowing"
	jwtutil "libraryapi/util/jwt"
)

const secret = "test_secret"

// --- repo mocks ---

type borrowingRepoMock struct {
	createFn func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error)
	listFn   func(ctx context.Context, f borrowingrepo.Filter) ([]model.BorrowingDetail, error)
}

func (m *borrowingRepoMock) Create(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
	return m.createFn(ctx, b)
}
func (m *borrowingRepoMock) List(ctx context.Context, f borrowingrepo.Filter) ([]model.BorrowingDetail, error) {
	return m.listFn(ctx, f)
}
func (m *borrowingRepoMock) ByID(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
	return nil, borrowingrepo.ErrNotFound
}
func (m *borrowingRepoMock) UpdateDates(ctx context.Context, b *model.Borrowing) error {
	return borrowingrepo.ErrNotFound
}
func (m *borrowingRepoMock) Return(ctx context.Context, id int64, returned model.Date) error {
	return borrowingrepo.ErrNotFound
}
func (m *borrowingRepoMock) Delete(ctx context.Context, id int64) error {
	return borrowingrepo.ErrNotFound
}

type bookRepoMock struct {
	createFn func(ctx context.Context, b *model.Book) error
}

func (m *bookRepoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *bookRepoMock) List(ctx context.Context) ([]model.Book, error)  { return nil, nil }
func (m *bookRepoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return nil, bookrepo.ErrNotFound
}
func (m *bookRepoMock) Update(ctx context.Context, b *model.Book) error { return bookrepo.ErrNotFound }
func (m *bookRepoMock) Delete(ctx context.Context, id int64) error      { return bookrepo.ErrNotFound }

func newServer(t *testing.T, br *borrowingRepoMock, bkr *bookRepoMock) *echo.Echo {
	t.Helper()

	if br == nil {
		br = &borrowingRepoMock{}
	}
	if bkr == nil {
		bkr = &bookRepoMock{}
	}

	v := validator.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	echoServer.Register(e, echoServer.C{
		Auth:      &authctrl.Controller{Svc: authsvc.New(nil, authsvc.Config{Secret: secret, AccessTTLHours: 1, RefreshTTLHours: 1}), V: v, Log: log},
		Book:      &bookctrl.Controller{Svc: booksvc.New(bkr), V: v, Log: log},
		Borrowing: &borrowingctrl.Controller{Svc: borrowingsvc.New(br), V: v, Log: log},
		JWTSecret: secret,
	})
	return e
}

func token(t *testing.T, userID int64, staff bool) string {
	t.Helper()
	tok, err := jwtutil.Issue(secret, userID, "u@example.com", staff, jwtutil.TypeAccess, 1)
	require.NoError(t, err)
	return tok
}

func doJSON(e *echo.Echo, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestListBorrowings_Unauthenticated403(t *testing.T) {
	e := newServer(t, nil, nil)

	rec := doJSON(e, http.MethodGet, "/borrowings", "", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListBorrowings_RefreshTokenRejected(t *testing.T) {
	e := newServer(t, nil, nil)

	ref, err := jwtutil.Issue(secret, 7, "u@example.com", false, jwtutil.TypeRefresh, 1)
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/borrowings", ref, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListBorrowings_NonStaffPinnedToOwnRows(t *testing.T) {
	var got borrowingrepo.Filter
	br := &borrowingRepoMock{
		listFn: func(ctx context.Context, f borrowingrepo.Filter) ([]model.BorrowingDetail, error) {
			got = f
			return []model.BorrowingDetail{{ID: 1, UserID: 7}}, nil
		},
	}
	e := newServer(t, br, nil)

	rec := doJSON(e, http.MethodGet, "/borrowings?user_id=99", token(t, 7, false), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.UserID)
	require.Equal(t, int64(7), *got.UserID)
}

func TestListBorrowings_StaffFiltersCompose(t *testing.T) {
	var got borrowingrepo.Filter
	br := &borrowingRepoMock{
		listFn: func(ctx context.Context, f borrowingrepo.Filter) ([]model.BorrowingDetail, error) {
			got = f
			return nil, nil
		},
	}
	e := newServer(t, br, nil)

	rec := doJSON(e, http.MethodGet, "/borrowings?user_id=99&is_active=true", token(t, 1, true), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.UserID)
	require.Equal(t, int64(99), *got.UserID)
	require.True(t, got.IsActive)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateBorrowing_OutOfStockBody(t *testing.T) {
	br := &borrowingRepoMock{
		createFn: func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
			return nil, borrowingrepo.ErrOutOfStock
		},
	}
	e := newServer(t, br, nil)

	body := `{"borrow_date":"2023-09-07","expected_return_date":"2023-09-14","book_id":3}`
	rec := doJSON(e, http.MethodPost, "/borrowings", token(t, 7, false), body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"book_id": ["This book is out of stock."]}`, rec.Body.String())
}

func TestCreateBorrowing_CallerOverridesBodyUserID(t *testing.T) {
	br := &borrowingRepoMock{
		createFn: func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
			return &model.BorrowingDetail{
				ID:                 1,
				BorrowDate:         b.BorrowDate,
				ExpectedReturnDate: b.ExpectedReturnDate,
				Book:               model.Book{ID: b.BookID, Title: "Test Book"},
				UserID:             b.UserID,
			}, nil
		},
	}
	e := newServer(t, br, nil)

	// body claims user 99; the token says user 7
	body := `{"borrow_date":"2023-09-07","expected_return_date":"2023-09-14","book_id":3,"user_id":99}`
	rec := doJSON(e, http.MethodPost, "/borrowings", token(t, 7, false), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		UserID int64 `json:"user_id"`
		Book   struct {
			ID int64 `json:"id"`
		} `json:"book"`
		ActualReturnDate *string `json:"actual_return_date"`
		BorrowDate       string  `json:"borrow_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.UserID)
	require.Equal(t, int64(3), resp.Book.ID)
	require.Nil(t, resp.ActualReturnDate)
	require.Equal(t, "2023-09-07", resp.BorrowDate)
}

func TestCreateBook_Permissions(t *testing.T) {
	bkr := &bookRepoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 5
			return nil
		},
	}
	e := newServer(t, nil, bkr)

	body := `{"title":"New Book","author":"New Author","cover":"SOFT","inventory":5,"daily_fee":0.5}`

	rec := doJSON(e, http.MethodPost, "/books", token(t, 7, false), body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPost, "/books", token(t, 1, true), body)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestListBooks_OpenRead(t *testing.T) {
	e := newServer(t, nil, nil)

	rec := doJSON(e, http.MethodGet, "/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

package borrowingsvc

import (
	"context"
	"errors"
	"time"

	"libraryapi/access"
	"libraryapi/model"
	borrowingrepo "libraryapi/repository/borrowing"
)

// errors used by controllers

type ErrCode string

const (
	ErrOutOfStock   ErrCode = "OUT_OF_STOCK"
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrNotActive    ErrCode = "NOT_ACTIVE"
	ErrBadDates     ErrCode = "BAD_DATES"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// CreateInput is the borrow request. The borrower is always the caller;
// there is no user field on purpose.
type CreateInput struct {
	BorrowDate         model.Date
	ExpectedReturnDate model.Date
	BookID             int64
}

// UpdateInput rewrites the dates of an existing row.
type UpdateInput struct {
	BorrowDate         model.Date
	ExpectedReturnDate model.Date
	ActualReturnDate   *model.Date
}

// ListQuery carries the optional list filters before policy is applied.
type ListQuery struct {
	UserID   *int64
	IsActive bool
}

type Filter = borrowingrepo.Filter

type Repo interface {
	Create(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error)
	List(ctx context.Context, f Filter) ([]model.BorrowingDetail, error)
	ByID(ctx context.Context, id int64) (*model.BorrowingDetail, error)
	UpdateDates(ctx context.Context, b *model.Borrowing) error
	Return(ctx context.Context, id int64, returned model.Date) error
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	// Create borrows a book for the caller, taking one copy off the shelf.
	Create(ctx context.Context, caller access.Caller, in CreateInput) (*model.BorrowingDetail, error)

	// List applies the caller's visibility scope first, then the filters.
	List(ctx context.Context, caller access.Caller, q ListQuery) ([]model.BorrowingDetail, error)

	Get(ctx context.Context, caller access.Caller, id int64) (*model.BorrowingDetail, error)
	Update(ctx context.Context, caller access.Caller, id int64, in UpdateInput) (*model.BorrowingDetail, error)
	Delete(ctx context.Context, caller access.Caller, id int64) error

	// Return closes an active borrowing and puts the copy back.
	Return(ctx context.Context, caller access.Caller, id int64) (*model.BorrowingDetail, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Create(ctx context.Context, caller access.Caller, in CreateInput) (*model.BorrowingDetail, error) {
	if in.ExpectedReturnDate.Before(in.BorrowDate.Time) {
		return nil, makeErr(ErrBadDates)
	}

	b := &model.Borrowing{
		BorrowDate:         in.BorrowDate,
		ExpectedReturnDate: in.ExpectedReturnDate,
		BookID:             in.BookID,
		UserID:             caller.UserID,
	}
	d, err := s.r.Create(ctx, b)
	if err != nil {
		switch {
		case errors.Is(err, borrowingrepo.ErrOutOfStock):
			return nil, makeErr(ErrOutOfStock)
		case errors.Is(err, borrowingrepo.ErrBookNotFound):
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, caller access.Caller, q ListQuery) ([]model.BorrowingDetail, error) {
	f := Filter{
		UserID:   caller.BorrowingScope(q.UserID),
		IsActive: q.IsActive,
	}
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, caller access.Caller, id int64) (*model.BorrowingDetail, error) {
	d, err := s.r.ByID(ctx, id)
	if errors.Is(err, borrowingrepo.ErrNotFound) {
		return nil, makeErr(ErrNotFound)
	}
	return d, err
}

func (s *service) Update(ctx context.Context, caller access.Caller, id int64, in UpdateInput) (*model.BorrowingDetail, error) {
	if in.ExpectedReturnDate.Before(in.BorrowDate.Time) {
		return nil, makeErr(ErrBadDates)
	}

	cur, err := s.r.ByID(ctx, id)
	if errors.Is(err, borrowingrepo.ErrNotFound) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	b := &model.Borrowing{
		ID:                 id,
		BorrowDate:         in.BorrowDate,
		ExpectedReturnDate: in.ExpectedReturnDate,
		ActualReturnDate:   in.ActualReturnDate,
		BookID:             cur.Book.ID,
		UserID:             cur.UserID,
	}
	if err := s.r.UpdateDates(ctx, b); err != nil {
		if errors.Is(err, borrowingrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return s.r.ByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, caller access.Caller, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, borrowingrepo.ErrNotFound) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Return(ctx context.Context, caller access.Caller, id int64) (*model.BorrowingDetail, error) {
	cur, err := s.r.ByID(ctx, id)
	if errors.Is(err, borrowingrepo.ErrNotFound) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !caller.CanActOnBorrowing(cur.UserID) {
		return nil, makeErr(ErrNotOwner)
	}

	if err := s.r.Return(ctx, id, model.NewDate(s.now())); err != nil {
		switch {
		case errors.Is(err, borrowingrepo.ErrNotFound):
			return nil, makeErr(ErrNotFound)
		case errors.Is(err, borrowingrepo.ErrNotActive):
			return nil, makeErr(ErrNotActive)
		}
		return nil, err
	}
	return s.r.ByID(ctx, id)
}

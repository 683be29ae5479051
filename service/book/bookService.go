package booksvc

import (
	"context"
	"errors"

	"libraryapi/access"
	"libraryapi/model"
	bookrepo "libraryapi/repository/book"
)

// errors used by controllers

type ErrCode string

const (
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrBadInput  ErrCode = "BAD_INPUT"
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

// Input carries the mutable book fields. Inventory nil = unlimited.
type Input struct {
	Title     string
	Author    string
	Cover     model.CoverType
	Inventory *int64
	DailyFee  float64
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	// Create adds a catalog entry. Staff only.
	Create(ctx context.Context, caller access.Caller, in Input) (*model.Book, error)
	// List and Get serve unauthenticated reads too.
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	// Update and Delete follow the same staff rule as Create.
	Update(ctx context.Context, caller access.Caller, id int64, in Input) (*model.Book, error)
	Delete(ctx context.Context, caller access.Caller, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func validate(in Input) error {
	if in.Title == "" || in.Author == "" || in.DailyFee < 0 {
		return makeErr(ErrBadInput)
	}
	if in.Cover != model.CoverHard && in.Cover != model.CoverSoft {
		return makeErr(ErrBadInput)
	}
	if in.Inventory != nil && *in.Inventory < 0 {
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) Create(ctx context.Context, caller access.Caller, in Input) (*model.Book, error) {
	if !caller.CanWriteCatalog() {
		return nil, makeErr(ErrForbidden)
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	b := &model.Book{
		Title:     in.Title,
		Author:    in.Author,
		Cover:     in.Cover,
		Inventory: in.Inventory,
		DailyFee:  in.DailyFee,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if errors.Is(err, bookrepo.ErrNotFound) {
		return nil, makeErr(ErrNotFound)
	}
	return b, err
}

func (s *service) Update(ctx context.Context, caller access.Caller, id int64, in Input) (*model.Book, error) {
	if !caller.CanWriteCatalog() {
		return nil, makeErr(ErrForbidden)
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	b := &model.Book{
		ID:        id,
		Title:     in.Title,
		Author:    in.Author,
		Cover:     in.Cover,
		Inventory: in.Inventory,
		DailyFee:  in.DailyFee,
	}
	if err := s.r.Update(ctx, b); err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, caller access.Caller, id int64) error {
	if !caller.CanWriteCatalog() {
		return makeErr(ErrForbidden)
	}
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

package borrowingsvc_test

import (
	"context"
	"testing"

	"libraryapi/access"
	"libraryapi/model"
	borrowingrepo "libraryapi/repository/borrowing"
	borrowingsvc "libraryapi/service/borrowing"
)

type repoMock struct {
	createFn func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error)
	listFn   func(ctx context.Context, f borrowingsvc.Filter) ([]model.BorrowingDetail, error)
	byIDFn   func(ctx context.Context, id int64) (*model.BorrowingDetail, error)
	updateFn func(ctx context.Context, b *model.Borrowing) error
	returnFn func(ctx context.Context, id int64, returned model.Date) error
	deleteFn func(ctx context.Context, id int64) error
}

func (m *repoMock) Create(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
	return m.createFn(ctx, b)
}
func (m *repoMock) List(ctx context.Context, f borrowingsvc.Filter) ([]model.BorrowingDetail, error) {
	return m.listFn(ctx, f)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) UpdateDates(ctx context.Context, b *model.Borrowing) error {
	return m.updateFn(ctx, b)
}
func (m *repoMock) Return(ctx context.Context, id int64, returned model.Date) error {
	return m.returnFn(ctx, id, returned)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }

var (
	staff   = access.Caller{UserID: 1, Staff: true}
	alice   = access.Caller{UserID: 7}
	mustDay = func(t *testing.T, s string) model.Date {
		t.Helper()
		d, err := model.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
)

func createInput(t *testing.T) borrowingsvc.CreateInput {
	return borrowingsvc.CreateInput{
		BorrowDate:         mustDay(t, "2023-09-07"),
		ExpectedReturnDate: mustDay(t, "2023-09-14"),
		BookID:             3,
	}
}

func TestCreate_BindsCallerIdentity(t *testing.T) {
	var gotUser int64
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
			gotUser = b.UserID
			return &model.BorrowingDetail{ID: 1, UserID: b.UserID}, nil
		},
	}
	s := borrowingsvc.New(m)

	if _, err := s.Create(context.Background(), alice, createInput(t)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotUser != alice.UserID {
		t.Fatalf("borrowing bound to user %d, want caller %d", gotUser, alice.UserID)
	}
}

func TestCreate_OutOfStock(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
			return nil, borrowingrepo.ErrOutOfStock
		},
	}
	s := borrowingsvc.New(m)

	_, err := s.Create(context.Background(), alice, createInput(t))
	if borrowingsvc.Code(err) != borrowingsvc.ErrOutOfStock {
		t.Fatalf("got %v, want OUT_OF_STOCK", err)
	}
}

func TestCreate_UnknownBook(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error) {
			return nil, borrowingrepo.ErrBookNotFound
		},
	}
	s := borrowingsvc.New(m)

	_, err := s.Create(context.Background(), alice, createInput(t))
	if borrowingsvc.Code(err) != borrowingsvc.ErrBookNotFound {
		t.Fatalf("got %v, want BOOK_NOT_FOUND", err)
	}
}

func TestCreate_ReturnBeforeBorrow(t *testing.T) {
	s := borrowingsvc.New(&repoMock{})
	in := createInput(t)
	in.ExpectedReturnDate = mustDay(t, "2023-09-01")

	_, err := s.Create(context.Background(), alice, in)
	if borrowingsvc.Code(err) != borrowingsvc.ErrBadDates {
		t.Fatalf("got %v, want BAD_DATES", err)
	}
}

func TestList_NonStaffPinnedToSelf(t *testing.T) {
	var got borrowingsvc.Filter
	m := &repoMock{
		listFn: func(ctx context.Context, f borrowingsvc.Filter) ([]model.BorrowingDetail, error) {
			got = f
			return nil, nil
		},
	}
	s := borrowingsvc.New(m)

	other := int64(99)
	if _, err := s.List(context.Background(), alice, borrowingsvc.ListQuery{UserID: &other}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.UserID == nil || *got.UserID != alice.UserID {
		t.Fatalf("filter user = %v, want caller id %d", got.UserID, alice.UserID)
	}
}

func TestList_StaffFilters(t *testing.T) {
	var got borrowingsvc.Filter
	m := &repoMock{
		listFn: func(ctx context.Context, f borrowingsvc.Filter) ([]model.BorrowingDetail, error) {
			got = f
			return nil, nil
		},
	}
	s := borrowingsvc.New(m)

	// no target: everyone
	if _, err := s.List(context.Background(), staff, borrowingsvc.ListQuery{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.UserID != nil {
		t.Fatalf("filter user = %v, want nil", *got.UserID)
	}

	// target + is_active compose
	target := int64(7)
	if _, err := s.List(context.Background(), staff, borrowingsvc.ListQuery{UserID: &target, IsActive: true}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.UserID == nil || *got.UserID != 7 || !got.IsActive {
		t.Fatalf("filter = %+v, want user 7 active-only", got)
	}
}

func TestReturn_OwnerOnly(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
			return &model.BorrowingDetail{ID: id, UserID: 8}, nil
		},
	}
	s := borrowingsvc.New(m)

	_, err := s.Return(context.Background(), alice, 5)
	if borrowingsvc.Code(err) != borrowingsvc.ErrNotOwner {
		t.Fatalf("got %v, want NOT_OWNER", err)
	}
}

func TestReturn_StaffMayReturnForeign(t *testing.T) {
	returned := false
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
			return &model.BorrowingDetail{ID: id, UserID: 8}, nil
		},
		returnFn: func(ctx context.Context, id int64, d model.Date) error {
			returned = true
			return nil
		},
	}
	s := borrowingsvc.New(m)

	if _, err := s.Return(context.Background(), staff, 5); err != nil {
		t.Fatalf("return: %v", err)
	}
	if !returned {
		t.Fatal("repo Return not called")
	}
}

func TestReturn_AlreadyReturned(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
			return &model.BorrowingDetail{ID: id, UserID: alice.UserID}, nil
		},
		returnFn: func(ctx context.Context, id int64, d model.Date) error {
			return borrowingrepo.ErrNotActive
		},
	}
	s := borrowingsvc.New(m)

	_, err := s.Return(context.Background(), alice, 5)
	if borrowingsvc.Code(err) != borrowingsvc.ErrNotActive {
		t.Fatalf("got %v, want NOT_ACTIVE", err)
	}
}

func TestGetDelete_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
			return nil, borrowingrepo.ErrNotFound
		},
		deleteFn: func(ctx context.Context, id int64) error { return borrowingrepo.ErrNotFound },
	}
	s := borrowingsvc.New(m)

	if _, err := s.Get(context.Background(), alice, 99); borrowingsvc.Code(err) != borrowingsvc.ErrNotFound {
		t.Fatalf("get: got %v", err)
	}
	if err := s.Delete(context.Background(), alice, 99); borrowingsvc.Code(err) != borrowingsvc.ErrNotFound {
		t.Fatalf("delete: got %v", err)
	}
}

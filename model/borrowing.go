package model

// Borrowing is one ledger row: a single book lent to a single user.
// It is active while ActualReturnDate is nil.
type Borrowing struct {
	ID                 int64 `json:"id"`
	BorrowDate         Date  `json:"borrow_date"`
	ExpectedReturnDate Date  `json:"expected_return_date"`
	ActualReturnDate   *Date `json:"actual_return_date"`
	BookID             int64 `json:"book_id"`
	UserID             int64 `json:"user_id"`
}

func (b Borrowing) IsActive() bool { return b.ActualReturnDate == nil }

// BorrowingDetail is the response shape: the ledger row with the book
// expanded inline.
type BorrowingDetail struct {
	ID                 int64 `json:"id"`
	BorrowDate         Date  `json:"borrow_date"`
	ExpectedReturnDate Date  `json:"expected_return_date"`
	ActualReturnDate   *Date `json:"actual_return_date"`
	Book               Book  `json:"book"`
	UserID             int64 `json:"user_id"`
}

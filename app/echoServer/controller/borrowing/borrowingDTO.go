package borrowing

type CreateBorrowingReq struct {
	BorrowDate         string `json:"borrow_date" validate:"required,datetime=2006-01-02"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"required,datetime=2006-01-02"`
	BookID             int64  `json:"book_id" validate:"required,gt=0"`
	// UserID is accepted but never honored: the borrower is always the
	// authenticated caller.
	UserID *int64 `json:"user_id"`
}

type UpdateBorrowingReq struct {
	BorrowDate         string  `json:"borrow_date" validate:"required,datetime=2006-01-02"`
	ExpectedReturnDate string  `json:"expected_return_date" validate:"required,datetime=2006-01-02"`
	ActualReturnDate   *string `json:"actual_return_date" validate:"omitempty,datetime=2006-01-02"`
}

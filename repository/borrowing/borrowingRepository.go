package borrowingrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"libraryapi/model"
	"libraryapi/util/database"
)

var (
	ErrNotFound     = errors.New("borrowing not found")
	ErrBookNotFound = errors.New("book not found")
	ErrOutOfStock   = errors.New("out of stock")
	ErrNotActive    = errors.New("borrowing not active")
)

// Filter narrows List. UserID nil means every user; IsActive true keeps
// only rows that have not been returned.
type Filter struct {
	UserID   *int64
	IsActive bool
}

type Repo interface {
	// Create locks the book row, verifies stock, decrements inventory and
	// inserts the ledger row in one transaction.
	Create(ctx context.Context, b *model.Borrowing) (*model.BorrowingDetail, error)
	List(ctx context.Context, f Filter) ([]model.BorrowingDetail, error)
	ByID(ctx context.Context, id int64) (*model.BorrowingDetail, error)
	UpdateDates(ctx context.Context, b *model.Borrowing) error
	// Return stamps actual_return_date and puts the copy back on the shelf.
	Return(ctx context.Context, id int64, returned model.Date) error
	// Delete removes the row; an active borrowing gives its copy back first.
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const detailColumns = `
	br.id, br.borrow_date, br.expected_return_date, br.actual_return_date, br.user_id,
	b.id, b.title, b.author, b.cover, b.inventory, b.daily_fee`

func (r *repo) Create(ctx context.Context, br *model.Borrowing) (*model.BorrowingDetail, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the book row so a concurrent borrow of the last copy waits here.
	var book model.Book
	err = tx.QueryRow(ctx, `
		SELECT id, title, author, cover, inventory, daily_fee
		FROM books
		WHERE id = $1
		FOR UPDATE`,
		br.BookID,
	).Scan(&book.ID, &book.Title, &book.Author, &book.Cover, &book.Inventory, &book.DailyFee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	// NULL inventory means unlimited copies.
	if book.Inventory != nil {
		if *book.Inventory == 0 {
			return nil, ErrOutOfStock
		}
		left := *book.Inventory - 1
		if _, err = tx.Exec(ctx, `UPDATE books SET inventory = $2 WHERE id = $1`, book.ID, left); err != nil {
			return nil, err
		}
		book.Inventory = &left
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO borrowings (borrow_date, expected_return_date, book_id, user_id)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		br.BorrowDate.Time, br.ExpectedReturnDate.Time, br.BookID, br.UserID,
	).Scan(&br.ID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &model.BorrowingDetail{
		ID:                 br.ID,
		BorrowDate:         br.BorrowDate,
		ExpectedReturnDate: br.ExpectedReturnDate,
		ActualReturnDate:   nil,
		Book:               book,
		UserID:             br.UserID,
	}, nil
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.BorrowingDetail, error) {
	q := `
		SELECT ` + detailColumns + `
		FROM borrowings br
		JOIN books b ON b.id = br.book_id
		WHERE 1=1`
	var args []any
	if f.UserID != nil {
		args = append(args, *f.UserID)
		q += fmt.Sprintf(" AND br.user_id = $%d", len(args))
	}
	if f.IsActive {
		q += " AND br.actual_return_date IS NULL"
	}
	q += " ORDER BY br.id"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BorrowingDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.BorrowingDetail, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+detailColumns+`
		FROM borrowings br
		JOIN books b ON b.id = br.book_id
		WHERE br.id = $1`,
		id,
	)
	d, err := scanDetail(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repo) UpdateDates(ctx context.Context, br *model.Borrowing) error {
	var actual *time.Time
	if br.ActualReturnDate != nil {
		actual = &br.ActualReturnDate.Time
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE borrowings
		SET borrow_date = $2, expected_return_date = $3, actual_return_date = $4
		WHERE id = $1`,
		br.ID, br.BorrowDate.Time, br.ExpectedReturnDate.Time, actual,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Return(ctx context.Context, id int64, returned model.Date) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bookID, active, err := lockRow(ctx, tx, id)
	if err != nil {
		return err
	}
	if !active {
		return ErrNotActive
	}

	if _, err = tx.Exec(ctx, `
		UPDATE borrowings SET actual_return_date = $2 WHERE id = $1`,
		id, returned.Time,
	); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE books SET inventory = inventory + 1
		WHERE id = $1 AND inventory IS NOT NULL`,
		bookID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bookID, active, err := lockRow(ctx, tx, id)
	if err != nil {
		return err
	}
	if active {
		if _, err = tx.Exec(ctx, `
			UPDATE books SET inventory = inventory + 1
			WHERE id = $1 AND inventory IS NOT NULL`,
			bookID,
		); err != nil {
			return err
		}
	}
	if _, err = tx.Exec(ctx, `DELETE FROM borrowings WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func lockRow(ctx context.Context, tx pgx.Tx, id int64) (bookID int64, active bool, err error) {
	var actual *time.Time
	err = tx.QueryRow(ctx, `
		SELECT book_id, actual_return_date
		FROM borrowings
		WHERE id = $1
		FOR UPDATE`,
		id,
	).Scan(&bookID, &actual)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, err
	}
	return bookID, actual == nil, nil
}

func scanDetail(row pgx.Row) (*model.BorrowingDetail, error) {
	var d model.BorrowingDetail
	var borrow, expected time.Time
	var actual *time.Time
	err := row.Scan(
		&d.ID, &borrow, &expected, &actual, &d.UserID,
		&d.Book.ID, &d.Book.Title, &d.Book.Author, &d.Book.Cover, &d.Book.Inventory, &d.Book.DailyFee,
	)
	if err != nil {
		return nil, err
	}
	d.BorrowDate = model.NewDate(borrow)
	d.ExpectedReturnDate = model.NewDate(expected)
	if actual != nil {
		ad := model.NewDate(*actual)
		d.ActualReturnDate = &ad
	}
	return &d, nil
}

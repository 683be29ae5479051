package bookrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"libraryapi/model"
	"libraryapi/util/database"
)

// ErrNotFound is returned when no book has the requested id.
var ErrNotFound = errors.New("book not found")

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, cover, inventory, daily_fee)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	return r.db.Pool.QueryRow(ctx, q, b.Title, b.Author, b.Cover, b.Inventory, b.DailyFee).Scan(&b.ID)
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT id, title, author, cover, inventory, daily_fee
		FROM books
		ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Inventory, &b.DailyFee); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, cover, inventory, daily_fee
		FROM books
		WHERE id = $1`
	var b model.Book
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Inventory, &b.DailyFee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2, author = $3, cover = $4, inventory = $5, daily_fee = $6
		WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, b.ID, b.Title, b.Author, b.Cover, b.Inventory, b.DailyFee)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

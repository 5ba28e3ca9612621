package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `bun:",notnull" json:"title"`
	AuthorID  string    `bun:",notnull" json:"author_id"`
	Summary   string    `bun:",notnull" json:"summary"`
	ISBN      string    `bun:"isbn,notnull" json:"isbn"`
	// GenreIDs is stored in book_genres.
	GenreIDs []string `bun:"-" json:"genre_ids"`
}

func (b *Book) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.ID, validation.Required, is.UUID),
		validation.Field(&b.Title, validation.Required),
		validation.Field(&b.AuthorID, validation.Required, is.UUID),
		validation.Field(&b.Summary, validation.Required),
		validation.Field(&b.ISBN, validation.Required),
		validation.Field(&b.GenreIDs, validation.Each(validation.Required, is.UUID)),
	)
}

type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	BookID  string `bun:",pk" json:"book_id"`
	GenreID string `bun:",pk" json:"genre_id"`
}

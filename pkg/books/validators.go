package books

import (
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/models"
)

type BookPayload struct {
	Title   string   `form:"title" json:"title" mod:"trim" validate:"required" sanitize:"escape"`
	Author  string   `form:"author" json:"author" mod:"trim" validate:"required,uuid"`
	Summary string   `form:"summary" json:"summary" mod:"trim" validate:"required" sanitize:"escape"`
	ISBN    string   `form:"isbn" json:"isbn" mod:"trim" validate:"required" sanitize:"escape"`
	Genre   []string `form:"genre" json:"genre" mod:"list" validate:"dive,uuid"`
}

// bookColumns are the columns an update overwrites.
var bookColumns = []string{"title", "author_id", "summary", "isbn"}

func payloadFromBook(b *models.Book) BookPayload {
	return BookPayload{
		Title:   b.Title,
		Author:  b.AuthorID,
		Summary: b.Summary,
		ISBN:    b.ISBN,
		Genre:   binder.NormalizeList(b.GenreIDs),
	}
}

func (p BookPayload) book(id string) *models.Book {
	return &models.Book{
		ID:       id,
		Title:    p.Title,
		AuthorID: p.Author,
		Summary:  p.Summary,
		ISBN:     p.ISBN,
		GenreIDs: uniqueIDs(binder.NormalizeList(p.Genre)),
	}
}

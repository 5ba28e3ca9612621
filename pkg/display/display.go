// Package display computes the derived fields shown for catalog records.
package display

import (
	"time"

	"github.com/locallibrary/library/pkg/models"
)

const (
	CatalogPath       = "/catalog"
	AuthorsPath       = CatalogPath + "/authors"
	BooksPath         = CatalogPath + "/books"
	GenresPath        = CatalogPath + "/genres"
	BookInstancesPath = CatalogPath + "/bookinstances"

	mediumDateLayout = "Jan 2, 2006"
	shortDateLayout  = "2006-01-02"
)

// AuthorName returns "family_name, first_name". If either part is missing
// the name is empty.
func AuthorName(a *models.Author) string {
	if a == nil || a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// AuthorLifespan formats the known dates of birth and death as "dob - dod".
func AuthorLifespan(a *models.Author) string {
	if a == nil || (a.DateOfBirth == nil && a.DateOfDeath == nil) {
		return ""
	}
	return Date(a.DateOfBirth) + " - " + Date(a.DateOfDeath)
}

func AuthorURL(a *models.Author) string {
	return CatalogPath + "/author/" + a.ID
}

func BookURL(b *models.Book) string {
	return CatalogPath + "/book/" + b.ID
}

func GenreURL(g *models.Genre) string {
	return CatalogPath + "/genre/" + g.ID
}

func BookInstanceURL(bi *models.BookInstance) string {
	return CatalogPath + "/bookinstance/" + bi.ID
}

func DueBack(bi *models.BookInstance) string {
	return bi.DueBack.Format(mediumDateLayout)
}

// DueBackShort is the due date in the form accepted by a date input.
func DueBackShort(bi *models.BookInstance) string {
	return bi.DueBack.Format(shortDateLayout)
}

// Date formats an optional date in the medium layout, or "" when absent.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(mediumDateLayout)
}

// DateShort formats an optional date as YYYY-MM-DD, or "" when absent.
func DateShort(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(shortDateLayout)
}

package authors

import (
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/display"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
)

type AuthorPayload struct {
	FirstName   string `form:"first_name" json:"first_name" mod:"trim" validate:"required,max=100,alphanum" sanitize:"escape"`
	FamilyName  string `form:"family_name" json:"family_name" mod:"trim" validate:"required,max=100,alphanum" sanitize:"escape"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth" mod:"trim" validate:"omitempty,date"`
	DateOfDeath string `form:"date_of_death" json:"date_of_death" mod:"trim" validate:"omitempty,date"`
}

// authorColumns are the columns an update overwrites.
var authorColumns = []string{"first_name", "family_name", "date_of_birth", "date_of_death"}

func payloadFromAuthor(a *models.Author) AuthorPayload {
	return AuthorPayload{
		FirstName:   a.FirstName,
		FamilyName:  a.FamilyName,
		DateOfBirth: display.DateShort(a.DateOfBirth),
		DateOfDeath: display.DateShort(a.DateOfDeath),
	}
}

func (p AuthorPayload) author(id string) (*models.Author, error) {
	dob, err := binder.ParseDate(p.DateOfBirth)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	dod, err := binder.ParseDate(p.DateOfDeath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &models.Author{
		ID:          id,
		FirstName:   p.FirstName,
		FamilyName:  p.FamilyName,
		DateOfBirth: dob,
		DateOfDeath: dod,
	}, nil
}

package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

const AuthorNameMaxLength = 100

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID          string     `bun:",pk" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FirstName   string     `bun:",notnull" json:"first_name"`
	FamilyName  string     `bun:",notnull" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death"`
}

func (a *Author) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ID, validation.Required, is.UUID),
		validation.Field(&a.FirstName, validation.Required, validation.RuneLength(1, AuthorNameMaxLength)),
		validation.Field(&a.FamilyName, validation.Required, validation.RuneLength(1, AuthorNameMaxLength)),
	)
}

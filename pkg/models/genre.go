package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",notnull" json:"name"`
}

func (g *Genre) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.ID, validation.Required, is.UUID),
		validation.Field(&g.Name, validation.Required),
	)
}

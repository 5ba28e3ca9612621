package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

// Circulation states of a single copy of a book.
const (
	BookInstanceStatusAvailable   = "Available"
	BookInstanceStatusMaintenance = "Maintenance"
	BookInstanceStatusLoaned      = "Loaned"
	BookInstanceStatusReserved    = "Reserved"
)

var BookInstanceStatuses = []string{
	BookInstanceStatusAvailable,
	BookInstanceStatusMaintenance,
	BookInstanceStatusLoaned,
	BookInstanceStatusReserved,
}

type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    string    `bun:",notnull" json:"book_id"`
	Imprint   string    `bun:",notnull" json:"imprint"`
	Status    string    `bun:",notnull" json:"status"`
	DueBack   time.Time `bun:",notnull" json:"due_back"`
}

func (bi *BookInstance) Validate() error {
	statuses := make([]interface{}, len(BookInstanceStatuses))
	for i, s := range BookInstanceStatuses {
		statuses[i] = s
	}
	return validation.ValidateStruct(bi,
		validation.Field(&bi.ID, validation.Required, is.UUID),
		validation.Field(&bi.BookID, validation.Required, is.UUID),
		validation.Field(&bi.Imprint, validation.Required),
		validation.Field(&bi.Status, validation.Required, validation.In(statuses...)),
		validation.Field(&bi.DueBack, validation.Required),
	)
}

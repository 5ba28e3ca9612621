package bookinstances

import (
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/display"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
)

type BookInstancePayload struct {
	Book    string `form:"book" json:"book" mod:"trim" validate:"required,uuid"`
	Imprint string `form:"imprint" json:"imprint" mod:"trim" validate:"required" sanitize:"escape"`
	Status  string `form:"status" json:"status" mod:"trim" default:"Maintenance" validate:"oneof=Available Maintenance Loaned Reserved"`
	DueBack string `form:"due_back" json:"due_back" mod:"trim" validate:"omitempty,date"`
}

// bookInstanceColumns are the columns an update overwrites.
var bookInstanceColumns = []string{"book_id", "imprint", "status", "due_back"}

func payloadFromBookInstance(bi *models.BookInstance) BookInstancePayload {
	return BookInstancePayload{
		Book:    bi.BookID,
		Imprint: bi.Imprint,
		Status:  bi.Status,
		DueBack: display.DueBackShort(bi),
	}
}

// bookInstance builds the record described by the payload. An empty due date
// is left zero so that create can default it to the creation time.
func (p BookInstancePayload) bookInstance(id string) (*models.BookInstance, error) {
	dueBack, err := binder.ParseDate(p.DueBack)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	instance := &models.BookInstance{
		ID:      id,
		BookID:  p.Book,
		Imprint: p.Imprint,
		Status:  p.Status,
	}
	if dueBack != nil {
		instance.DueBack = *dueBack
	}
	return instance, nil
}

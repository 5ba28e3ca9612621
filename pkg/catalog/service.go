package catalog

import (
	"context"
	"database/sql"

	"github.com/locallibrary/library/pkg/authors"
	"github.com/locallibrary/library/pkg/bookinstances"
	"github.com/locallibrary/library/pkg/books"
	"github.com/locallibrary/library/pkg/genres"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Counts summarizes the size of the catalog.
type Counts struct {
	Books           int `json:"books"`
	Copies          int `json:"copies"`
	AvailableCopies int `json:"available_copies"`
	Authors         int `json:"authors"`
	Genres          int `json:"genres"`
}

type Service struct {
	db                  *bun.DB
	authorService       *authors.Service
	bookService         *books.Service
	bookInstanceService *bookinstances.Service
	genreService        *genres.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:                  db,
		authorService:       authors.NewService(db),
		bookService:         books.NewService(db),
		bookInstanceService: bookinstances.NewService(db),
		genreService:        genres.NewService(db),
	}
}

func (svc *Service) Counts(ctx context.Context) (*Counts, error) {
	var err error
	counts := &Counts{}

	counts.Books, err = svc.bookService.CountBooks(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts.Copies, err = svc.bookInstanceService.CountBookInstances(ctx, bookinstances.ListBookInstancesOptions{})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	available := models.BookInstanceStatusAvailable
	counts.AvailableCopies, err = svc.bookInstanceService.CountBookInstances(ctx, bookinstances.ListBookInstancesOptions{
		Status: &available,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts.Authors, err = svc.authorService.CountAuthors(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts.Genres, err = svc.genreService.CountGenres(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return counts, nil
}

// Reset deletes every catalog record, dependents first.
func (svc *Service) Reset(ctx context.Context) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		tables := []interface{}{
			(*models.BookInstance)(nil),
			(*models.BookGenre)(nil),
			(*models.Book)(nil),
			(*models.Genre)(nil),
			(*models.Author)(nil),
		}
		for _, model := range tables {
			_, err := tx.NewDelete().
				Model(model).
				Where("1=1").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
}

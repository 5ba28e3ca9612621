package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/locallibrary/library/pkg/authors"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/genres"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// View is a book with its author and genres resolved.
type View struct {
	*models.Book
	Author *models.Author
	Genres []*models.Genre
}

type RetrieveBookOptions struct {
	ID *string
}

type ListBooksOptions struct {
	IDs []string
}

type UpdateBookOptions struct {
	Columns      []string
	UpdateGenres bool
}

type Service struct {
	db            *bun.DB
	authorService *authors.Service
	genreService  *genres.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:            db,
		authorService: authors.NewService(db),
		genreService:  genres.NewService(db),
	}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		book.ID = id.String()
	}
	book.GenreIDs = uniqueIDs(book.GenreIDs)

	if err := book.Validate(); err != nil {
		return errcodes.ValidationError(err.Error())
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return insertBookGenres(ctx, tx, book)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	if err := svc.loadGenreIDs(ctx, []*models.Book{book}); err != nil {
		return nil, err
	}

	return book, nil
}

// RetrieveBookView retrieves a book together with its author and genres.
func (svc *Service) RetrieveBookView(ctx context.Context, opts RetrieveBookOptions) (*View, error) {
	book, err := svc.RetrieveBook(ctx, opts)
	if err != nil {
		return nil, err
	}

	views, err := svc.populate(ctx, []*models.Book{book})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

// ListBooks returns books in the order they were added.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.created_at ASC")

	if opts.IDs != nil {
		if len(opts.IDs) == 0 {
			return books, nil
		}
		q = q.Where("b.id IN (?)", bun.In(opts.IDs))
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := svc.loadGenreIDs(ctx, books); err != nil {
		return nil, err
	}

	return books, nil
}

// ListBookViews lists books with their authors and genres resolved.
func (svc *Service) ListBookViews(ctx context.Context, opts ListBooksOptions) ([]*View, error) {
	books, err := svc.ListBooks(ctx, opts)
	if err != nil {
		return nil, err
	}
	return svc.populate(ctx, books)
}

func (svc *Service) CountBooks(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}

// UpdateBook writes the given columns of book, and replaces its genres when
// UpdateGenres is set. It returns NotFound when no book has book.ID.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 && !opts.UpdateGenres {
		return nil
	}

	book.GenreIDs = uniqueIDs(book.GenreIDs)
	if err := book.Validate(); err != nil {
		return errcodes.ValidationError(err.Error())
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Update updated_at.
		now := time.Now()
		book.UpdatedAt = now
		columns := append(append([]string{}, opts.Columns...), "updated_at")

		res, err := tx.
			NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}

		if opts.UpdateGenres {
			// Delete all previous genres and save these new ones.
			_, err := tx.
				NewDelete().
				Model((*models.BookGenre)(nil)).
				Where("book_id = ?", book.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			if err := insertBookGenres(ctx, tx, book); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// DeleteBook deletes a book and its genre associations.
func (svc *Service) DeleteBook(ctx context.Context, bookID string) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// GetInstances returns every copy of this book.
func (svc *Service) GetInstances(ctx context.Context, bookID string) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}

	err := svc.db.NewSelect().
		Model(&instances).
		Where("bi.book_id = ?", bookID).
		Order("bi.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return instances, nil
}

func (svc *Service) loadGenreIDs(ctx context.Context, books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[string]*models.Book, len(books))
	ids := make([]string, 0, len(books))
	for _, b := range books {
		b.GenreIDs = []string{}
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	var links []*models.BookGenre
	err := svc.db.NewSelect().
		Model(&links).
		Where("bg.book_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, link := range links {
		if b, ok := byID[link.BookID]; ok {
			b.GenreIDs = append(b.GenreIDs, link.GenreID)
		}
	}
	return nil
}

// populate resolves the author and genre references of books with one
// lookup per referenced table.
func (svc *Service) populate(ctx context.Context, books []*models.Book) ([]*View, error) {
	views := make([]*View, 0, len(books))
	if len(books) == 0 {
		return views, nil
	}

	var authorIDs, genreIDs []string
	for _, b := range books {
		authorIDs = append(authorIDs, b.AuthorID)
		genreIDs = append(genreIDs, b.GenreIDs...)
	}

	authorList, err := svc.authorService.ListAuthors(ctx, authors.ListAuthorsOptions{IDs: uniqueIDs(authorIDs)})
	if err != nil {
		return nil, err
	}
	authorsByID := make(map[string]*models.Author, len(authorList))
	for _, a := range authorList {
		authorsByID[a.ID] = a
	}

	genreList, err := svc.genreService.ListGenres(ctx, genres.ListGenresOptions{IDs: uniqueIDs(genreIDs)})
	if err != nil {
		return nil, err
	}
	genresByID := make(map[string]*models.Genre, len(genreList))
	for _, g := range genreList {
		genresByID[g.ID] = g
	}

	for _, b := range books {
		view := &View{
			Book:   b,
			Author: authorsByID[b.AuthorID],
			Genres: []*models.Genre{},
		}
		// Keep the genres in name order.
		for _, g := range genreList {
			if containsID(b.GenreIDs, g.ID) {
				view.Genres = append(view.Genres, genresByID[g.ID])
			}
		}
		views = append(views, view)
	}

	return views, nil
}

func insertBookGenres(ctx context.Context, tx bun.Tx, book *models.Book) error {
	if len(book.GenreIDs) == 0 {
		return nil
	}

	links := make([]*models.BookGenre, 0, len(book.GenreIDs))
	for _, genreID := range book.GenreIDs {
		links = append(links, &models.BookGenre{BookID: book.ID, GenreID: genreID})
	}

	_, err := tx.
		NewInsert().
		Model(&links).
		Exec(ctx)
	return errors.WithStack(err)
}

// uniqueIDs drops repeated ids, keeping the first occurrence. It never
// returns nil.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

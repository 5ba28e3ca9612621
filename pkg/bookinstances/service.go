package bookinstances

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/locallibrary/library/pkg/books"
	"github.com/locallibrary/library/pkg/errcodes"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// View is a book instance with its book resolved.
type View struct {
	*models.BookInstance
	Book *models.Book
}

type RetrieveBookInstanceOptions struct {
	ID *string
}

type ListBookInstancesOptions struct {
	Status *string
}

type UpdateBookInstanceOptions struct {
	Columns []string
}

type Service struct {
	db          *bun.DB
	bookService *books.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:          db,
		bookService: books.NewService(db),
	}
}

// CreateBookInstance inserts a copy of a book. A missing status defaults to
// Maintenance and a missing due date to the creation time.
func (svc *Service) CreateBookInstance(ctx context.Context, instance *models.BookInstance) error {
	now := time.Now()
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	instance.UpdatedAt = instance.CreatedAt
	if instance.Status == "" {
		instance.Status = models.BookInstanceStatusMaintenance
	}
	if instance.DueBack.IsZero() {
		instance.DueBack = instance.CreatedAt
	}

	if instance.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		instance.ID = id.String()
	}

	if err := instance.Validate(); err != nil {
		return errcodes.ValidationError(err.Error())
	}

	_, err := svc.db.
		NewInsert().
		Model(instance).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBookInstance(ctx context.Context, opts RetrieveBookInstanceOptions) (*models.BookInstance, error) {
	instance := &models.BookInstance{}

	q := svc.db.
		NewSelect().
		Model(instance)

	if opts.ID != nil {
		q = q.Where("bi.id = ?", *opts.ID)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("BookInstance")
		}
		return nil, errors.WithStack(err)
	}

	return instance, nil
}

func (svc *Service) RetrieveBookInstanceView(ctx context.Context, opts RetrieveBookInstanceOptions) (*View, error) {
	instance, err := svc.RetrieveBookInstance(ctx, opts)
	if err != nil {
		return nil, err
	}

	views, err := svc.populate(ctx, []*models.BookInstance{instance})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

// ListBookInstances returns copies in the order they were added.
func (svc *Service) ListBookInstances(ctx context.Context, opts ListBookInstancesOptions) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}

	q := svc.db.
		NewSelect().
		Model(&instances).
		Order("bi.created_at ASC")
	q = applyFilters(q, opts)

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return instances, nil
}

func (svc *Service) ListBookInstanceViews(ctx context.Context, opts ListBookInstancesOptions) ([]*View, error) {
	instances, err := svc.ListBookInstances(ctx, opts)
	if err != nil {
		return nil, err
	}
	return svc.populate(ctx, instances)
}

func (svc *Service) CountBookInstances(ctx context.Context, opts ListBookInstancesOptions) (int, error) {
	q := svc.db.NewSelect().
		Model((*models.BookInstance)(nil))
	q = applyFilters(q, opts)

	count, err := q.Count(ctx)
	return count, errors.WithStack(err)
}

func (svc *Service) UpdateBookInstance(ctx context.Context, instance *models.BookInstance, opts UpdateBookInstanceOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	if err := instance.Validate(); err != nil {
		return errcodes.ValidationError(err.Error())
	}

	// Update updated_at.
	now := time.Now()
	instance.UpdatedAt = now
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(instance).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("BookInstance")
	}

	return nil
}

func (svc *Service) DeleteBookInstance(ctx context.Context, instanceID string) error {
	_, err := svc.db.NewDelete().
		Model((*models.BookInstance)(nil)).
		Where("id = ?", instanceID).
		Exec(ctx)
	return errors.WithStack(err)
}

func applyFilters(q *bun.SelectQuery, opts ListBookInstancesOptions) *bun.SelectQuery {
	if opts.Status != nil {
		q = q.Where("bi.status = ?", *opts.Status)
	}
	return q
}

func (svc *Service) populate(ctx context.Context, instances []*models.BookInstance) ([]*View, error) {
	views := make([]*View, 0, len(instances))
	if len(instances) == 0 {
		return views, nil
	}

	seen := map[string]struct{}{}
	bookIDs := []string{}
	for _, bi := range instances {
		if _, ok := seen[bi.BookID]; ok {
			continue
		}
		seen[bi.BookID] = struct{}{}
		bookIDs = append(bookIDs, bi.BookID)
	}

	bookList, err := svc.bookService.ListBooks(ctx, books.ListBooksOptions{IDs: bookIDs})
	if err != nil {
		return nil, err
	}
	booksByID := make(map[string]*models.Book, len(bookList))
	for _, b := range bookList {
		booksByID[b.ID] = b
	}

	for _, bi := range instances {
		views = append(views, &View{
			BookInstance: bi,
			Book:         booksByID[bi.BookID],
		})
	}

	return views, nil
}

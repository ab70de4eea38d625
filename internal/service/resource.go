package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/validation"
)

// repository is the subset of a store.Table that Resource requires.
type repository[T any] interface {
	Name() string
	Create(ctx context.Context, rec *T) error
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[T], error)
	All(ctx context.Context, filters map[string]string) ([]*T, error)
}

// entity is satisfied by pointers to domain records.
type entity[T any] interface {
	*T
	Base() *domain.Meta
	Validate() error
}

type defaulter interface {
	Defaults()
}

// Resource is the CRUD service shared by every collection: it validates,
// persists, publishes change events and logs.
type Resource[T any, P entity[T]] struct {
	repo   repository[T]
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time

	// check runs after field validation on create and update, for rules that
	// need the database such as referenced records existing.
	check func(ctx context.Context, rec *T) error
	// preserve copies server-managed fields from the stored record onto an
	// incoming update.
	preserve func(ctx context.Context, stored, incoming *T) error
}

func NewResource[T any, P entity[T]](repo repository[T], pub events.Publisher, logger *slog.Logger) *Resource[T, P] {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Resource[T, P]{
		repo:   repo,
		events: pub,
		logger: logger.With("collection", repo.Name()),
		now:    time.Now,
	}
}

// Collection is the name records are stored and published under.
func (r *Resource[T, P]) Collection() string {
	return r.repo.Name()
}

func (r *Resource[T, P]) validate(ctx context.Context, rec *T) error {
	if d, ok := any(rec).(defaulter); ok {
		d.Defaults()
	}
	if err := P(rec).Validate(); err != nil {
		return err
	}
	if r.check != nil {
		return r.check(ctx, rec)
	}
	return nil
}

func (r *Resource[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	P(rec).Base().ID = uuid.Nil
	if err := r.validate(ctx, rec); err != nil {
		return nil, err
	}
	return r.insert(ctx, rec)
}

// insert persists an already validated record.
func (r *Resource[T, P]) insert(ctx context.Context, rec *T) (*T, error) {
	if err := r.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	id := P(rec).Base().ID
	r.logger.InfoContext(ctx, "record created", "id", id)
	r.publish(ctx, events.ActionCreate, id, rec)
	return rec, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.repo.Get(ctx, id)
}

func (r *Resource[T, P]) List(ctx context.Context, q domain.ListQuery) (*domain.Page[T], error) {
	return r.repo.List(ctx, q)
}

func (r *Resource[T, P]) All(ctx context.Context, filters map[string]string) ([]*T, error) {
	return r.repo.All(ctx, filters)
}

// Update replaces the stored record with rec. The id must be set.
func (r *Resource[T, P]) Update(ctx context.Context, rec *T) (*T, error) {
	meta := P(rec).Base()
	stored, err := r.repo.Get(ctx, meta.ID)
	if err != nil {
		return nil, err
	}
	if r.preserve != nil {
		if err := r.preserve(ctx, stored, rec); err != nil {
			return nil, err
		}
	}
	meta.CreatedAt = P(stored).Base().CreatedAt
	if err := r.validate(ctx, rec); err != nil {
		return nil, err
	}
	return r.save(ctx, rec)
}

// save persists changes to an existing, already validated record.
func (r *Resource[T, P]) save(ctx context.Context, rec *T) (*T, error) {
	if err := r.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	id := P(rec).Base().ID
	r.logger.InfoContext(ctx, "record updated", "id", id)
	r.publish(ctx, events.ActionUpdate, id, rec)
	return rec, nil
}

func (r *Resource[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "record deleted", "id", id)
	r.publish(ctx, events.ActionDelete, id, nil)
	return nil
}

func (r *Resource[T, P]) publish(ctx context.Context, action events.Action, id uuid.UUID, data any) {
	r.events.Publish(ctx, events.Event{
		Collection: r.repo.Name(),
		Action:     action,
		ID:         id,
		At:         r.now().UTC(),
		Data:       data,
	})
}

type getter[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
}

// mustExist turns a missing referenced record into a field error.
func mustExist[T any](ctx context.Context, repo getter[T], field string, id uuid.UUID) (*T, error) {
	rec, err := repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, validation.Invalid(field, "does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", field, err)
	}
	return rec, nil
}

// conflict reports an operation that is not allowed in the record's state.
func conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrConflict)
}

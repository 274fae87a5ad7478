package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/photos"
	"github.com/five82/backoffice/internal/query"
)

var (
	// ErrSingleton is returned for create or delete on a singleton variant.
	ErrSingleton = errors.New("operation not supported for a singleton")
	// ErrNoItem is returned when an item is not present in the cached list.
	ErrNoItem = errors.New("item not found")
)

// Manager runs list, create, update and delete for one content variant.
// Every variant uses the same implementation, parameterized by its schema.
type Manager[T content.Entity] struct {
	schema   content.Schema[T]
	qc       *query.Client
	log      zerolog.Logger
	photoOpt []photos.Option
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	log      zerolog.Logger
	photoOpt []photos.Option
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithPhotoOptions configures the ingestor of every form.
func WithPhotoOptions(opts ...photos.Option) Option {
	return func(o *options) { o.photoOpt = append(o.photoOpt, opts...) }
}

func NewManager[T content.Entity](schema content.Schema[T], qc *query.Client, opts ...Option) *Manager[T] {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{
		schema:   schema,
		qc:       qc,
		log:      o.log.With().Str("component", "admin").Str("kind", string(schema.Kind)).Logger(),
		photoOpt: o.photoOpt,
	}
}

func (m *Manager[T]) Schema() content.Schema[T] { return m.schema }

// ListKey is the cache key this manager reads and invalidates.
func (m *Manager[T]) ListKey() string { return query.ListKey(m.schema.Path) }

func (m *Manager[T]) itemKey(id int64) string { return query.ItemKey(m.schema.Path, id) }

// List returns the collection, from cache when fresh. For a singleton it
// returns a one-element list.
func (m *Manager[T]) List(ctx context.Context) ([]T, error) {
	if m.schema.Singleton {
		v, err := m.Load(ctx)
		if err != nil {
			return nil, err
		}
		return []T{v}, nil
	}
	items, err := query.Fetch[[]T](ctx, m.qc, m.ListKey())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.schema.Kind, err)
	}
	return items, nil
}

// Cached returns the list currently in the cache without fetching.
func (m *Manager[T]) Cached() (items []T, stale bool, ok bool) {
	if m.schema.Singleton {
		v := m.schema.New()
		isStale, found, err := m.qc.Peek(m.ListKey(), v)
		if !found || err != nil {
			return nil, false, false
		}
		return []T{v}, isStale, true
	}
	isStale, found, err := m.qc.Peek(m.ListKey(), &items)
	if !found || err != nil {
		return nil, false, false
	}
	return items, isStale, true
}

// Refresh refetches the list. On failure the cached list is kept.
func (m *Manager[T]) Refresh(ctx context.Context) ([]T, error) {
	if _, err := m.qc.Refresh(ctx, m.ListKey()); err != nil {
		return nil, fmt.Errorf("refresh %s: %w", m.schema.Kind, err)
	}
	return m.List(ctx)
}

// Get returns one item by id.
func (m *Manager[T]) Get(ctx context.Context, id int64) (T, error) {
	if m.schema.Singleton {
		return m.Load(ctx)
	}
	v := m.schema.New()
	raw, err := m.qc.Read(ctx, m.itemKey(id))
	if err != nil {
		return v, fmt.Errorf("get %s %d: %w", m.schema.Kind, id, err)
	}
	if err := decodeInto(raw, v); err != nil {
		return v, fmt.Errorf("get %s %d: %w", m.schema.Kind, id, err)
	}
	return v, nil
}

// Load reads a singleton.
func (m *Manager[T]) Load(ctx context.Context) (T, error) {
	v := m.schema.New()
	raw, err := m.qc.Read(ctx, m.ListKey())
	if err != nil {
		return v, fmt.Errorf("load %s: %w", m.schema.Kind, err)
	}
	if err := decodeInto(raw, v); err != nil {
		return v, fmt.Errorf("load %s: %w", m.schema.Kind, err)
	}
	return v, nil
}

// NewForm opens an empty create form.
func (m *Manager[T]) NewForm() (*Form[T], error) {
	if m.schema.Singleton {
		return nil, fmt.Errorf("create %s: %w", m.schema.Kind, ErrSingleton)
	}
	return newForm(m, m.schema.New(), false)
}

// EditForm opens a form pre-filled from entity.
func (m *Manager[T]) EditForm(entity T) (*Form[T], error) {
	working, err := m.schema.Clone(entity)
	if err != nil {
		return nil, err
	}
	return newForm(m, working, true)
}

// RequestDelete returns a pending deletion that does nothing until
// confirmed.
func (m *Manager[T]) RequestDelete(entity T) (*PendingDelete, error) {
	if m.schema.Singleton {
		return nil, fmt.Errorf("delete %s: %w", m.schema.Kind, ErrSingleton)
	}
	id := entity.EntityID()
	label := m.schema.Label(entity)
	return &PendingDelete{
		qc:    m.qc,
		kind:  m.schema.Kind,
		title: m.schema.Title,
		id:    id,
		label: label,
		mutation: query.Mutation{
			Method:      http.MethodDelete,
			Path:        m.itemKey(id),
			Invalidates: []string{m.ListKey(), m.itemKey(id)},
		},
		log: m.log,
	}, nil
}

// save issues the create or update for a validated entity.
func (m *Manager[T]) save(ctx context.Context, entity T, editing bool) (T, error) {
	saved := m.schema.New()
	mut := query.Mutation{Method: http.MethodPost, Path: m.ListKey(), Body: entity, Invalidates: []string{m.ListKey()}}
	switch {
	case m.schema.Singleton:
		mut.Method = http.MethodPut
	case editing:
		mut.Method = http.MethodPut
		mut.Path = m.itemKey(entity.EntityID())
		mut.Invalidates = append(mut.Invalidates, m.itemKey(entity.EntityID()))
	}
	if err := m.qc.Mutate(ctx, mut, saved); err != nil {
		return saved, err
	}
	m.log.Info().Str("method", mut.Method).Int64("id", saved.EntityID()).Msg("saved")
	return saved, nil
}

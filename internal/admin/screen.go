package admin

import (
	"context"
	"fmt"

	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/photos"
	"github.com/five82/backoffice/internal/query"
)

// ColumnSpec is a list column without its value accessor.
type ColumnSpec struct {
	Title string
	Width int
}

// Row is one rendered list entry.
type Row struct {
	ID    int64
	Cells []string
}

// FormHandle is a Form with its entity type erased.
type FormHandle interface {
	Title() string
	Editing() bool
	Fields() []FieldState
	Set(name, value string) error
	PhotoRefs() []string
	AddPhotoURL(raw string) (int, error)
	AddPhotoFile(ctx context.Context, path string) (<-chan photos.Result, error)
	RemovePhoto(i int) error
	PhotosBusy() bool
	Submit(ctx context.Context) error
	Submitting() bool
	Notice() (Notice, bool)
	IsOpen() bool
	Close()
}

// Screen is a Manager with its entity type erased, so callers can hold the
// managers of every variant in one slice.
type Screen interface {
	Kind() content.Kind
	Title() string
	Singleton() bool
	ListKey() string
	Columns() []ColumnSpec
	Rows(ctx context.Context) ([]Row, error)
	CachedRows() (rows []Row, stale bool, ok bool)
	RefreshRows(ctx context.Context) ([]Row, error)
	OpenCreate() (FormHandle, error)
	OpenEdit(ctx context.Context, id int64) (FormHandle, error)
	PrepareDelete(ctx context.Context, id int64) (*PendingDelete, error)
}

var _ Screen = (*Manager[*content.Product])(nil)
var _ FormHandle = (*Form[*content.Product])(nil)

func (m *Manager[T]) Kind() content.Kind { return m.schema.Kind }
func (m *Manager[T]) Title() string      { return m.schema.Title }
func (m *Manager[T]) Singleton() bool    { return m.schema.Singleton }

func (m *Manager[T]) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(m.schema.Columns))
	for i, c := range m.schema.Columns {
		out[i] = ColumnSpec{Title: c.Title, Width: c.Width}
	}
	return out
}

func (m *Manager[T]) rows(items []T) []Row {
	out := make([]Row, 0, len(items))
	for _, item := range items {
		cells := make([]string, len(m.schema.Columns))
		for i, c := range m.schema.Columns {
			cells[i] = c.Value(item)
		}
		out = append(out, Row{ID: item.EntityID(), Cells: cells})
	}
	return out
}

func (m *Manager[T]) Rows(ctx context.Context) ([]Row, error) {
	items, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return m.rows(items), nil
}

func (m *Manager[T]) CachedRows() ([]Row, bool, bool) {
	items, stale, ok := m.Cached()
	if !ok {
		return nil, false, false
	}
	return m.rows(items), stale, true
}

func (m *Manager[T]) RefreshRows(ctx context.Context) ([]Row, error) {
	items, err := m.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return m.rows(items), nil
}

func (m *Manager[T]) OpenCreate() (FormHandle, error) {
	f, err := m.NewForm()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// OpenEdit opens an edit form for id, taken from the cached list when
// present and fetched otherwise.
func (m *Manager[T]) OpenEdit(ctx context.Context, id int64) (FormHandle, error) {
	entity, err := m.find(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := m.EditForm(entity)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (m *Manager[T]) PrepareDelete(ctx context.Context, id int64) (*PendingDelete, error) {
	if m.schema.Singleton {
		return nil, fmt.Errorf("delete %s: %w", m.schema.Kind, ErrSingleton)
	}
	entity, err := m.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.RequestDelete(entity)
}

func (m *Manager[T]) find(ctx context.Context, id int64) (T, error) {
	if m.schema.Singleton {
		return m.Load(ctx)
	}
	if items, _, ok := m.Cached(); ok {
		for _, item := range items {
			if item.EntityID() == id {
				return item, nil
			}
		}
	}
	return m.Get(ctx, id)
}

func (f *Form[T]) PhotoRefs() []string { return f.photos.Items() }

func (f *Form[T]) AddPhotoURL(raw string) (int, error) {
	if !f.IsOpen() {
		return 0, ErrFormClosed
	}
	return f.ingest.AddURL(raw)
}

func (f *Form[T]) AddPhotoFile(ctx context.Context, path string) (<-chan photos.Result, error) {
	if !f.IsOpen() {
		return nil, ErrFormClosed
	}
	return f.ingest.AddFile(ctx, path)
}

func (f *Form[T]) RemovePhoto(i int) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}
	_, err := f.photos.RemoveAt(i)
	return err
}

func (f *Form[T]) PhotosBusy() bool { return f.ingest.Busy() }

// NewScreens returns a Screen for every content variant in menu order.
func NewScreens(qc *query.Client, opts ...Option) []Screen {
	return []Screen{
		NewManager(content.ProductSchema(), qc, opts...),
		NewManager(content.BlogSchema(), qc, opts...),
		NewManager(content.GallerySchema(), qc, opts...),
		NewManager(content.PortfolioSchema(), qc, opts...),
		NewManager(content.CustomerSchema(), qc, opts...),
		NewInquiries(qc, opts...),
		NewManager(content.ContactInfoSchema(), qc, opts...),
	}
}

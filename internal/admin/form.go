package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/photos"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrSubmitInFlight = errors.New("a save is already in progress")
	ErrFormClosed     = errors.New("form is closed")
	ErrPhotosPending  = errors.New("wait for the photo to finish reading")
	ErrUnknownField   = errors.New("unknown field")
)

// ValidationError carries client-side field messages. No request was sent.
type ValidationError struct {
	Fields content.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Notice is a message shown on an open form after the server refused a
// save.
type Notice struct {
	Kind    api.Kind
	Message string
}

func noticeFor(err error) Notice {
	kind := api.KindOf(err)
	var msg string
	switch kind {
	case api.KindAuthRequired:
		msg = "Your session has expired. Sign in again to save."
	case api.KindValidation:
		msg = "The server rejected the changes."
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" && len(apiErr.Fields) == 0 {
			msg = "The server rejected the changes: " + apiErr.Message + "."
		}
	case api.KindNotFound:
		msg = "This item no longer exists."
	default:
		msg = "Could not reach the server: " + err.Error()
	}
	return Notice{Kind: kind, Message: msg}
}

// FieldState is one field as presented to the operator.
type FieldState struct {
	Name  string
	Label string
	Kind  content.FieldKind
	Value string
	Error string
}

// Form edits one entity. Values are held as strings and parsed on submit.
// A form stays open until a save succeeds or it is closed.
type Form[T content.Entity] struct {
	m       *Manager[T]
	base    T
	editing bool
	photos  *photos.List
	ingest  *photos.Ingestor

	mu         sync.Mutex
	values     map[string]string
	errs       map[string]string
	notice     *Notice
	open       bool
	submitting bool
}

func newForm[T content.Entity](m *Manager[T], base T, editing bool) (*Form[T], error) {
	values := make(map[string]string, len(m.schema.Fields))
	for _, f := range m.schema.Fields {
		values[f.Name] = f.Get(base)
	}
	list := photos.NewList(base.PhotoRefs())
	return &Form[T]{
		m:       m,
		base:    base,
		editing: editing,
		photos:  list,
		ingest:  photos.NewIngestor(list, m.photoOpt...),
		values:  values,
		open:    true,
	}, nil
}

func (f *Form[T]) Title() string {
	noun := strings.ReplaceAll(string(f.m.schema.Kind), "_", " ")
	switch {
	case f.m.schema.Singleton:
		return "Edit " + noun
	case f.editing:
		return fmt.Sprintf("Edit %s #%d", noun, f.base.EntityID())
	default:
		return "New " + noun
	}
}

// Editing reports whether the form updates an existing item.
func (f *Form[T]) Editing() bool { return f.editing }

func (f *Form[T]) Fields() []FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FieldState, 0, len(f.m.schema.Fields))
	for _, fd := range f.m.schema.Fields {
		out = append(out, FieldState{
			Name:  fd.Name,
			Label: fd.Label,
			Kind:  fd.Kind,
			Value: f.values[fd.Name],
			Error: f.errs[fd.Name],
		})
	}
	return out
}

func (f *Form[T]) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Set replaces the value of one field and clears its error.
func (f *Form[T]) Set(name, value string) error {
	if _, ok := f.m.schema.Field(name); !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrFormClosed
	}
	f.values[name] = value
	delete(f.errs, name)
	return nil
}

// Photos is the form's ordered photo list.
func (f *Form[T]) Photos() *photos.List { return f.photos }

// Ingestor adds photos to the form's list.
func (f *Form[T]) Ingestor() *photos.Ingestor { return f.ingest }

// Errors returns a copy of the current field messages.
func (f *Form[T]) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *Form[T]) Notice() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notice == nil {
		return Notice{}, false
	}
	return *f.notice, true
}

func (f *Form[T]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Form[T]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Close discards the form. A save already in flight still completes and
// updates the cache.
func (f *Form[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// Save validates the values, sends the create or update and closes the
// form on success. Client-side failures return *ValidationError without a
// request. Server failures leave the form open with its values and record a
// Notice; 400 field messages are attached to the fields.
func (f *Form[T]) Save(ctx context.Context) (T, error) {
	var zero T
	f.mu.Lock()
	switch {
	case !f.open:
		f.mu.Unlock()
		return zero, ErrFormClosed
	case f.submitting:
		f.mu.Unlock()
		return zero, ErrSubmitInFlight
	case f.ingest.Busy():
		f.mu.Unlock()
		return zero, ErrPhotosPending
	}
	f.submitting = true
	f.notice = nil
	values := make(map[string]string, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	entity, errs, err := f.build(values)
	if err != nil {
		return zero, err
	}
	if len(errs) > 0 {
		f.mu.Lock()
		f.errs = errs
		f.mu.Unlock()
		return zero, &ValidationError{Fields: errs}
	}

	saved, err := f.m.save(ctx, entity, f.editing)
	if err != nil {
		n := noticeFor(err)
		f.mu.Lock()
		f.notice = &n
		if fields := api.FieldErrors(err); fields != nil {
			f.errs = fields
		}
		f.mu.Unlock()
		return zero, err
	}

	f.mu.Lock()
	f.open = false
	f.errs = nil
	f.mu.Unlock()
	return saved, nil
}

// Submit is Save without the saved entity.
func (f *Form[T]) Submit(ctx context.Context) error {
	_, err := f.Save(ctx)
	return err
}

func (f *Form[T]) build(values map[string]string) (T, content.FieldErrors, error) {
	entity, err := f.m.schema.Clone(f.base)
	if err != nil {
		return entity, nil, err
	}
	errs := content.FieldErrors{}
	for _, fd := range f.m.schema.Fields {
		if err := fd.Set(entity, values[fd.Name]); err != nil {
			errs[fd.Name] = err.Error()
		}
	}
	entity.SetPhotoRefs(f.photos.Items())

	for name, msg := range content.Validate(entity) {
		if _, seen := errs[name]; !seen {
			errs[name] = msg
		}
	}
	return entity, errs, nil
}

func decodeInto(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

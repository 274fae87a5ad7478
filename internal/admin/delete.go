package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/query"
)

// ErrDeleteSettled is returned when a pending deletion was already
// confirmed or cancelled.
var ErrDeleteSettled = errors.New("deletion already settled")

type deleteState int

const (
	deletePending deleteState = iota
	deleteRunning
	deleteDone
	deleteCancelled
)

// PendingDelete is a deletion waiting for confirmation. Nothing is sent
// until Confirm is called.
type PendingDelete struct {
	qc       *query.Client
	kind     content.Kind
	title    string
	id       int64
	label    string
	mutation query.Mutation
	log      zerolog.Logger

	mu    sync.Mutex
	state deleteState
}

func (p *PendingDelete) ID() int64 { return p.id }

func (p *PendingDelete) Kind() content.Kind { return p.kind }

// Prompt is the confirmation question shown to the operator.
func (p *PendingDelete) Prompt() string {
	if p.label == "" {
		return fmt.Sprintf("Delete %s #%d?", p.kind, p.id)
	}
	return fmt.Sprintf("Delete %s #%d %q?", p.kind, p.id, p.label)
}

// Confirm sends the delete. On failure the deletion stays pending and may
// be confirmed again; the cached list is left as it was.
func (p *PendingDelete) Confirm(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case deleteRunning:
		p.mu.Unlock()
		return ErrSubmitInFlight
	case deleteDone, deleteCancelled:
		p.mu.Unlock()
		return ErrDeleteSettled
	}
	p.state = deleteRunning
	p.mu.Unlock()

	err := p.qc.Mutate(ctx, p.mutation, nil)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = deletePending
		p.log.Warn().Err(err).Int64("id", p.id).Msg("delete failed")
		return fmt.Errorf("delete %s %d: %w", p.kind, p.id, err)
	}
	p.state = deleteDone
	p.log.Info().Int64("id", p.id).Msg("deleted")
	return nil
}

// Cancel drops the deletion. It has no effect once Confirm has succeeded.
func (p *PendingDelete) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == deletePending {
		p.state = deleteCancelled
	}
}

// Done reports whether the deletion was confirmed successfully.
func (p *PendingDelete) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == deleteDone
}

package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/query"
)

// ReadMarker is implemented by screens whose items can be marked read.
type ReadMarker interface {
	MarkRead(ctx context.Context, id int64) error
}

// Inquiries manages visitor inquiries. Besides the common operations an
// inquiry can be marked read.
type Inquiries struct {
	*Manager[*content.Inquiry]
}

var _ ReadMarker = (*Inquiries)(nil)

func NewInquiries(qc *query.Client, opts ...Option) *Inquiries {
	return &Inquiries{Manager: NewManager(content.InquirySchema(), qc, opts...)}
}

func (i *Inquiries) MarkRead(ctx context.Context, id int64) error {
	mut := query.Mutation{
		Method:      http.MethodPatch,
		Path:        i.itemKey(id) + "/read",
		Invalidates: []string{i.ListKey(), i.itemKey(id)},
	}
	if err := i.qc.Mutate(ctx, mut, nil); err != nil {
		return fmt.Errorf("mark inquiry %d read: %w", id, err)
	}
	i.log.Info().Int64("id", id).Msg("marked read")
	return nil
}

// AboutStats reads the public about-page counters.
func AboutStats(ctx context.Context, qc *query.Client) (content.AboutStats, error) {
	stats, err := query.Fetch[content.AboutStats](ctx, qc, content.PathAboutStats)
	if err != nil {
		return stats, fmt.Errorf("about stats: %w", err)
	}
	return stats, nil
}

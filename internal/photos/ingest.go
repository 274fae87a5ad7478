package photos

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/metrics"
)

var (
	// ErrBusy is returned while a file read is in flight.
	ErrBusy     = errors.New("a photo is still being read")
	ErrEmptyRef = errors.New("photo reference is empty")
	ErrBadURL   = errors.New("photo URL must be http, https or an image data URL")
	ErrNotImage = errors.New("file is not an image")
)

// DefaultWarnBytes is the embed size above which a warning is logged.
const DefaultWarnBytes = 2 << 20

// Result reports the outcome of one AddFile call.
type Result struct {
	Path  string
	Index int
	MIME  string
	Size  int
	Err   error
}

// Ingestor adds photos to a List. At most one file read is in flight; while
// it runs every add is refused with ErrBusy so the URL-then-file order the
// operator sees is the order stored.
type Ingestor struct {
	list      *List
	warnBytes int
	log       zerolog.Logger
	readFile  func(string) ([]byte, error)

	mu   sync.Mutex
	busy bool
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithWarnBytes sets the size above which embedding logs a warning.
func WithWarnBytes(n int) Option {
	return func(in *Ingestor) {
		if n > 0 {
			in.warnBytes = n
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(in *Ingestor) { in.log = log.With().Str("component", "photos").Logger() }
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(in *Ingestor) { in.readFile = fn }
}

// NewIngestor returns an Ingestor appending to list.
func NewIngestor(list *List, opts ...Option) *Ingestor {
	in := &Ingestor{
		list:      list,
		warnBytes: DefaultWarnBytes,
		log:       zerolog.Nop(),
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Busy reports whether a file read is in flight.
func (in *Ingestor) Busy() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.busy
}

// AddURL appends a remote or data URL and returns its index.
func (in *Ingestor) AddURL(raw string) (int, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return -1, ErrEmptyRef
	}
	if !content.IsPhotoRef(ref) {
		return -1, fmt.Errorf("%q: %w", ref, ErrBadURL)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.busy {
		return -1, ErrBusy
	}
	return in.list.Append(ref), nil
}

// AddFile reads path in the background, embeds it as a data URL and appends
// it. The returned channel receives exactly one Result.
func (in *Ingestor) AddFile(ctx context.Context, path string) (<-chan Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyRef
	}

	in.mu.Lock()
	if in.busy {
		in.mu.Unlock()
		return nil, ErrBusy
	}
	in.busy = true
	in.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		res := Result{Path: path, Index: -1}
		data, err := in.readFile(path)
		if err == nil {
			err = ctx.Err()
		}
		var ref string
		if err == nil {
			ref, res.MIME, err = Encode(data)
		}

		in.mu.Lock()
		if err == nil {
			res.Index = in.list.Append(ref)
			res.Size = len(data)
		}
		in.busy = false
		in.mu.Unlock()

		if err != nil {
			res.Err = fmt.Errorf("add photo %s: %w", path, err)
			in.log.Warn().Err(err).Str("path", path).Msg("photo rejected")
		} else {
			metrics.PhotoBytes.Observe(float64(res.Size))
			ev := in.log.Debug()
			if res.Size > in.warnBytes {
				ev = in.log.Warn().Int("warn_bytes", in.warnBytes)
			}
			ev.Str("path", path).Str("mime", res.MIME).Int("bytes", res.Size).Msg("photo embedded")
		}
		out <- res
		close(out)
	}()
	return out, nil
}

// Encode returns data as a base64 data URL. Only images are accepted.
func Encode(data []byte) (ref string, mime string, err error) {
	if len(data) == 0 {
		return "", "", ErrNotImage
	}
	mt := mimetype.Detect(data)
	mime, _, _ = strings.Cut(mt.String(), ";")
	if !strings.HasPrefix(mime, "image/") {
		return "", mime, fmt.Errorf("%s: %w", mime, ErrNotImage)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), mime, nil
}

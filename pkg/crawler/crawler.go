package crawler

import (
	"context"
	"io"
	"time"

	"github.com/l2cup/finddoc/pkg/log"
	"github.com/pkg/errors"
)

// RecordSeparator terminates every path record written to a sink.
// NUL cannot occur inside a path on any supported filesystem.
const RecordSeparator byte = 0x00

// ErrSinkClosed is returned by a crawl that stopped because its primary sink
// refused a write, typically a selector that exited before reading everything.
var ErrSinkClosed = errors.New("sink closed")

type DirCrawler interface {
	// Crawl writes every non-directory path under root to sink and, when it
	// is not nil, to altSink. It returns once the whole tree was listed.
	Crawl(ctx context.Context, root string, sink io.Writer, altSink io.Writer, opts ...Option) (Stats, error)
}

type Crawler struct {
	Logger *log.Logger
}

func New(logger *log.Logger) *Crawler {
	return &Crawler{
		Logger: logger,
	}
}

// Stats describes one finished crawl.
type Stats struct {
	JobsCreated   int
	JobsCompleted int
	Dirs          int
	Files         int
	Ignored       int
	// Failed counts directories that could not be listed and were skipped.
	Failed  int
	Elapsed time.Duration
}

type Options struct {
	Progress func(files int)
}

type Option func(*Options)

// WithProgress registers fn to be called once per listed directory with the
// number of paths it contributed.
func WithProgress(fn func(files int)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

func ApplyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

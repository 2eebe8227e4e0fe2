// Package updater refreshes the cache entries of many roots at once.
package updater

import (
	"context"
	"time"

	"github.com/Jeffail/tunny"
	"github.com/l2cup/finddoc/pkg/cache"
	"github.com/l2cup/finddoc/pkg/crawler"
	"github.com/l2cup/finddoc/pkg/dispatcher"
	"github.com/l2cup/finddoc/pkg/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Store *cache.Store
	// Dispatcher receives progress events when set.
	Dispatcher *dispatcher.Dispatcher
	Logger     *log.Logger
	// MaxParallel caps concurrent refreshes, one per root when <= 0.
	MaxParallel int
}

type Updater struct {
	store       *cache.Store
	dispatcher  *dispatcher.Dispatcher
	logger      *log.Logger
	maxParallel int
}

type RootResult struct {
	Root  string
	Stats crawler.Stats
	Err   error
}

type Report struct {
	Roots   []RootResult
	Files   int
	Elapsed time.Duration
}

func (r Report) Failed() []RootResult {
	var failed []RootResult
	for _, rr := range r.Roots {
		if rr.Err != nil {
			failed = append(failed, rr)
		}
	}
	return failed
}

func New(c *Config) *Updater {
	logger := c.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Updater{
		store:       c.Store,
		dispatcher:  c.Dispatcher,
		logger:      logger,
		maxParallel: c.MaxParallel,
	}
}

// Update refreshes every root with its own crawl. A failing root is recorded
// in the report and never stops the others. The returned error is only set
// when ctx ended the update.
func (u *Updater) Update(ctx context.Context, roots []string) (Report, error) {
	start := time.Now()
	report := Report{Roots: make([]RootResult, len(roots))}
	if len(roots) == 0 {
		return report, nil
	}

	size := u.maxParallel
	if size <= 0 || size > len(roots) {
		size = len(roots)
	}

	pool := tunny.NewFunc(size, func(payload interface{}) interface{} {
		root, ok := payload.(string)
		if !ok {
			return RootResult{Err: errors.New("couldn't convert payload")}
		}
		return u.refresh(ctx, root)
	})
	defer pool.Close()

	var g errgroup.Group
	for i, root := range roots {
		g.Go(func() error {
			out, err := pool.ProcessCtx(ctx, root)
			if err != nil {
				report.Roots[i] = RootResult{Root: root, Err: err}
				return nil
			}
			result, ok := out.(RootResult)
			if !ok {
				result = RootResult{Root: root, Err: errors.New("couldn't convert result")}
			}
			report.Roots[i] = result
			return nil
		})
	}
	_ = g.Wait()

	for _, rr := range report.Roots {
		if rr.Err == nil {
			report.Files += rr.Stats.Files
		}
	}
	report.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	if len(report.Failed()) < len(roots) {
		if err := u.store.SaveTotal(report.Files); err != nil {
			u.logger.Error("couldn't save total", "err", err)
		}
	}

	return report, nil
}

func (u *Updater) refresh(ctx context.Context, root string) RootResult {
	u.push(ctx, dispatcher.NewRootStartedJob(root))

	stats, err := u.store.Refresh(ctx, root, crawler.WithProgress(func(files int) {
		u.push(ctx, dispatcher.NewDirectoryScannedJob(root, files))
	}))
	if err != nil {
		u.logger.Error("couldn't refresh root", "root", root, "err", err)
	}

	// Summaries wait for this event, so it is delivered even after ctx ended.
	if u.dispatcher != nil {
		u.dispatcher.Push(dispatcher.NewRootFinishedJob(root, stats, err))
	}
	return RootResult{Root: root, Stats: stats, Err: err}
}

func (u *Updater) push(ctx context.Context, job *dispatcher.Job) {
	if u.dispatcher == nil {
		return
	}
	if err := u.dispatcher.PushContext(ctx, job); err != nil {
		u.logger.Debug("dropped progress event", "type", job.Type, "err", err)
	}
}

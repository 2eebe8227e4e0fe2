package dir

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/l2cup/finddoc/pkg/crawler"
	"github.com/l2cup/finddoc/pkg/crawler/ignore"
	"github.com/l2cup/finddoc/pkg/log"
	"github.com/pkg/errors"
)

type Config struct {
	Crawler *crawler.Crawler
	// Workers is the pool size of every crawl, runtime.NumCPU() when <= 0.
	Workers int
	Ignore  ignore.Filter
	// ReadDir lists the direct children of a directory. Defaults to an
	// unsorted os.File.ReadDir.
	ReadDir func(dir string) ([]os.DirEntry, error)
}

type crawlerImplementation struct {
	*crawler.Crawler

	workers int
	ignore  ignore.Filter
	readDir func(dir string) ([]os.DirEntry, error)
}

var _ crawler.DirCrawler = (*crawlerImplementation)(nil)

func NewCrawlerImplementation(c *Config) crawler.DirCrawler {
	ci := &crawlerImplementation{
		Crawler: c.Crawler,
		workers: c.Workers,
		ignore:  c.Ignore,
		readDir: c.ReadDir,
	}

	if ci.Crawler == nil {
		ci.Crawler = crawler.New(log.NewNop())
	}
	if ci.workers <= 0 {
		ci.workers = runtime.NumCPU()
	}
	if ci.ignore == nil {
		ci.ignore = ignore.Default()
	}
	if ci.readDir == nil {
		ci.readDir = readDirUnsorted
	}

	return ci
}

// Crawl runs one worker pool over root. The driver (this goroutine) owns the
// job counters and is the only writer to the sinks.
func (ci *crawlerImplementation) Crawl(
	ctx context.Context,
	root string,
	sink io.Writer,
	altSink io.Writer,
	opts ...crawler.Option,
) (crawler.Stats, error) {
	start := time.Now()
	options := crawler.ApplyOptions(opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := newJobQueue()
	results := make(chan scanResult, ci.workers)

	wg := sync.WaitGroup{}
	wg.Add(ci.workers)
	for i := 0; i < ci.workers; i++ {
		go func() {
			defer wg.Done()
			ci.work(ctx, jobs, results)
		}()
	}

	stats := crawler.Stats{JobsCreated: 1}
	jobs.push(newScanJob(root))

	err := ci.drive(ctx, results, &stats, sink, altSink, options)

	// On early exit the workers drop whatever is still queued.
	cancel()
	for i := 0; i < ci.workers; i++ {
		jobs.push(newStopJob())
	}
	wg.Wait()
	abandoned := jobs.len()

	stats.Elapsed = time.Since(start)
	ci.Logger.Debug("crawl finished",
		"root", root,
		"files", stats.Files,
		"dirs", stats.Dirs,
		"failed", stats.Failed,
		"ignored", stats.Ignored,
		"abandoned", abandoned,
		"elapsed", stats.Elapsed)

	return stats, err
}

func (ci *crawlerImplementation) drive(
	ctx context.Context,
	results <-chan scanResult,
	stats *crawler.Stats,
	sink io.Writer,
	altSink io.Writer,
	options crawler.Options,
) error {
	record := make([]byte, 0, 256)

	for stats.JobsCompleted < stats.JobsCreated {
		var result scanResult
		select {
		case result = <-results:
		case <-ctx.Done():
			return ctx.Err()
		}

		stats.JobsCompleted++
		stats.JobsCreated += len(result.dirs)

		if result.kind == failedResultKind {
			stats.Failed++
			ci.Logger.Debug("skipping unreadable directory", "dir", result.dir, "err", result.err)
			continue
		}
		stats.Dirs++

		accepted := 0
		for _, name := range result.files {
			path := filepath.Join(result.dir, name)
			if ci.ignore.Ignored(path) {
				stats.Ignored++
				continue
			}

			record = append(append(record[:0], path...), crawler.RecordSeparator)
			if _, err := sink.Write(record); err != nil {
				return errors.Wrap(crawler.ErrSinkClosed, err.Error())
			}
			if altSink != nil {
				if _, err := altSink.Write(record); err != nil {
					return errors.Wrap(err, "couldn't write to alternate sink")
				}
			}
			accepted++
		}
		stats.Files += accepted

		if options.Progress != nil {
			options.Progress(accepted)
		}
	}

	return nil
}

// work processes jobs until it pops a stop job. A directory's result is sent
// before its subdirectories are queued, so the driver always accounts for a
// parent's children before any child's result can reach it.
func (ci *crawlerImplementation) work(ctx context.Context, jobs *jobQueue, results chan<- scanResult) {
	for {
		j := jobs.pop()
		if j.kind == stopJobKind {
			return
		}
		if ctx.Err() != nil {
			continue
		}

		result := ci.scan(j.dir)

		select {
		case results <- result:
		case <-ctx.Done():
			continue
		}

		for _, name := range result.dirs {
			jobs.push(newScanJob(filepath.Join(j.dir, name)))
		}
	}
}

func (ci *crawlerImplementation) scan(dir string) scanResult {
	entries, err := ci.readDir(dir)
	if err != nil {
		return newFailedResult(dir, err)
	}
	return newListingResult(dir, entries)
}

func readDirUnsorted(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.ReadDir(-1)
}

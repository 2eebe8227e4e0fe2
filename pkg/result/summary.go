package result

import (
	"sync"
	"time"

	"github.com/l2cup/finddoc/pkg/crawler"
)

// Summary tracks one root's refresh. Live counts come from directory events,
// the final numbers from the root's finished event.
type Summary struct {
	mutex sync.Mutex
	done  chan struct{}

	root     string
	started  time.Time
	files    int
	dirs     int
	stats    crawler.Stats
	err      error
	finished bool
}

// Report is a point-in-time copy of a Summary.
type Report struct {
	Root     string
	Started  time.Time
	Files    int
	Dirs     int
	Failed   int
	Elapsed  time.Duration
	Err      error
	Finished bool
}

func newSummary(root string) *Summary {
	return &Summary{
		root: root,
		done: make(chan struct{}),
	}
}

func (s *Summary) start(at time.Time) {
	defer s.mutex.Unlock()
	s.mutex.Lock()

	if s.started.IsZero() {
		s.started = at
	}
}

func (s *Summary) addDirectory(files int) {
	defer s.mutex.Unlock()
	s.mutex.Lock()

	if s.finished {
		return
	}
	s.files += files
	s.dirs++
}

func (s *Summary) finish(stats crawler.Stats, err error) {
	defer s.mutex.Unlock()
	s.mutex.Lock()

	if s.finished {
		return
	}
	s.stats = stats
	s.files = stats.Files
	s.dirs = stats.Dirs
	s.err = err
	s.finished = true
	close(s.done)
}

func (s *Summary) Report() Report {
	defer s.mutex.Unlock()
	s.mutex.Lock()

	return Report{
		Root:     s.root,
		Started:  s.started,
		Files:    s.files,
		Dirs:     s.dirs,
		Failed:   s.stats.Failed,
		Elapsed:  s.stats.Elapsed,
		Err:      s.err,
		Finished: s.finished,
	}
}

// Wait blocks until the root finished and returns its final report.
func (s *Summary) Wait() Report {
	<-s.done
	return s.Report()
}

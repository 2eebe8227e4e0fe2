package dir

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type jobKind int

const (
	scanJobKind jobKind = iota
	stopJobKind
)

// job is either a directory to list or the signal for one worker to stop.
type job struct {
	kind jobKind
	dir  string
}

func newScanJob(dir string) job {
	return job{kind: scanJobKind, dir: dir}
}

func newStopJob() job {
	return job{kind: stopJobKind}
}

type resultKind int

const (
	listingResultKind resultKind = iota
	failedResultKind
)

// scanResult is produced exactly once for every scan job a worker processed.
type scanResult struct {
	kind  resultKind
	dir   string
	dirs  []string
	files []string
	err   error
}

func newListingResult(dir string, entries []os.DirEntry) scanResult {
	r := scanResult{kind: listingResultKind, dir: dir}
	for _, e := range entries {
		switch {
		case e.IsDir():
			r.dirs = append(r.dirs, e.Name())
		case e.Type()&fs.ModeSymlink != 0 && linksToDir(filepath.Join(dir, e.Name())):
			// Links to directories are neither records nor followed.
		default:
			r.files = append(r.files, e.Name())
		}
	}
	return r
}

func linksToDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func newFailedResult(dir string, err error) scanResult {
	return scanResult{kind: failedResultKind, dir: dir, err: err}
}

// jobQueue is an unbounded FIFO shared by every worker of one crawl.
// Workers push children while other workers pop, so a bounded channel
// could deadlock once every worker waits on a full buffer.
type jobQueue struct {
	mutex sync.Mutex
	cond  *sync.Cond
	jobs  []job
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	q.cond = sync.NewCond(&q.mutex)
	return q
}

func (q *jobQueue) push(j job) {
	q.mutex.Lock()
	q.jobs = append(q.jobs, j)
	q.mutex.Unlock()
	q.cond.Signal()
}

// pop blocks until a job is available.
func (q *jobQueue) pop() job {
	defer q.mutex.Unlock()
	q.mutex.Lock()

	for len(q.jobs) == 0 {
		q.cond.Wait()
	}

	j := q.jobs[0]
	q.jobs[0] = job{}
	q.jobs = q.jobs[1:]
	return j
}

func (q *jobQueue) len() int {
	defer q.mutex.Unlock()
	q.mutex.Lock()
	return len(q.jobs)
}

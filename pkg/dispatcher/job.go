package dispatcher

import (
	"time"

	"github.com/l2cup/finddoc/pkg/crawler"
)

type JobType string
type JobPayload = interface{}

const (
	RootStartedJobType      JobType = "ROOT_STARTED_JOB_TYPE"
	DirectoryScannedJobType JobType = "DIRECTORY_SCANNED_JOB_TYPE"
	RootFinishedJobType     JobType = "ROOT_FINISHED_JOB_TYPE"
)

type Job struct {
	Type    JobType
	Payload JobPayload
}

type RootStartedPayload struct {
	Root string
	Time time.Time
}

// DirectoryScannedPayload is pushed once per listed directory of Root.
type DirectoryScannedPayload struct {
	Root  string
	Files int
}

// RootFinishedPayload carries the authoritative totals of a refresh. Err is
// nil when the entry was committed.
type RootFinishedPayload struct {
	Root  string
	Stats crawler.Stats
	Err   error
}

func NewRootStartedJob(root string) *Job {
	return &Job{
		Type:    RootStartedJobType,
		Payload: &RootStartedPayload{Root: root, Time: time.Now()},
	}
}

func NewDirectoryScannedJob(root string, files int) *Job {
	return &Job{
		Type:    DirectoryScannedJobType,
		Payload: &DirectoryScannedPayload{Root: root, Files: files},
	}
}

func NewRootFinishedJob(root string, stats crawler.Stats, err error) *Job {
	return &Job{
		Type:    RootFinishedJobType,
		Payload: &RootFinishedPayload{Root: root, Stats: stats, Err: err},
	}
}

package result

import (
	"sort"

	"github.com/l2cup/finddoc/pkg/dispatcher"
	"github.com/l2cup/finddoc/pkg/log"
	"github.com/l2cup/finddoc/pkg/runner"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
)

type Retriever interface {
	runner.Runner

	InitializeSummary(root string)
	// GetSummary blocks until root finished.
	GetSummary(root string) (Report, error)
	// QuerySummary returns the current state of root without waiting.
	QuerySummary(root string) (Report, error)
	Summaries() []Report
	// Files is the live file count over all roots.
	Files() int
}

type retrieverImplementation struct {
	logger       *log.Logger
	dispatcher   *dispatcher.Dispatcher
	summariesMap cmap.ConcurrentMap

	done chan struct{}
}

var _ Retriever = (*retrieverImplementation)(nil)

func NewRetrieverImplementation(d *dispatcher.Dispatcher, logger *log.Logger) Retriever {
	if logger == nil {
		logger = log.NewNop()
	}

	return &retrieverImplementation{
		logger:       logger,
		dispatcher:   d,
		summariesMap: cmap.New(),
		done:         make(chan struct{}),
	}
}

// Start consumes progress events until Stop is called.
func (ri *retrieverImplementation) Start() {
	started := ri.dispatcher.Stream(dispatcher.RootStartedJobType)
	scanned := ri.dispatcher.Stream(dispatcher.DirectoryScannedJobType)
	finished := ri.dispatcher.Stream(dispatcher.RootFinishedJobType)

	for {
		select {
		case job := <-started:
			if p, ok := job.Payload.(*dispatcher.RootStartedPayload); ok {
				ri.summary(p.Root).start(p.Time)
			}
		case job := <-scanned:
			if p, ok := job.Payload.(*dispatcher.DirectoryScannedPayload); ok {
				ri.summary(p.Root).addDirectory(p.Files)
			}
		case job := <-finished:
			if p, ok := job.Payload.(*dispatcher.RootFinishedPayload); ok {
				ri.summary(p.Root).finish(p.Stats, p.Err)
				ri.logger.Debug("root finished", "root", p.Root, "files", p.Stats.Files, "err", p.Err)
			}
		case <-ri.done:
			return
		}
	}
}

func (ri *retrieverImplementation) Stop() {
	ri.done <- struct{}{}
}

// InitializeSummary replaces any previous summary of root with an empty one.
func (ri *retrieverImplementation) InitializeSummary(root string) {
	ri.summariesMap.Set(root, newSummary(root))
}

func (ri *retrieverImplementation) GetSummary(root string) (Report, error) {
	summary, err := ri.getSummary(root)
	if err != nil {
		return Report{}, errors.Wrap(err, "couldn't get summary")
	}
	return summary.Wait(), nil
}

func (ri *retrieverImplementation) QuerySummary(root string) (Report, error) {
	summary, err := ri.getSummary(root)
	if err != nil {
		return Report{}, errors.Wrap(err, "couldn't query summary")
	}
	return summary.Report(), nil
}

func (ri *retrieverImplementation) Summaries() []Report {
	reports := make([]Report, 0, ri.summariesMap.Count())
	for item := range ri.summariesMap.IterBuffered() {
		if summary, ok := item.Val.(*Summary); ok {
			reports = append(reports, summary.Report())
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Root < reports[j].Root
	})
	return reports
}

func (ri *retrieverImplementation) Files() int {
	total := 0
	for _, r := range ri.Summaries() {
		total += r.Files
	}
	return total
}

// summary returns the summary of root, creating it when an event arrives for
// a root nobody initialized.
func (ri *retrieverImplementation) summary(root string) *Summary {
	isummary := ri.summariesMap.Upsert(root, nil, func(exists bool, valueInMap interface{}, _ interface{}) interface{} {
		if exists {
			return valueInMap
		}
		return newSummary(root)
	})

	summary, ok := isummary.(*Summary)
	if !ok {
		ri.logger.Fatal("couldn't cast summary", "root", root)
	}
	return summary
}

func (ri *retrieverImplementation) getSummary(root string) (*Summary, error) {
	isummary, ok := ri.summariesMap.Get(root)
	if !ok {
		return nil, errors.Errorf("no summary for root %s", root)
	}

	summary, ok := isummary.(*Summary)
	if !ok {
		return nil, errors.New("map value couldn't be cast as summary")
	}

	return summary, nil
}

package finddoc

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/l2cup/finddoc/pkg/color"
	"github.com/l2cup/finddoc/pkg/updater"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const progressInterval = 200 * time.Millisecond

// Update refreshes the cache of every configured root. Roots that fail are
// printed and left out, the rest are still refreshed.
func (a *App) Update(ctx context.Context) (updater.Report, error) {
	roots := a.Roots()
	for _, root := range roots {
		a.ResultRetriever.InitializeSummary(root)
	}

	stop := a.showProgress(len(roots), a.Cache.LoadTotal())
	report, err := a.Updater.Update(ctx, roots)
	stop()

	for _, failed := range report.Failed() {
		a.printError(errors.Wrapf(failed.Err, "couldn't update %s", failed.Root))
	}

	return report, err
}

// showProgress redraws a status line on a terminal until the returned func is
// called.
func (a *App) showProgress(roots, expected int) (stop func()) {
	f, ok := a.Stderr.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.drawProgress(f, roots, expected)
			case <-done:
				a.drawProgress(f, roots, expected)
				fmt.Fprintln(f)
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func (a *App) drawProgress(f *os.File, roots, expected int) {
	files := a.ResultRetriever.Files()
	if files > expected {
		expected = files
	}

	finished := 0
	for _, r := range a.ResultRetriever.Summaries() {
		if r.Finished {
			finished++
		}
	}

	percent := 100.0
	if expected > 0 {
		percent = float64(files) * 100 / float64(expected)
	}

	fmt.Fprintf(f, "\r%s %s/%s files (%.0f%%), %d/%d roots done",
		color.Info("updating"),
		humanize.Comma(int64(files)),
		humanize.Comma(int64(expected)),
		percent,
		finished, roots)
}

// PrintReport writes one line per refreshed root.
func (a *App) PrintReport(report updater.Report) {
	for _, rr := range report.Roots {
		if rr.Err != nil {
			continue
		}
		line := fmt.Sprintf("%s %s files in %s",
			color.Green(rr.Root),
			humanize.Comma(int64(rr.Stats.Files)),
			rr.Stats.Elapsed.Round(time.Millisecond))
		if rr.Stats.Failed > 0 {
			line += color.Yellow(", %s unreadable directories skipped", humanize.Comma(int64(rr.Stats.Failed)))
		}
		fmt.Fprintln(a.Stdout, line)
	}

	fmt.Fprintf(a.Stdout, "%s files in %d roots, %s\n",
		humanize.Comma(int64(report.Files)),
		len(report.Roots)-len(report.Failed()),
		report.Elapsed.Round(time.Millisecond))
}

package finddoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/l2cup/finddoc/pkg/action"
	"github.com/l2cup/finddoc/pkg/crawler"
	"github.com/l2cup/finddoc/pkg/selector"
	"github.com/pkg/errors"
)

// Find streams every root into fzf and acts on the selection. Choosing the
// update key refreshes the caches and starts over.
func (a *App) Find(ctx context.Context) error {
	sel, err := selector.New(&selector.Config{
		Executable:     a.Options.Selector,
		HistoryPath:    filepath.Join(a.Cache.Dir(), historyFileName),
		Expect:         a.Actions.Keys(),
		Header:         a.Actions.Header(),
		PreviewCommand: a.previewCommand(),
		Stderr:         a.Stderr,
		Logger:         a.Logger,
	})
	if err != nil {
		return err
	}

	for {
		roots := a.Roots()
		resp, ok, err := sel.Run(ctx, a.feed(ctx, roots))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		retry, err := a.Actions.Dispatch(ctx, action.Key(resp.Key), resp.Path)
		if err != nil {
			return err
		}
		if !retry {
			return nil
		}
	}
}

// feed writes the cached records of every root to w, crawling the roots that
// have no entry yet. A bad root is reported and skipped.
func (a *App) feed(ctx context.Context, roots []string) func(w io.Writer) error {
	return func(w io.Writer) error {
		for _, root := range roots {
			hit, err := a.Cache.ReadOrBuild(ctx, root, w)
			if errors.Is(err, crawler.ErrSinkClosed) || errors.Is(err, context.Canceled) {
				return err
			}
			if err != nil {
				a.printError(errors.Wrapf(err, "skipping %s", root))
				continue
			}
			a.Logger.Debug("streamed root", "root", root, "cached", hit)
		}
		return nil
	}
}

func (a *App) previewCommand() string {
	if !a.Options.Preview {
		return ""
	}

	self := a.Options.Executable
	if self == "" {
		var err error
		self, err = os.Executable()
		if err != nil {
			a.Logger.Error("couldn't find own executable, preview disabled", "err", err)
			return ""
		}
	}

	return fmt.Sprintf("%q preview {}", self)
}

// Preview writes a text rendition of path to stdout.
func (a *App) Preview(path string) error {
	return a.Previewer.Write(a.Stdout, path)
}

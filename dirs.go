package finddoc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l2cup/finddoc/pkg/color"
	"github.com/l2cup/finddoc/pkg/config"
	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/l2cup/finddoc/pkg/paths"
)

// List prints the canonical configured roots, one per line.
func (a *App) List() {
	for _, root := range a.Roots() {
		fmt.Fprintln(a.Stdout, root)
	}
}

// Add stores path in the config in its shortest environment-variable form.
func (a *App) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fderrors.NewInternalError("couldn't resolve path", fderrors.ConfigError, err, "path", path)
	}
	short := paths.Compress(abs, os.Environ())

	err = config.Edit(a.Options.ConfigPath, func(doc config.Document) error {
		doc.SetPaths(append(doc.Paths(), short))
		return nil
	})
	if err != nil {
		return fderrors.NewInternalError("couldn't edit config", fderrors.ConfigError, err, "path", a.Options.ConfigPath)
	}

	fmt.Fprintf(a.Stdout, "Added '%s' to list\n", short)
	return nil
}

// Remove drops every configured entry that resolves to the same absolute
// path as path.
func (a *App) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fderrors.NewInternalError("couldn't resolve path", fderrors.ConfigError, err, "path", path)
	}
	short := paths.Compress(abs, os.Environ())

	removed := 0
	err = config.Edit(a.Options.ConfigPath, func(doc config.Document) error {
		var keep []string
		for _, p := range doc.Paths() {
			if resolved, err := paths.Canonicalize(p); err == nil && resolved == abs {
				removed++
				continue
			}
			keep = append(keep, p)
		}
		doc.SetPaths(keep)
		return nil
	})
	if err != nil {
		return fderrors.NewInternalError("couldn't edit config", fderrors.ConfigError, err, "path", a.Options.ConfigPath)
	}

	if removed == 0 {
		fmt.Fprintln(a.Stdout, color.Yellow("'%s' is not in the list", short))
		return nil
	}
	fmt.Fprintf(a.Stdout, "Removed '%s' from list\n", short)
	return nil
}

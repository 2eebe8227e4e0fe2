// Package action turns the key a selection ended with into an effect on the
// chosen path.
package action

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/l2cup/finddoc/pkg/log"
)

type Key string

const (
	OpenKey      Key = ""
	CopyKey      Key = "alt-c"
	RevealKey    Key = "alt-e"
	AlternateKey Key = "alt-o"
	UpdateKey    Key = "alt-u"
)

type Config struct {
	Logger *log.Logger
	// Start launches a program without waiting for it.
	Start func(name string, args ...string) error
	Copy  func(text string) error
	// Update refreshes every cache, it backs UpdateKey.
	Update func(ctx context.Context) error
	// AlternateManager is a second file manager, detected when empty.
	AlternateManager string
}

type Dispatcher struct {
	logger    *log.Logger
	start     func(name string, args ...string) error
	copy      func(text string) error
	update    func(ctx context.Context) error
	alternate string
}

func New(c *Config) *Dispatcher {
	d := &Dispatcher{
		logger:    c.Logger,
		start:     c.Start,
		copy:      c.Copy,
		update:    c.Update,
		alternate: c.AlternateManager,
	}

	if d.logger == nil {
		d.logger = log.NewNop()
	}
	if d.start == nil {
		d.start = startCommand
	}
	if d.copy == nil {
		d.copy = clipboard.WriteAll
	}
	if d.alternate == "" {
		d.alternate = findAlternateManager()
	}

	return d
}

// Keys lists the keys the selector has to report besides enter.
func (d *Dispatcher) Keys() []string {
	keys := []string{string(UpdateKey), string(CopyKey), string(RevealKey)}
	if d.alternate != "" {
		keys = append(keys, string(AlternateKey))
	}
	return keys
}

func (d *Dispatcher) Header() string {
	header := "enter=open, alt-c=copy path, alt-e=show in " + fileManagerName +
		", ctrl+p/n=history, alt-u=update, esc=abort"
	if d.alternate != "" {
		header += ", alt-o=show in " + strings.TrimSuffix(filepath.Base(d.alternate), filepath.Ext(d.alternate))
	}
	return header
}

// Dispatch runs the effect bound to key. retry is set when the caches were
// updated and the selection should start over.
func (d *Dispatcher) Dispatch(ctx context.Context, key Key, path string) (retry bool, err error) {
	d.logger.Debug("dispatching action", "key", key, "path", path)

	switch key {
	case OpenKey:
		name, args := openCommand(path)
		return false, d.run("couldn't open file", path, name, args...)
	case CopyKey:
		if err := d.copy(path); err != nil {
			return false, fderrors.NewInternalError("couldn't copy path", fderrors.ActionError, err, "path", path)
		}
		return false, nil
	case RevealKey:
		name, args := revealCommand(path)
		return false, d.run("couldn't reveal file", path, name, args...)
	case AlternateKey:
		if d.alternate == "" {
			return false, fderrors.New("no alternate file manager", fderrors.ActionError, "key", string(key))
		}
		return false, d.run("couldn't open alternate file manager", path, d.alternate, alternateArgs(path)...)
	case UpdateKey:
		if d.update == nil {
			return false, fderrors.New("update is not available", fderrors.ActionError)
		}
		if err := d.update(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, fderrors.New("unknown action key "+string(key), fderrors.ActionError, "key", string(key))
}

func (d *Dispatcher) run(message, path, name string, args ...string) error {
	if err := d.start(name, args...); err != nil {
		return fderrors.NewInternalError(message, fderrors.ActionError, err, "path", path, "command", name)
	}
	return nil
}

func startCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

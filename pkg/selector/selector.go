// Package selector runs fzf over a stream of NUL-terminated paths and reports
// which key the user left it with.
package selector

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/l2cup/finddoc/pkg/crawler"
	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/l2cup/finddoc/pkg/log"
	"github.com/pkg/errors"
)

const (
	Executable  = "fzf"
	DownloadURL = "https://github.com/junegunn/fzf/releases"
)

type Config struct {
	// Executable is looked up on PATH when empty.
	Executable  string
	HistoryPath string
	// Expect lists the keys that end the selection besides enter.
	Expect []string
	Header string
	// PreviewCommand is run by fzf for the highlighted line, {} is the path.
	PreviewCommand string
	Stderr         io.Writer
	Logger         *log.Logger
}

// Response is what fzf printed on exit. Key is empty for enter.
type Response struct {
	Key  string
	Path string
}

type Selector struct {
	executable string
	config     Config
	logger     *log.Logger
}

func New(c *Config) (*Selector, error) {
	executable := c.Executable
	if executable == "" {
		var err error
		executable, err = exec.LookPath(Executable)
		if err != nil {
			return nil, fderrors.NewInternalError(
				"fzf is needed and was not found in PATH, download it from "+DownloadURL,
				fderrors.SelectorNotFoundError, err)
		}
	}

	logger := c.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Selector{
		executable: executable,
		config:     *c,
		logger:     logger,
	}, nil
}

// Args returns the fzf command line without the executable.
func (s *Selector) Args() []string {
	args := []string{
		"--expect", strings.Join(s.config.Expect, ","),
		"--print0",
		"--read0",
	}
	if s.config.HistoryPath != "" {
		args = append(args, "--history", s.config.HistoryPath)
	}
	if s.config.Header != "" {
		args = append(args, "--header", s.config.Header)
	}
	args = append(args, "--bind", "shift-up:preview-page-up,shift-down:preview-page-down")
	if s.config.PreviewCommand != "" {
		args = append(args,
			"--preview", s.config.PreviewCommand,
			"--preview-window", "up,30%",
		)
	}
	return args
}

// Run starts fzf, lets feed write records to its input and waits for the
// user. ok is false when the user aborted or nothing matched. A feed that
// stopped because fzf closed its input is not an error.
func (s *Selector) Run(ctx context.Context, feed func(w io.Writer) error) (resp Response, ok bool, err error) {
	cmd := exec.CommandContext(ctx, s.executable, s.Args()...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = s.config.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Response{}, false, fderrors.NewInternalError("couldn't open fzf input", fderrors.SelectorError, err)
	}
	if err := cmd.Start(); err != nil {
		return Response{}, false, fderrors.NewInternalError("couldn't start fzf", fderrors.SelectorError, err, "executable", s.executable)
	}

	feedErr := feed(stdin)
	if errors.Is(feedErr, crawler.ErrSinkClosed) {
		s.logger.Debug("fzf closed its input early")
		feedErr = nil
	}
	if closeErr := stdin.Close(); closeErr != nil {
		s.logger.Debug("couldn't close fzf input", "err", closeErr)
	}

	waitErr := cmd.Wait()
	if feedErr != nil {
		return Response{}, false, feedErr
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		// 1: no match, 130: aborted with esc or ctrl-c.
		if errors.As(waitErr, &exitErr) && (exitErr.ExitCode() == 1 || exitErr.ExitCode() == 130) {
			return Response{}, false, nil
		}
		return Response{}, false, fderrors.NewInternalError("fzf failed", fderrors.SelectorError, waitErr)
	}

	return ParseResponse(stdout.Bytes())
}

// ParseResponse splits "key\x00path\x00". Empty output means no selection.
func ParseResponse(out []byte) (Response, bool, error) {
	if len(out) == 0 {
		return Response{}, false, nil
	}

	fields := bytes.Split(out, []byte{crawler.RecordSeparator})
	if len(fields) < 3 || len(fields[len(fields)-1]) != 0 {
		return Response{}, false, fderrors.New("malformed fzf response", fderrors.SelectorError, "response", string(out))
	}
	if len(fields[1]) == 0 {
		return Response{}, false, nil
	}

	return Response{Key: string(fields[0]), Path: string(fields[1])}, true, nil
}

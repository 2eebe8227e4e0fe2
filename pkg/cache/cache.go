// Package cache persists the crawl output of every root as a flat file of
// NUL-terminated paths named after the SHA-256 of the root path.
package cache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/l2cup/finddoc/pkg/crawler"
	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/l2cup/finddoc/pkg/log"
	"github.com/pkg/errors"
)

const (
	// PartSuffix marks an entry that is still being written.
	PartSuffix = ".part"

	totalFileName = "files"
	// DefaultTotal sizes update progress before the first full refresh.
	DefaultTotal = 10000
)

type Config struct {
	Dir     string
	Crawler crawler.DirCrawler
	Logger  *log.Logger
}

type Store struct {
	dir     string
	crawler crawler.DirCrawler
	logger  *log.Logger
}

func New(c *Config) (*Store, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "couldn't create cache dir")
	}

	logger := c.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Store{
		dir:     c.Dir,
		crawler: c.Crawler,
		logger:  logger,
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Key returns the lowercase hex SHA-256 digest of the canonical root path.
func Key(root string) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:])
}

// Path returns the committed entry location for root.
func (s *Store) Path(root string) string {
	return filepath.Join(s.dir, Key(root))
}

// ReadOrBuild copies the committed entry for root to out. Without one, it
// crawls root into out and a temporary entry at the same time and commits the
// entry once the crawl finished. The returned bool reports a cache hit.
func (s *Store) ReadOrBuild(ctx context.Context, root string, out io.Writer) (bool, error) {
	entry := s.Path(root)

	f, err := os.Open(entry)
	if err == nil {
		defer f.Close()
		s.logger.Debug("cache hit", "root", root, "entry", entry)
		if _, err := io.Copy(sinkWriter{out}, f); err != nil {
			if errors.Is(err, crawler.ErrSinkClosed) {
				return true, err
			}
			return true, fderrors.NewInternalError("couldn't read cache entry", fderrors.CacheError, err, "entry", entry)
		}
		return true, nil
	}
	if !os.IsNotExist(err) {
		return false, fderrors.NewInternalError("couldn't open cache entry", fderrors.CacheError, err, "entry", entry)
	}

	s.logger.Debug("cache miss", "root", root, "entry", entry)
	if err := checkRoot(root); err != nil {
		return false, err
	}

	_, err = s.build(entry, func(part io.Writer) (crawler.Stats, error) {
		return s.crawler.Crawl(ctx, root, out, part)
	})
	return false, err
}

// Refresh rebuilds the entry for root without a live consumer and replaces
// the previous entry.
func (s *Store) Refresh(ctx context.Context, root string, opts ...crawler.Option) (crawler.Stats, error) {
	if err := checkRoot(root); err != nil {
		return crawler.Stats{}, err
	}

	return s.build(s.Path(root), func(part io.Writer) (crawler.Stats, error) {
		return s.crawler.Crawl(ctx, root, part, nil, opts...)
	})
}

// build writes entry+PartSuffix through fill and renames it over entry.
// Nothing is committed when fill fails.
func (s *Store) build(entry string, fill func(part io.Writer) (crawler.Stats, error)) (crawler.Stats, error) {
	partPath := entry + PartSuffix

	part, err := os.Create(partPath)
	if err != nil {
		return crawler.Stats{}, fderrors.NewInternalError("couldn't create cache part", fderrors.CacheError, err, "path", partPath)
	}

	w := bufio.NewWriterSize(part, 64*1024)
	stats, err := fill(w)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = part.Sync()
	}
	if closeErr := part.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		if removeErr := os.Remove(partPath); removeErr != nil {
			s.logger.Error("couldn't remove cache part", "path", partPath, "err", removeErr)
		}
		if errors.Is(err, context.Canceled) {
			return stats, err
		}
		// Callers still match crawler.ErrSinkClosed through the wrapped cause.
		return stats, fderrors.NewInternalError("couldn't build cache entry", fderrors.CacheError, err, "entry", entry)
	}

	if err := os.Rename(partPath, entry); err != nil {
		return stats, fderrors.NewInternalError("couldn't commit cache entry", fderrors.CacheError, err, "entry", entry)
	}

	s.logger.Debug("cache entry committed", "entry", entry, "files", stats.Files)
	return stats, nil
}

// sinkWriter marks failures of the consumer so they can be told apart from
// failures reading the entry.
type sinkWriter struct {
	w io.Writer
}

func (s sinkWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, errors.Wrap(crawler.ErrSinkClosed, err.Error())
	}
	return n, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return fderrors.NewInternalError("root does not exist", fderrors.RootNotFoundError, err, "root", root)
	}
	if err != nil {
		return fderrors.NewInternalError("couldn't stat root", fderrors.RootNotFoundError, err, "root", root)
	}
	if !info.IsDir() {
		return fderrors.New("root is not a directory: "+root, fderrors.NotADirectoryError, "root", root)
	}
	return nil
}

// ReadEntry returns the paths stored for root.
func (s *Store) ReadEntry(root string) ([]string, error) {
	f, err := os.Open(s.Path(root))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open cache entry")
	}
	defer f.Close()

	var paths []string
	err = Records(f, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// Records calls fn for every NUL-terminated record read from r.
func Records(r io.Reader, fn func(path string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(splitRecords)

	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "couldn't read records")
}

func splitRecords(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, crawler.RecordSeparator); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// LoadTotal returns the file count saved by the last full refresh.
func (s *Store) LoadTotal() int {
	data, err := os.ReadFile(filepath.Join(s.dir, totalFileName))
	if err != nil {
		return DefaultTotal
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return DefaultTotal
	}
	return n
}

func (s *Store) SaveTotal(n int) error {
	path := filepath.Join(s.dir, totalFileName)
	part := path + PartSuffix
	if err := os.WriteFile(part, []byte(strconv.Itoa(n)), 0o644); err != nil {
		return errors.Wrap(err, "couldn't write total")
	}
	return errors.Wrap(os.Rename(part, path), "couldn't commit total")
}

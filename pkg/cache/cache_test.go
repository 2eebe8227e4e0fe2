package cache

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/l2cup/finddoc/pkg/crawler"
	"github.com/l2cup/finddoc/pkg/crawler/dir"
	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCrawler records how many crawls actually ran.
type countingCrawler struct {
	crawler.DirCrawler
	crawls int32
}

func (c *countingCrawler) Crawl(ctx context.Context, root string, sink io.Writer, altSink io.Writer, opts ...crawler.Option) (crawler.Stats, error) {
	atomic.AddInt32(&c.crawls, 1)
	return c.DirCrawler.Crawl(ctx, root, sink, altSink, opts...)
}

func newTestStore(t *testing.T) (*Store, *countingCrawler) {
	t.Helper()
	cc := &countingCrawler{DirCrawler: dir.NewCrawlerImplementation(&dir.Config{Workers: 4})}
	store, err := New(&Config{Dir: filepath.Join(t.TempDir(), "cache"), Crawler: cc})
	require.NoError(t, err)
	return store, cc
}

func makeRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deeper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.bkp"), []byte("c"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deeper", "ñandú.pdf"), []byte("d"), 0o644))
	return root
}

func sorted(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}

func TestKey(t *testing.T) {
	assert.Len(t, Key("/x"), 64)
	assert.Equal(t, strings.ToLower(Key("/x")), Key("/x"))
	assert.NotEqual(t, Key("/x"), Key("/y"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Key(""))
}

func TestReadOrBuildMissThenHit(t *testing.T) {
	store, cc := newTestStore(t)
	root := makeRoot(t)

	var first bytes.Buffer
	hit, err := store.ReadOrBuild(context.Background(), root, &first)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 1, cc.crawls)

	entry, err := os.ReadFile(store.Path(root))
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), entry)
	assert.NoFileExists(t, store.Path(root)+PartSuffix)

	var second bytes.Buffer
	hit, err = store.ReadOrBuild(context.Background(), root, &second)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 1, cc.crawls, "cache hit must not crawl")
	assert.Equal(t, entry, second.Bytes())

	again, err := os.ReadFile(store.Path(root))
	require.NoError(t, err)
	assert.Equal(t, entry, again)
}

func TestEntryRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	root := makeRoot(t)

	_, err := store.ReadOrBuild(context.Background(), root, io.Discard)
	require.NoError(t, err)

	paths, err := store.ReadEntry(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.txt"),
		filepath.Join(root, "sub", "deeper", "ñandú.pdf"),
	}, sorted(paths))

	raw, err := os.ReadFile(store.Path(root))
	require.NoError(t, err)
	assert.Equal(t, byte(0), raw[len(raw)-1])
	assert.Equal(t, 3, bytes.Count(raw, []byte{0}))
}

func TestRefreshPicksUpNewFiles(t *testing.T) {
	store, cc := newTestStore(t)
	root := makeRoot(t)

	_, err := store.ReadOrBuild(context.Background(), root, io.Discard)
	require.NoError(t, err)
	before, err := store.ReadEntry(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "new.txt"), nil, 0o644))

	stats, err := store.Refresh(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, len(before)+1, stats.Files)
	assert.EqualValues(t, 2, cc.crawls)

	after, err := store.ReadEntry(root)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
	assert.Contains(t, after, filepath.Join(root, "sub", "new.txt"))
	assert.NoFileExists(t, store.Path(root)+PartSuffix)
}

func TestRefreshWithoutChangesIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	root := makeRoot(t)

	_, err := store.Refresh(context.Background(), root)
	require.NoError(t, err)
	first, err := store.ReadEntry(root)
	require.NoError(t, err)

	_, err = store.Refresh(context.Background(), root)
	require.NoError(t, err)
	second, err := store.ReadEntry(root)
	require.NoError(t, err)

	assert.Equal(t, sorted(first), sorted(second))
}

func TestReadOrBuildRootErrors(t *testing.T) {
	store, cc := newTestStore(t)

	_, err := store.ReadOrBuild(context.Background(), filepath.Join(t.TempDir(), "missing"), io.Discard)
	require.Error(t, err)
	assert.True(t, fderrors.IsType(err, fderrors.RootNotFoundError))

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = store.ReadOrBuild(context.Background(), file, io.Discard)
	require.Error(t, err)
	assert.True(t, fderrors.IsType(err, fderrors.NotADirectoryError))

	assert.Zero(t, cc.crawls)
}

type closedPipe struct{}

func (closedPipe) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestReadOrBuildClosedSinkCommitsNothing(t *testing.T) {
	store, _ := newTestStore(t)
	root := makeRoot(t)

	_, err := store.ReadOrBuild(context.Background(), root, closedPipe{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, crawler.ErrSinkClosed))

	assert.NoFileExists(t, store.Path(root))
	assert.NoFileExists(t, store.Path(root)+PartSuffix)
}

func TestReadOrBuildHitClosedSink(t *testing.T) {
	store, _ := newTestStore(t)
	root := makeRoot(t)
	_, err := store.ReadOrBuild(context.Background(), root, io.Discard)
	require.NoError(t, err)

	hit, err := store.ReadOrBuild(context.Background(), root, closedPipe{})
	assert.True(t, hit)
	assert.True(t, errors.Is(err, crawler.ErrSinkClosed))
}

func TestReadOrBuildHitUnreadableEntry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("opening a directory fails on windows")
	}
	store, _ := newTestStore(t)
	root := makeRoot(t)
	// A directory opens like a file but every read fails.
	require.NoError(t, os.Mkdir(store.Path(root), 0o755))

	hit, err := store.ReadOrBuild(context.Background(), root, io.Discard)
	require.Error(t, err)
	assert.True(t, hit)
	assert.False(t, errors.Is(err, crawler.ErrSinkClosed))
	assert.True(t, fderrors.IsType(err, fderrors.CacheError))
}

func TestOrphanedPartIsNotServed(t *testing.T) {
	store, cc := newTestStore(t)
	root := makeRoot(t)

	require.NoError(t, os.WriteFile(store.Path(root)+PartSuffix, []byte("/stale/half\x00/written"), 0o644))

	var out bytes.Buffer
	hit, err := store.ReadOrBuild(context.Background(), root, &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 1, cc.crawls)
	assert.NotContains(t, out.String(), "/stale/half")
}

func TestCrawlingCacheDirSkipsParts(t *testing.T) {
	store, _ := newTestStore(t)
	root := makeRoot(t)
	require.NoError(t, os.WriteFile(store.Path(root)+PartSuffix, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "keep.txt"), []byte("x"), 0o644))

	var out bytes.Buffer
	_, err := store.ReadOrBuild(context.Background(), store.Dir(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "keep.txt")
	assert.NotContains(t, out.String(), PartSuffix)
}

func TestRecords(t *testing.T) {
	var got []string
	err := Records(strings.NewReader("/a\x00/b c\x00/ü\x00"), func(p string) error {
		got = append(got, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b c", "/ü"}, got)

	got = nil
	require.NoError(t, Records(strings.NewReader(""), func(p string) error {
		got = append(got, p)
		return nil
	}))
	assert.Empty(t, got)
}

func TestTotal(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Equal(t, DefaultTotal, store.LoadTotal())

	require.NoError(t, store.SaveTotal(123456))
	assert.Equal(t, 123456, store.LoadTotal())

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), totalFileName), []byte("garbage"), 0o644))
	assert.Equal(t, DefaultTotal, store.LoadTotal())
}

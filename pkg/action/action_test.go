package action

import (
	"context"
	"errors"
	"testing"

	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	started [][]string
	copied  []string
	updates int
}

func newTestDispatcher(r *recorder, alternate string) *Dispatcher {
	return New(&Config{
		Start: func(name string, args ...string) error {
			r.started = append(r.started, append([]string{name}, args...))
			return nil
		},
		Copy: func(text string) error {
			r.copied = append(r.copied, text)
			return nil
		},
		Update: func(ctx context.Context) error {
			r.updates++
			return nil
		},
		AlternateManager: alternate,
	})
}

func TestDispatchOpen(t *testing.T) {
	r := &recorder{}
	retry, err := newTestDispatcher(r, "").Dispatch(context.Background(), OpenKey, "/docs/a.pdf")
	require.NoError(t, err)
	assert.False(t, retry)

	require.Len(t, r.started, 1)
	name, args := openCommand("/docs/a.pdf")
	assert.Equal(t, append([]string{name}, args...), r.started[0])
}

func TestDispatchCopy(t *testing.T) {
	r := &recorder{}
	_, err := newTestDispatcher(r, "").Dispatch(context.Background(), CopyKey, "/docs/ñandú.doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/ñandú.doc"}, r.copied)
	assert.Empty(t, r.started)
}

func TestDispatchReveal(t *testing.T) {
	r := &recorder{}
	_, err := newTestDispatcher(r, "").Dispatch(context.Background(), RevealKey, "/docs/a.pdf")
	require.NoError(t, err)

	name, args := revealCommand("/docs/a.pdf")
	assert.Equal(t, [][]string{append([]string{name}, args...)}, r.started)
}

func TestDispatchAlternate(t *testing.T) {
	r := &recorder{}
	d := newTestDispatcher(r, "/opt/tc/totalcmd64.exe")
	assert.Equal(t, []string{"alt-u", "alt-c", "alt-e", "alt-o"}, d.Keys())
	assert.Contains(t, d.Header(), "alt-o=show in totalcmd64")

	_, err := d.Dispatch(context.Background(), AlternateKey, "/docs/a.pdf")
	require.NoError(t, err)
	require.Len(t, r.started, 1)
	assert.Equal(t, "/opt/tc/totalcmd64.exe", r.started[0][0])
	assert.Equal(t, "/docs/a.pdf", r.started[0][len(r.started[0])-1])
}

func TestDispatchUpdateRetries(t *testing.T) {
	r := &recorder{}
	retry, err := newTestDispatcher(r, "").Dispatch(context.Background(), UpdateKey, "/docs/a.pdf")
	require.NoError(t, err)
	assert.True(t, retry)
	assert.Equal(t, 1, r.updates)
}

func TestDispatchUpdateFailure(t *testing.T) {
	boom := errors.New("boom")
	d := New(&Config{
		Update: func(ctx context.Context) error { return boom },
	})
	retry, err := d.Dispatch(context.Background(), UpdateKey, "")
	assert.False(t, retry)
	assert.Equal(t, boom, err)
}

func TestDispatchStartFailure(t *testing.T) {
	d := New(&Config{
		Start: func(string, ...string) error { return errors.New("no such program") },
	})
	_, err := d.Dispatch(context.Background(), OpenKey, "/docs/a.pdf")
	require.Error(t, err)
	assert.True(t, fderrors.IsType(err, fderrors.ActionError))
}

func TestDispatchUnknownKey(t *testing.T) {
	r := &recorder{}
	_, err := newTestDispatcher(r, "").Dispatch(context.Background(), Key("ctrl-x"), "/docs/a.pdf")
	assert.True(t, fderrors.IsType(err, fderrors.ActionError))
	assert.Empty(t, r.started)
}

func TestKeysWithoutAlternate(t *testing.T) {
	d := &Dispatcher{}
	assert.Equal(t, []string{"alt-u", "alt-c", "alt-e"}, d.Keys())
	assert.NotContains(t, d.Header(), "alt-o")
}

package runner

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type loop struct {
	name    string
	started chan struct{}
	done    chan struct{}
	stopped *[]string
	mutex   *sync.Mutex
}

func newLoop(name string, stopped *[]string, mutex *sync.Mutex) *loop {
	return &loop{
		name:    name,
		started: make(chan struct{}),
		done:    make(chan struct{}),
		stopped: stopped,
		mutex:   mutex,
	}
}

func (l *loop) Start() {
	close(l.started)
	<-l.done
}

func (l *loop) Stop() {
	l.done <- struct{}{}
	l.mutex.Lock()
	*l.stopped = append(*l.stopped, l.name)
	l.mutex.Unlock()
}

func waitStarted(t *testing.T, l *loop) {
	t.Helper()
	select {
	case <-l.started:
	case <-time.After(time.Second):
		t.Fatalf("%s never started", l.name)
	}
}

func TestGroupStartsAndStopsInReverse(t *testing.T) {
	var stopped []string
	var mutex sync.Mutex
	first := newLoop("first", &stopped, &mutex)
	second := newLoop("second", &stopped, &mutex)

	g := &Group{}
	g.Register(first)
	g.Register(second)
	g.Start()
	waitStarted(t, first)
	waitStarted(t, second)

	g.Stop()
	assert.Equal(t, []string{"second", "first"}, stopped)

	// Stopping twice is a no-op.
	g.Stop()
	assert.Len(t, stopped, 2)
}

func TestGroupStartsLateRegistrations(t *testing.T) {
	var stopped []string
	var mutex sync.Mutex
	late := newLoop("late", &stopped, &mutex)

	g := &Group{}
	g.Start()
	g.Register(late)
	waitStarted(t, late)

	g.Stop()
	assert.Equal(t, []string{"late"}, stopped)
}

// Package runner describes background loops started and stopped with the app.
package runner

import "sync"

// Runner is a loop that blocks in Start until Stop is called.
type Runner interface {
	Start()
	Stop()
}

type Registrator interface {
	Register(r Runner)
}

// Group starts registered runners in their own goroutines and stops them in
// reverse registration order.
type Group struct {
	mutex   sync.Mutex
	runners []Runner
	running bool
}

var _ Runner = (*Group)(nil)
var _ Registrator = (*Group)(nil)

// Register adds r. A runner registered while the group is running is
// started immediately.
func (g *Group) Register(r Runner) {
	defer g.mutex.Unlock()
	g.mutex.Lock()

	g.runners = append(g.runners, r)
	if g.running {
		go r.Start()
	}
}

func (g *Group) Start() {
	defer g.mutex.Unlock()
	g.mutex.Lock()

	if g.running {
		return
	}
	g.running = true
	for _, r := range g.runners {
		go r.Start()
	}
}

func (g *Group) Stop() {
	defer g.mutex.Unlock()
	g.mutex.Lock()

	if !g.running {
		return
	}
	g.running = false
	for i := len(g.runners) - 1; i >= 0; i-- {
		g.runners[i].Stop()
	}
}

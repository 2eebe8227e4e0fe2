// Package dispatcher is an in-process event bus with one buffered channel per
// job type.
package dispatcher

import (
	"context"

	"github.com/l2cup/finddoc/pkg/log"
	cmap "github.com/orcaman/concurrent-map"
)

const DefaultBufferSize = 256

type Config struct {
	Logger     *log.Logger
	BufferSize int
}

type Dispatcher struct {
	logger      *log.Logger
	dispatchMap cmap.ConcurrentMap
	bufferSize  int
}

func New(c *Config) *Dispatcher {
	d := &Dispatcher{
		logger:      c.Logger,
		bufferSize:  c.BufferSize,
		dispatchMap: cmap.New(),
	}

	if d.logger == nil {
		d.logger = log.NewNop()
	}
	if d.bufferSize <= 0 {
		d.bufferSize = DefaultBufferSize
	}

	return d
}

// Push blocks while the channel of the job's type is full.
func (d *Dispatcher) Push(job *Job) {
	d.logger.Debug("pushed job", "type", job.Type)
	d.channel(job.Type) <- job
}

// PushContext is Push that gives up once ctx is done.
func (d *Dispatcher) PushContext(ctx context.Context, job *Job) error {
	select {
	case d.channel(job.Type) <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Stream(jobType JobType) <-chan *Job {
	return d.channel(jobType)
}

func (d *Dispatcher) Pop(jobType JobType) *Job {
	return <-d.channel(jobType)
}

// channel returns the channel registered for jobType, registering it on
// first use. Concurrent first uses agree on a single channel.
func (d *Dispatcher) channel(jobType JobType) chan *Job {
	ich := d.dispatchMap.Upsert(string(jobType), nil, func(exists bool, valueInMap interface{}, _ interface{}) interface{} {
		if exists {
			return valueInMap
		}
		d.logger.Debug("[dispatcher] registered new job type", "type", jobType)
		return make(chan *Job, d.bufferSize)
	})

	ch, ok := ich.(chan *Job)
	if !ok {
		d.logger.Fatal("[fatal] couldn't cast channel to job channel", "type", jobType)
	}

	return ch
}

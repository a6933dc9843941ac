package transport

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction processes one task; grounded on fenrir's internal/worker.go.
type WorkerFunction func(t *tomb.Tomb, task any) error

// WorkerPool is a fixed-size pool of tomb-supervised goroutines draining a
// shared task channel. Adapted from fenrir's internal/worker.go and
// internal/net/server.go's pool usage.
type WorkerPool struct {
	n     int
	tasks chan any
	work  WorkerFunction
}

// NewWorkerPool creates a pool of size workers sharing one task channel.
func NewWorkerPool(size int) *WorkerPool {
	return &WorkerPool{
		tasks: make(chan any, taskChanSize),
		n:     size,
	}
}

// AddTask enqueues a task for a free worker to pick up.
func (p *WorkerPool) AddTask(task any) {
	p.tasks <- task
}

// Setup spins up the pool's workers under t. Each worker logs task errors
// and keeps running until t starts dying; workers are not restarted.
func (p *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	p.work = work
	log.Info().Int("workers", p.n).Msg("starting worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(p.runWorker(t))
	}
}

func (p *WorkerPool) runWorker(t *tomb.Tomb) func() error {
	return func() error {
		for {
			select {
			case <-t.Dying():
				return nil
			case task := <-p.tasks:
				if err := p.work(t, task); err != nil {
					log.Error().Err(err).Msg("worker task failed")
				}
			}
		}
	}
}

package transport

import (
	"net"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// connHandler services one accepted connection to completion (until it
// closes or the tomb is dying).
type connHandler func(t *tomb.Tomb, conn net.Conn) error

// WorkerPool bounds how many connections are serviced concurrently,
// generalized from the teacher's internal/worker.go. Unlike the
// teacher's pool — which handed a connection back onto the task
// channel after every single message, suiting only short
// request/response exchanges — each worker here owns a connection for
// its entire lifetime, since subscribe streams keep a connection open
// indefinitely.
type WorkerPool struct {
	n     int
	tasks chan net.Conn
}

// NewWorkerPool constructs a pool with size concurrent worker slots.
func NewWorkerPool(size int) WorkerPool {
	return WorkerPool{tasks: make(chan net.Conn, size), n: size}
}

// AddTask hands a freshly-accepted connection to the pool.
func (p *WorkerPool) AddTask(conn net.Conn) {
	p.tasks <- conn
}

// Setup starts size long-lived workers, each pulling connections off
// the task channel and running work on them until t is dying.
func (p *WorkerPool) Setup(t *tomb.Tomb, work connHandler) {
	log.Info().Int("workers", p.n).Msg("starting connection worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error {
			return p.worker(t, work)
		})
	}
}

func (p *WorkerPool) worker(t *tomb.Tomb, work connHandler) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case conn := <-p.tasks:
			if err := work(t, conn); err != nil {
				log.Error().Err(err).Msg("connection handler exited with error")
			}
		}
	}
}

package utils

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

type WorkerFunction = func(t *tomb.Tomb, task any) error

// WorkerPool runs a fixed set of workers draining a shared task channel.
// Worker goroutines live under the tomb handed to Setup.
type WorkerPool struct {
	n     int            // number of workers
	tasks chan any       // pending tasks
	work  WorkerFunction // do work method
}

func NewWorkerPool(size int) WorkerPool {
	return WorkerPool{
		n:     size,
		tasks: make(chan any, taskChanSize),
	}
}

// Setup starts the pool's workers under t and returns.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	pool.work = work
	for id := 0; id < pool.n; id++ {
		t.Go(func() error {
			return pool.worker(t, id)
		})
	}
}

// AddTask hands a task to the pool. Blocks if the backlog is full.
func (pool *WorkerPool) AddTask(task any) {
	pool.tasks <- task
}

// Workers wait on tasks in the task channel and action them.
func (pool *WorkerPool) worker(t *tomb.Tomb, id int) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := pool.work(t, task); err != nil {
				log.Error().Err(err).Int("id", id).Msg("worker exiting")
				return err
			}
		}
	}
}

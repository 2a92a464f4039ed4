package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type Job struct {
	Fn   func() error
	Errc chan error
}

// RequestQueueManager runs HTTP handler bodies on a fixed pool of workers so
// a burst of requests queues up instead of fanning out unbounded goroutines.
type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	wg         sync.WaitGroup
}

func NewRequestQueueManager(queueSize int, maxWorkers int) *RequestQueueManager {
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			slog.Debug("queue worker started", "worker", workerID)
			for job := range rqm.JobQueue {
				err := run(job.Fn)
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			slog.Debug("queue worker stopped", "worker", workerID)
		}(i)
	}
}

// run executes fn and turns a panic into an error so one bad handler cannot
// take a worker down.
func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("queue job panicked", "panic", r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn()
}

func (rqm *RequestQueueManager) EnqueueJob(job Job) {
	rqm.JobQueue <- job
}

// Enqueue is EnqueueJob bounded by ctx. It fails when ctx ends before a slot
// frees up in the queue.
func (rqm *RequestQueueManager) Enqueue(ctx context.Context, job Job) error {
	select {
	case rqm.JobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rqm *RequestQueueManager) Depth() int {
	return len(rqm.JobQueue)
}

func (rqm *RequestQueueManager) Shutdown() {
	close(rqm.JobQueue)
	rqm.wg.Wait()
}

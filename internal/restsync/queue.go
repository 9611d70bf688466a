// Package restsync serializes all upstream REST traffic through one
// single-consumer FIFO. The exchange rate-limits aggressively, so every
// REST call in the process is deferred onto this queue and executed in
// enqueue order, one at a time.
package restsync

import (
	"context"
	"errors"
	"sync"

	"bitsouk/internal/metrics"
	"bitsouk/logger"
)

// DefaultQueueSize bounds the default queue; Push blocks once it is full.
const DefaultQueueSize = 256

// ErrQueueFull is returned by PushNowait when no slot is free.
var ErrQueueFull = errors.New("restsync: queue full")

// ErrClosed reports a push onto a queue whose consumer has exited.
var ErrClosed = errors.New("restsync: queue closed")

type job struct {
	name string
	fn   func() error
	done chan error
}

// Queue is a bounded FIFO of deferred REST calls with a pause gate.
// Stopping parks the consumer without draining; queued jobs stay put until
// Start wakes it again.
type Queue struct {
	log *logger.Entry

	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []job
	max     int
	running bool
	closed  bool
}

func New(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &Queue{
		log:     logger.GetLogger().WithComponent("restsync"),
		max:     size,
		running: true,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

var (
	defaultOnce  sync.Once
	defaultQueue *Queue
)

// Default returns the process-wide queue shared by all connections.
func Default() *Queue {
	defaultOnce.Do(func() {
		defaultQueue = New(DefaultQueueSize)
	})
	return defaultQueue
}

// Push enqueues a deferred call and returns its completion channel. The
// channel receives the call's error (nil on success) and is then closed.
// Push blocks while the queue is full.
func (q *Queue) Push(name string, fn func() error) <-chan error {
	done := make(chan error, 1)
	q.mu.Lock()
	for len(q.jobs) >= q.max && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		q.mu.Unlock()
		done <- ErrClosed
		close(done)
		return done
	}
	q.jobs = append(q.jobs, job{name: name, fn: fn, done: done})
	q.mu.Unlock()
	q.cond.Broadcast()
	return done
}

// PushNowait enqueues without blocking, failing with ErrQueueFull when no
// slot is free. The call's own error is logged by the consumer.
func (q *Queue) PushNowait(name string, fn func() error) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if len(q.jobs) >= q.max {
		q.mu.Unlock()
		metrics.IncRestQueueDropped(name)
		return ErrQueueFull
	}
	q.jobs = append(q.jobs, job{name: name, fn: fn})
	q.mu.Unlock()
	q.cond.Broadcast()
	return nil
}

// Run consumes jobs until ctx is canceled. Each job runs to completion
// before the next is dequeued; a failing job is logged and never stops the
// loop. Callers run this on its own goroutine.
func (q *Queue) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.cond.Broadcast()
	}()

	q.log.Info("rest queue consumer started")
	for {
		q.mu.Lock()
		for !q.closed && (!q.running || len(q.jobs) == 0) {
			q.cond.Wait()
		}
		if q.closed {
			pending := len(q.jobs)
			q.mu.Unlock()
			q.failPending()
			q.log.WithFields(logger.Fields{"pending": pending}).Info("rest queue consumer stopped")
			return
		}
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()
		q.cond.Broadcast()

		err := j.fn()
		metrics.IncRestCall(j.name, err == nil)
		if err != nil {
			q.log.WithError(err).WithFields(logger.Fields{"call": j.name}).Error("rest call failed")
		}
		if j.done != nil {
			j.done <- err
			close(j.done)
		}
	}
}

// failPending resolves the completion channels of jobs stranded by a
// shutdown so no waiter blocks forever.
func (q *Queue) failPending() {
	q.mu.Lock()
	stranded := q.jobs
	q.jobs = nil
	q.mu.Unlock()
	for _, j := range stranded {
		if j.done != nil {
			j.done <- ErrClosed
			close(j.done)
		}
	}
}

// Start resumes the consumer after a Stop.
func (q *Queue) Start() {
	q.mu.Lock()
	q.running = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Stop parks the consumer before its next dequeue. Jobs already queued
// remain queued; a job already running finishes.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.running = false
	q.mu.Unlock()
	q.cond.Broadcast()
}

// IsRunning reports whether the gate is open.
func (q *Queue) IsRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

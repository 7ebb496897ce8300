package tasks

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Queue is the in-process background task runner behind the generation
// pipeline and docs advisory. Tasks run detached from the submitting HTTP
// request; failures and panics are logged here and never reach a caller.
type Queue struct {
	jobs    chan job
	wg      sync.WaitGroup
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
	cancel  context.CancelFunc
}

type job struct {
	id   string
	name string
	fn   func(ctx context.Context) error
}

var ErrQueueFull = errors.New("task queue full")

// NewQueue starts workers goroutines draining a queue of the given capacity.
func NewQueue(workers, capacity int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		jobs:    make(chan job, capacity),
		closed:  make(chan struct{}),
		baseCtx: ctx,
		cancel:  cancel,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.run(j)
	}
}

func (q *Queue) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[tasks] %s id=%s panic: %v", j.name, j.id, r)
		}
	}()

	log.Printf("[tasks] %s id=%s start", j.name, j.id)
	if err := j.fn(q.baseCtx); err != nil {
		log.Printf("[tasks] %s id=%s error: %v", j.name, j.id, err)
		return
	}
	log.Printf("[tasks] %s id=%s done", j.name, j.id)
}

// Enqueue schedules fn for execution. It never blocks: when the queue is at
// capacity it refuses, which is the backpressure signal for submit paths.
func (q *Queue) Enqueue(name string, fn func(ctx context.Context) error) error {
	select {
	case <-q.closed:
		return errors.New("task queue stopped")
	default:
	}

	j := job{id: uuid.NewString(), name: name, fn: fn}
	select {
	case q.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new work, cancels the base context handed to running tasks
// and waits for the workers to drain.
func (q *Queue) Stop() {
	q.once.Do(func() {
		close(q.closed)
		close(q.jobs)
		q.wg.Wait()
		q.cancel()
	})
}

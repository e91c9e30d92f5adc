package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when a task cannot be enqueued within the submit
// timeout. Callers must not assume a task submitted after this error runs.
var ErrQueueFull = errors.New("worker pool queue is full")

type Task func()

// WorkerPool bounds how many submissions are analyzed concurrently. Tasks
// that panic are recovered and logged so one bad submission cannot take the
// whole run down.
type WorkerPool struct {
	tasks      chan Task
	wg         sync.WaitGroup
	busy       int
	maxWorkers int
	logger     zerolog.Logger
	mu         sync.RWMutex
}

func NewWorkerPool(maxWorkers int, logger zerolog.Logger) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		tasks:      make(chan Task, maxWorkers*10),
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) error {
	for i := 0; i < wp.maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	wp.logger.Info().Int("workers", wp.maxWorkers).Msg("Worker pool started")
	return nil
}

// Stop drains the queue and waits for in-flight tasks to finish.
func (wp *WorkerPool) Stop() error {
	close(wp.tasks)
	wp.wg.Wait()

	wp.logger.Info().Msg("Worker pool stopped")
	return nil
}

// Submit enqueues a task, blocking up to a second when the queue is full.
// A task that cannot be enqueued is reported back so the caller can unwind
// any bookkeeping paired with it.
func (wp *WorkerPool) Submit(task Task) error {
	select {
	case wp.tasks <- task:
		return nil
	default:
		wp.logger.Warn().Msg("Worker pool queue is full")
		select {
		case wp.tasks <- task:
			return nil
		case <-time.After(1 * time.Second):
			wp.logger.Error().Msg("Failed to submit task to worker pool (timeout)")
			return ErrQueueFull
		}
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.tasks {
		wp.mu.Lock()
		wp.busy++
		wp.mu.Unlock()

		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.logger.Error().
						Int("worker_id", id).
						Interface("panic", r).
						Msg("Worker recovered from panic")
				}
				wp.mu.Lock()
				wp.busy--
				wp.mu.Unlock()
			}()

			task()
		}()
	}
}

func (wp *WorkerPool) ActiveWorkers() int {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.busy
}

func (wp *WorkerPool) QueueLength() int {
	return len(wp.tasks)
}

package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/events"
	"github.com/Arkpointt/gangware-sub001/internal/logging"
)

// Worker drains a queue on a single goroutine so tasks can never overlap.
// Each task's outcome is reported to the optional status sink and event
// bus; a panicking task is recovered and reported like a failure.
type Worker struct {
	queue   *Queue
	status  StatusSink
	flasher IndicatorFlasher
	bus     events.EventBus
	log     *logging.Logger

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewWorker creates a worker over the given queue. Status, flasher, and bus
// may be nil.
func NewWorker(queue *Queue, status StatusSink, flasher IndicatorFlasher, bus events.EventBus, log *logging.Logger) *Worker {
	if log == nil {
		log = logging.NewLogger("tasks")
	}
	return &Worker{
		queue:   queue,
		status:  status,
		flasher: flasher,
		bus:     bus,
		log:     log,
	}
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
}

// Stop closes the queue and waits for in-flight and queued tasks to finish.
func (w *Worker) Stop() {
	w.queue.Close()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		task := w.queue.Dequeue()
		if task == nil {
			w.log.Debug("worker received shutdown sentinel")
			return
		}
		w.execute(task)
	}
}

// execute runs one task with panic recovery and outcome reporting.
func (w *Worker) execute(task *Task) {
	if task.Label != "" {
		if w.status != nil {
			w.status.SetStatus(task.Label)
		}
		if w.flasher != nil {
			w.flasher.FlashIndicator(task.Label)
		}
	}

	start := time.Now()
	err := w.runRecovered(task)
	elapsed := time.Since(start)

	if err != nil {
		w.log.ErrorWithContext("task failed", err, map[string]interface{}{
			"label": task.Label, "elapsed": elapsed.String(),
		})
		if w.status != nil {
			w.status.SetStatus(fmt.Sprintf("%s: %v", task.Label, err))
		}
		if w.bus != nil {
			w.bus.PublishAsync(events.NewTaskFailedEvent(task.Label, err))
		}
		return
	}

	w.log.DebugWithContext("task completed", map[string]interface{}{
		"label": task.Label, "elapsed": elapsed.String(),
	})
	if w.bus != nil {
		w.bus.PublishAsync(events.NewTaskCompletedEvent(task.Label, elapsed))
	}
}

func (w *Worker) runRecovered(task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if task.Run == nil {
		return nil
	}
	return task.Run()
}

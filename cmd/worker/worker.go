package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	appkafka "example.com/socialfeed/internal/broker"
	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/models"
	"example.com/socialfeed/internal/social"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var logg = logger.New()

const defaultMaxRetries = 5

// Worker publishes activity events to Kafka from a bounded in-process queue.
// Enqueue never blocks; events that do not fit are dropped and logged.
type Worker struct {
	writer       appkafka.KafkaWriter
	workerCount  int
	jobQueueSize int
	maxRetries   int

	mu     sync.RWMutex
	jobs   chan models.ActivityEvent
	closed bool
}

// New creates a new concurrent Worker using pre-initialized dependencies.
func New(writer appkafka.KafkaWriter, workerCount, jobQueueSize int) *Worker {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if jobQueueSize <= 0 {
		jobQueueSize = workerCount * 10
	}
	return &Worker{
		writer:       writer,
		workerCount:  workerCount,
		jobQueueSize: jobQueueSize,
		maxRetries:   defaultMaxRetries,
		jobs:         make(chan models.ActivityEvent, jobQueueSize),
	}
}

// Observe converts a registry event and enqueues it. It matches social.Observer.
func (w *Worker) Observe(ev social.Event) {
	w.Enqueue(models.ActivityEvent{
		ID:         uuid.NewString(),
		Type:       string(ev.Kind),
		ActorID:    ev.ActorID,
		TargetID:   ev.TargetID,
		Body:       ev.Text,
		Entry:      ev.Entry,
		Recipients: ev.Recipients,
		Created:    ev.At,
	})
}

// Enqueue queues ev for publishing and reports whether it was accepted.
func (w *Worker) Enqueue(ev models.ActivityEvent) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return false
	}
	select {
	case w.jobs <- ev:
		return true
	default:
		logg.Info("worker", "Queue full, dropping activity event "+ev.Type)
		return false
	}
}

// Run starts the publishing goroutines and blocks until ctx is canceled.
// Events already queued are still attempted once before Run returns.
func (w *Worker) Run(ctx context.Context) {
	logg.Info("worker", "Starting "+fmt.Sprint(w.workerCount)+" workers with queue size "+fmt.Sprint(w.jobQueueSize))

	var wg sync.WaitGroup
	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.processLoop(ctx)
		}()
	}

	<-ctx.Done()

	w.mu.Lock()
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()

	wg.Wait()
	logg.Info("worker", "All workers stopped gracefully")
}

// processLoop publishes events until the queue is closed and drained.
func (w *Worker) processLoop(ctx context.Context) {
	for ev := range w.jobs {
		if err := w.publish(ctx, ev); err != nil {
			logg.Error("worker", "Dropping activity event "+ev.Type+" after retries", err)
		}
	}
}

// publish writes one event, retrying with capped exponential backoff.
func (w *Worker) publish(ctx context.Context, ev models.ActivityEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Type),
		Value: data,
	}

	for retry := 0; ; retry++ {
		err = w.writer.WriteMessages(msg)
		if err == nil {
			logg.Debug("worker", "Activity event published "+ev.Type)
			return nil
		}
		if retry >= w.maxRetries {
			return fmt.Errorf("write activity event: %w", err)
		}

		backoff := time.Duration(math.Min(1000, math.Pow(2, float64(retry)))) * time.Millisecond
		logg.Error("worker", "Kafka write error, backing off", err)
		if !waitWithContext(ctx, backoff) {
			return fmt.Errorf("write activity event: %w", err)
		}
	}
}

// waitWithContext waits for duration or context cancellation.
func waitWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close shuts down the Kafka writer.
func (w *Worker) Close() error {
	logg.Info("worker", "Closing Kafka writer")
	if err := w.writer.Close(); err != nil {
		logg.Error("worker", "Error closing Kafka writer", err)
		return err
	}
	return nil
}

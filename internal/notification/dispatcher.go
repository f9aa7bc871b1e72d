package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/pkg/logger"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher closed")
)

const sendTimeout = 10 * time.Second

type Worker struct {
	ID         int
	WorkerPool chan chan Message
	JobChannel chan Message
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Message, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Message),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				return
			}

			select {
			case msg := <-w.JobChannel:
				w.Logger.Debug("worker sending message", "worker_id", w.ID, "message_id", msg.ID, "kind", msg.Kind)
				processFunc(msg)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

// Dispatcher queues messages without blocking the caller and hands them to a fixed pool of workers.
// A full queue rejects the message; callers log it and carry on.
type Dispatcher struct {
	sender  Sender
	metrics *metrics.Metrics
	logger  *slog.Logger

	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	closed     atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(cfg DispatcherConfig, sender Sender, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	d := &Dispatcher{
		sender:     sender,
		metrics:    m,
		logger:     logger,
		jobQueue:   make(chan Message, queueSize),
		workerPool: make(chan chan Message, maxWorkers),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			NewWorker(i, d.workerPool, d.logger).Start(d.ctx, &d.wg, d.deliver)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- msg:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("notification dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks.
func (d *Dispatcher) Enqueue(msg Message) error {
	if d.closed.Load() {
		return ErrClosed
	}
	select {
	case d.jobQueue <- msg:
		d.metrics.Notification("queued")
		return nil
	default:
		d.metrics.Notification("dropped")
		d.logger.Warn("notification queue full, dropping message",
			"message_id", msg.ID,
			"kind", msg.Kind,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(d.ctx, sendTimeout)
	defer cancel()
	lg := d.logger.With("message_id", msg.ID, "event_id", msg.EventID, "kind", msg.Kind)
	ctx = logger.Into(ctx, lg)

	if err := d.sender.Send(ctx, msg); err != nil {
		d.metrics.Notification("failed")
		lg.Error("failed to send notification", "error", err)
		return
	}
	d.metrics.Notification("sent")
}

// Shutdown stops the pool. Messages still queued are dropped and counted in the log.
func (d *Dispatcher) Shutdown() {
	if d.closed.Swap(true) {
		return
	}
	d.logger.Info("shutting down notification dispatcher", "pending", len(d.jobQueue))
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}

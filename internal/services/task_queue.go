package services

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type TaskKind string

const (
	TaskEmail    TaskKind = "email"
	TaskInApp    TaskKind = "in_app"
	TaskTelegram TaskKind = "telegram"
)

// Task is one unit of notification work. It is JSON-serialisable so the
// RabbitMQ transport can carry it unchanged.
type Task struct {
	Kind         TaskKind             `json:"kind"`
	To           string               `json:"to,omitempty"`
	Template     TemplateKey          `json:"template,omitempty"`
	Values       map[string]string    `json:"values,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
	Text         string               `json:"text,omitempty"`
	Attempt      int                  `json:"attempt"`
}

// TaskHandler performs a task; a non-nil error schedules a retry.
type TaskHandler func(ctx context.Context, t Task) error

// TaskQueue runs notification work off the request path.
type TaskQueue interface {
	// Enqueue never blocks on delivery. A task that cannot be accepted is
	// dead-lettered and the reason returned.
	Enqueue(ctx context.Context, t Task) error
	Start(ctx context.Context, h TaskHandler) error
	// Close stops accepting tasks, lets in-flight work finish and releases
	// the workers.
	Close()
}

type QueueOptions struct {
	Workers     int
	MaxAttempts int
	BufferSize  int
	BaseBackoff time.Duration
	Clock       clock.Clock
	Metrics     *Metrics
}

func (o QueueOptions) withDefaults() QueueOptions {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.BufferSize < 1 {
		o.BufferSize = 1
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = time.Second
	}
	if o.Clock == nil {
		o.Clock = clock.WallClock
	}
	return o
}

// backoff is BaseBackoff doubled per failed attempt.
func (o QueueOptions) backoff(attempt int) time.Duration {
	return o.BaseBackoff << (attempt - 1)
}

func deadLetter(m *Metrics, t Task, err error) {
	m.taskOutcome(t.Kind, outcomeDeadLettered)
	entry := utils.Logger.WithFields(logrus.Fields{
		"kind":     t.Kind,
		"to":       t.To,
		"template": t.Template,
		"attempts": t.Attempt,
	})
	if t.Notification != nil {
		entry = entry.WithField("user_id", t.Notification.UserID)
	}
	entry.WithError(err).Error("Notification task dead-lettered")
}

// ----------------------------------------------------------------------
// In-memory worker pool
// ----------------------------------------------------------------------

type memoryTaskQueue struct {
	opts  QueueOptions
	tasks chan Task
	stop  chan struct{}
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewMemoryTaskQueue(opts QueueOptions) TaskQueue {
	opts = opts.withDefaults()
	return &memoryTaskQueue{
		opts:  opts,
		tasks: make(chan Task, opts.BufferSize),
		stop:  make(chan struct{}),
	}
}

func (q *memoryTaskQueue) Enqueue(_ context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		deadLetter(q.opts.Metrics, t, utils.ErrQueueClosed)
		return utils.ErrQueueClosed
	}
	select {
	case q.tasks <- t:
		return nil
	default:
		deadLetter(q.opts.Metrics, t, utils.ErrQueueFull)
		return utils.ErrQueueFull
	}
}

func (q *memoryTaskQueue) Start(ctx context.Context, h TaskHandler) error {
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-q.tasks:
					if !ok {
						return
					}
					q.process(ctx, h, t)
				}
			}
		}()
	}
	utils.Logger.Infof("Notification queue started with %d workers", q.opts.Workers)
	return nil
}

func (q *memoryTaskQueue) process(ctx context.Context, h TaskHandler, t Task) {
	for {
		t.Attempt++
		err := h(ctx, t)
		if err == nil {
			q.opts.Metrics.taskOutcome(t.Kind, outcomeDelivered)
			return
		}
		if t.Attempt >= q.opts.MaxAttempts {
			deadLetter(q.opts.Metrics, t, err)
			return
		}

		q.opts.Metrics.taskOutcome(t.Kind, outcomeRetried)
		utils.Logger.WithError(err).Debugf("Notification task %s failed (attempt %d), retrying", t.Kind, t.Attempt)
		select {
		case <-q.opts.Clock.After(q.opts.backoff(t.Attempt)):
		case <-q.stop:
			deadLetter(q.opts.Metrics, t, err)
			return
		case <-ctx.Done():
			deadLetter(q.opts.Metrics, t, ctx.Err())
			return
		}
	}
}

func (q *memoryTaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	close(q.stop)
	q.mu.Unlock()

	q.wg.Wait()
	utils.Logger.Info("Notification queue stopped.")
}

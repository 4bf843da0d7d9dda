package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const (
	NotificationQueueName = "estate.notifications"
	publishTimeout        = 5 * time.Second
)

// rabbitTaskQueue persists tasks in a durable RabbitMQ queue so they
// survive a restart. A failed task is re-published with its attempt count
// after the back-off delay.
type rabbitTaskQueue struct {
	opts QueueOptions
	conn *amqp.Connection

	pubMu sync.Mutex
	pub   *amqp.Channel

	consumer *amqp.Channel
	stop     chan struct{}
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewRabbitMQTaskQueue(url string, opts QueueOptions) (TaskQueue, error) {
	opts = opts.withDefaults()

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	pub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if _, err := pub.QueueDeclare(NotificationQueueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare queue %s: %w", NotificationQueueName, err)
	}

	return &rabbitTaskQueue{
		opts: opts,
		conn: conn,
		pub:  pub,
		stop: make(chan struct{}),
	}, nil
}

func (q *rabbitTaskQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		deadLetter(q.opts.Metrics, t, utils.ErrQueueClosed)
		return utils.ErrQueueClosed
	}
	if err := q.publish(ctx, t); err != nil {
		deadLetter(q.opts.Metrics, t, err)
		return err
	}
	return nil
}

func (q *rabbitTaskQueue) publish(ctx context.Context, t Task) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal task: %w", err)
	}

	// The request context may already be cancelled once the handler has
	// responded; the publish still has to go out.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	return q.pub.PublishWithContext(pubCtx, "", NotificationQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (q *rabbitTaskQueue) Start(ctx context.Context, h TaskHandler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open consumer channel: %w", err)
	}
	if err := ch.Qos(q.opts.Workers, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq: set qos: %w", err)
	}
	deliveries, err := ch.Consume(NotificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}
	q.consumer = ch

	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-q.stop:
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					q.handle(ctx, h, d)
				}
			}
		}()
	}
	utils.Logger.Infof("Notification queue consuming %s with %d workers", NotificationQueueName, q.opts.Workers)
	return nil
}

func (q *rabbitTaskQueue) handle(ctx context.Context, h TaskHandler, d amqp.Delivery) {
	var t Task
	if err := json.Unmarshal(d.Body, &t); err != nil {
		utils.Logger.WithError(err).Error("Discarding undecodable notification task")
		_ = d.Nack(false, false)
		return
	}

	t.Attempt++
	err := h(ctx, t)
	switch {
	case err == nil:
		q.opts.Metrics.taskOutcome(t.Kind, outcomeDelivered)
	case t.Attempt >= q.opts.MaxAttempts:
		deadLetter(q.opts.Metrics, t, err)
	default:
		q.opts.Metrics.taskOutcome(t.Kind, outcomeRetried)
		select {
		case <-q.opts.Clock.After(q.opts.backoff(t.Attempt)):
			if perr := q.publish(ctx, t); perr != nil {
				deadLetter(q.opts.Metrics, t, perr)
			}
		case <-q.stop:
			// Leave the message on the broker for the next consumer.
			_ = d.Nack(false, true)
			return
		}
	}
	_ = d.Ack(false)
}

func (q *rabbitTaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	if q.consumer != nil {
		_ = q.consumer.Close()
	}
	q.wg.Wait()

	q.pubMu.Lock()
	_ = q.pub.Close()
	q.pubMu.Unlock()
	if err := q.conn.Close(); err != nil {
		utils.Logger.WithError(err).Warn("Error closing RabbitMQ connection")
	}
	utils.Logger.Info("Notification queue stopped.")
}

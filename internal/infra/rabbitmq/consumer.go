package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
)

// RenderHandler processes one decoded render request. A returned error
// means the delivery should be redelivered after backoff.
type RenderHandler func(ctx context.Context, msg entity.ClipRenderMessage) error

// Consumer runs a worker pool over the clip.render queue. Payloads are
// decoded here: a body that is not a valid ClipRenderMessage is parked on
// the DLQ and acked, so handlers only ever see well-formed requests.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	renderQueue string
	exchange    string
	workerCount int
	baseDelay   time.Duration
	handler     RenderHandler
	dlq         port.DLQPublisher
	logger      *zap.Logger
	wg          sync.WaitGroup
}

type ConsumerConfig struct {
	URL         string
	Queue       string
	Exchange    string
	DLQ         string
	StatusQueue string
	Prefetch    int
	WorkerCount int
	BaseDelayMs int
}

func NewConsumer(cfg ConsumerConfig, handler RenderHandler, dlq port.DLQPublisher, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.Queue, cfg.DLQ, cfg.StatusQueue} {
		_, err = ch.QueueDeclare(q, true, false, false, false, nil)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	err = ch.QueueBind(cfg.Queue, "clip.render", cfg.Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("bind render queue: %w", err)
	}

	err = ch.QueueBind(cfg.StatusQueue, "clip.status", cfg.Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("bind status queue: %w", err)
	}

	err = ch.Qos(cfg.Prefetch, 0, false)
	if err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:        conn,
		channel:     ch,
		renderQueue: cfg.Queue,
		exchange:    cfg.Exchange,
		workerCount: cfg.WorkerCount,
		baseDelay:   time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		handler:     handler,
		dlq:         dlq,
		logger:      logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.renderQueue,
		"",
		false, // autoAck=false
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("starting render worker pool",
		zap.Int("workers", c.workerCount),
		zap.String("queue", c.renderQueue),
	)

	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, deliveries)
	}

	<-ctx.Done()
	c.logger.Info("context cancelled, waiting for render workers to finish")
	c.wg.Wait()
	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.With(zap.Int("worker_id", id))
	log.Info("render worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("render worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			c.processDelivery(ctx, d, log)
		}
	}
}

func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery, log *zap.Logger) {
	var msg entity.ClipRenderMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Error("undecodable render request, parking on DLQ",
			zap.Error(err),
			zap.ByteString("body", d.Body),
		)
		if dlqErr := c.dlq.PublishToDLQ(ctx, d.Body, "unmarshal_error: "+err.Error()); dlqErr != nil {
			log.Error("failed to park undecodable message", zap.Error(dlqErr))
		}
		_ = d.Ack(false)
		return
	}

	err := c.handler(ctx, msg)
	if err != nil {
		log.Warn("render failed, nacking",
			zap.Error(err),
			zap.String("job_id", msg.JobID.String()),
			zap.Uint64("delivery_tag", d.DeliveryTag),
		)

		attempt := c.getAttemptFromHeaders(d)
		delay := c.calculateBackoff(attempt)
		log.Info("backoff before requeue", zap.Duration("delay", delay), zap.Int("attempt", attempt))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = d.Nack(false, false)
			return
		}

		_ = d.Nack(false, true) // requeue=true
		return
	}

	_ = d.Ack(false)
}

func (c *Consumer) getAttemptFromHeaders(d amqp.Delivery) int {
	if d.Headers == nil {
		return 1
	}
	if xDeath, ok := d.Headers["x-death"]; ok {
		if deaths, ok := xDeath.([]interface{}); ok && len(deaths) > 0 {
			return len(deaths)
		}
	}
	return 1
}

func (c *Consumer) calculateBackoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > 60*time.Second {
		delay = 60 * time.Second
	}
	return delay
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

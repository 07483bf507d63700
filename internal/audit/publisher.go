package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"interop/internal/config"
	"interop/internal/constants"
	"interop/internal/logger"
	"interop/pkg/circuitbreaker"
	"interop/pkg/metrics"
	"interop/pkg/retry"
)

// Publisher writes audit events to Kafka behind a circuit breaker with
// bounded retry. Record detaches from the request context so a
// finished request never waits on the broker.
type Publisher struct {
	writer  *kafka.Writer
	breaker *circuitbreaker.Wrapper
	policy  retry.Policy
	logger  logger.Logger
	topic   string
}

func NewPublisher(cfg config.AuditConfig, cbCfg config.CircuitBreakerConfig, log logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}

	breakerCfg := circuitbreaker.DefaultConfig("audit-publisher")
	if cbCfg.Enabled {
		breakerCfg = circuitbreaker.FromConfig("audit-publisher", cbCfg)
	}

	policy := retry.DefaultPolicy()
	if cfg.Retry.MaxAttempts > 0 {
		policy = retry.Policy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
			Multiplier:      cfg.Retry.Multiplier,
			MaxElapsedTime:  cfg.Retry.MaxElapsedTime,
		}
	}

	return &Publisher{
		writer:  writer,
		breaker: circuitbreaker.NewWrapper(breakerCfg),
		policy:  policy,
		logger:  log,
		topic:   cfg.Topic,
	}
}

func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	go p.publish(event)
}

func (p *Publisher) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.AuditPublishTimeout)
	defer cancel()

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorw("Failed to marshal audit event", "error", err, "event_id", event.ID)
		metrics.AuditEventsTotal.WithLabelValues("marshal_error").Inc()
		return
	}

	err = retry.Retry(ctx, p.policy, func() error {
		_, execErr := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.writer.WriteMessages(ctx, kafka.Message{
				Topic: p.topic,
				Key:   []byte(event.MessageControlID),
				Value: body,
				Time:  time.Now(),
			})
		})
		if execErr != nil {
			return fmt.Errorf("audit publish: %w", execErr)
		}
		return nil
	})

	if err != nil {
		p.logger.Errorw("Failed to publish audit event",
			"error", err,
			"event_id", event.ID,
			"topic", p.topic,
		)
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.AuditEventsTotal.WithLabelValues("published").Inc()
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

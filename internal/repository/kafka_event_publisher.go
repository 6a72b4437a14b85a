package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	applogger "UpgradeRisk/pkg/logger"
)

// topicWriter is the part of pkg/kafka.Producer the publisher needs.
type topicWriter interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// BreakerSettings tunes the circuit breaker in front of the producer.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Interval            time.Duration
}

// KafkaEventPublisher publishes assessment events keyed by upgrade id.
// Once the breaker is open, publishes fail fast until the timeout elapses.
type KafkaEventPublisher struct {
	producer topicWriter
	topic    string
	cb       *gobreaker.CircuitBreaker
	l        *applogger.Logger
}

func NewKafkaEventPublisher(producer topicWriter, topic string, bs BreakerSettings, l *applogger.Logger) *KafkaEventPublisher {
	if l == nil {
		l = applogger.NewNop()
	}
	if bs.ConsecutiveFailures == 0 {
		bs.ConsecutiveFailures = 5
	}
	if bs.OpenTimeout <= 0 {
		bs.OpenTimeout = 30 * time.Second
	}
	st := gobreaker.Settings{
		Name:        "kafka:" + topic,
		MaxRequests: 1,
		Interval:    bs.Interval,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("publisher breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	}
	return &KafkaEventPublisher{producer: producer, topic: topic, cb: gobreaker.NewCircuitBreaker(st), l: l}
}

func (p *KafkaEventPublisher) PublishAssessment(ctx context.Context, ev models.AssessmentEvent) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.producer.Publish(ctx, p.topic, []byte(ev.UpgradeID.String()), ev)
	})
	if err != nil {
		return fmt.Errorf("publish assessment %s: %w", ev.ID, err)
	}
	return nil
}

// State reports the breaker state for health output.
func (p *KafkaEventPublisher) State() string {
	return p.cb.State().String()
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

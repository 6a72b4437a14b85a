package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	headerContentType = "content-type"
	headerTraceID     = "trace_id"
)

var compressionCodecs = map[string]kafka.Compression{
	"none":   0,
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON payloads. The trace id found in ctx (see TraceHook)
// travels as a header so consumers downstream can correlate.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		MaxAttempts:  3,
		Compression:  "gzip",
		BatchSize:    100,
		BatchBytes:   1 << 20,
		Linger:       50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	var bal kafka.Balancer = &kafka.LeastBytes{}
	if cfg.KeyHashing {
		bal = &kafka.Hash{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.Linger,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		Async:        cfg.Async,
		Compression:  compressionCodecs[cfg.Compression],
	}
	return newProducer(w), nil
}

func newProducer(w messageWriter) *Producer {
	metrics()
	return &Producer{writer: w, now: time.Now}
}

// Publish writes one message. []byte and string values are sent as is,
// anything else is JSON encoded.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	payload, err := marshalPayload(value)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   payload,
		Time:    p.now(),
		Headers: []kafka.Header{{Key: headerContentType, Value: []byte("application/json")}},
	}
	if id := TraceID(ctx); id != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: headerTraceID, Value: []byte(id)})
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)

	m := metrics()
	m.pubLatency.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	if err != nil {
		m.published.WithLabelValues(topic, "error").Inc()
		return fmt.Errorf("write %s: %w", topic, err)
	}
	m.published.WithLabelValues(topic, "ok").Inc()
	m.pubBytes.WithLabelValues(topic).Add(float64(len(payload)))
	return nil
}

// PublishMessage lets the producer back the logger's error collector.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func marshalPayload(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(value)
	}
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by Producer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is one keyed payload. Value is sent as-is when it is []byte or string, JSON otherwise.
type Message struct {
	Key   []byte
	Value interface{}
}

// Producer writes JSON messages synchronously and records per-topic metrics.
type Producer struct {
	writer MessageWriter
	codec  string
	now    func() time.Time
}

// NewProducer builds a producer on a kafka-go writer. At least one broker is required.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka producer: no brokers configured")
	}
	return NewProducerWithWriter(newWriter(cfg), cfg.Compression), nil
}

// NewProducerWithWriter wraps an existing writer; compression only labels metrics.
func NewProducerWithWriter(w MessageWriter, compression string) *Producer {
	registerProducerMetrics()
	return &Producer{writer: w, codec: compression, now: time.Now}
}

func defaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1 << 20,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func newWriter(cfg *ProducerConfig) *kafka.Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  codecFor(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
	}
	if cfg.HashByKey {
		w.Balancer = &kafka.Hash{}
	}
	return w
}

// Publish sends one keyed message to topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishMessage sends an unkeyed payload. It satisfies logger.Publisher.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Value: payload}})
}

// PublishBatch encodes every message before writing any, so an encoding failure sends nothing.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	start := time.Now()
	stamp := p.now()

	out := make([]kafka.Message, len(messages))
	var size int64
	for i, m := range messages {
		v, err := encodeValue(m.Value)
		if err != nil {
			return fmt.Errorf("topic %s message %d: %w", topic, i, err)
		}
		out[i] = kafka.Message{Topic: topic, Key: m.Key, Value: v, Time: stamp}
		size += int64(len(v))
	}

	err := p.writer.WriteMessages(ctx, out...)
	producerStats.observe(topic, p.codec, size, len(out), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(out), topic, err)
	}
	return nil
}

// Close flushes pending batches and closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encodeValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return b, nil
}

func codecFor(name string) kafka.Compression {
	switch name {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	}
	return kafka.Gzip
}

type producerMetrics struct {
	messages *prometheus.CounterVec
	failures *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	producerStats     *producerMetrics
	producerStatsOnce sync.Once
)

// registerProducerMetrics registers the collectors on the default registry once per process.
func registerProducerMetrics() {
	producerStatsOnce.Do(func() {
		producerStats = &producerMetrics{
			messages: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "pairscope_kafka_producer_messages_total",
				Help: "Messages written to Kafka by topic and outcome.",
			}, []string{"topic", "compression", "result"}),
			failures: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "pairscope_kafka_producer_errors_total",
				Help: "Failed Kafka writes by topic.",
			}, []string{"topic"}),
			bytes: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "pairscope_kafka_producer_bytes_total",
				Help: "Encoded payload bytes written to Kafka.",
			}, []string{"topic", "compression"}),
			latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "pairscope_kafka_producer_publish_seconds",
				Help:    "Kafka write latency.",
				Buckets: prometheus.DefBuckets,
			}, []string{"topic"}),
		}
	})
}

func (m *producerMetrics) observe(topic, codec string, size int64, count int, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		m.failures.WithLabelValues(topic).Inc()
	}
	m.messages.WithLabelValues(topic, codec, result).Add(float64(count))
	m.bytes.WithLabelValues(topic, codec).Add(float64(size))
	m.latency.WithLabelValues(topic).Observe(took.Seconds())
}

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestProducerEncodesValues(t *testing.T) {
	w := &captureWriter{}
	p := NewProducerWithWriter(w, "gzip")
	p.now = func() time.Time { return time.Unix(100, 0) }
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "t", []byte("k"), map[string]int{"a": 1}))
	require.NoError(t, p.PublishMessage(ctx, "logs", "raw"))
	require.NoError(t, p.PublishBatch(ctx, "t", []Message{{Key: []byte("x"), Value: []byte("b")}, {Value: 2}}))
	require.NoError(t, p.PublishBatch(ctx, "t", nil))

	require.Len(t, w.msgs, 4)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, 1, decoded["a"])
	assert.Equal(t, "logs", w.msgs[1].Topic)
	assert.Equal(t, []byte("raw"), w.msgs[1].Value)
	assert.Nil(t, w.msgs[1].Key)
	assert.Equal(t, []byte("2"), w.msgs[3].Value)
	assert.Equal(t, time.Unix(100, 0), w.msgs[2].Time)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"k1:9092", "k2:9092"}),
		WithCompression("zstd"),
		WithDelivery(1, 5),
		WithBatching(10, 2048, 20*time.Millisecond),
		WithTimeouts(3*time.Second, 4*time.Second),
		WithHashByKey(true),
	)
	require.NoError(t, err)

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequiredAcks(1), w.RequiredAcks)
	assert.Equal(t, 5, w.MaxAttempts)
	assert.Equal(t, 10, w.BatchSize)
	assert.Equal(t, int64(2048), w.BatchBytes)
	assert.Equal(t, 20*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.False(t, w.Async)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	require.NoError(t, p.Close())
}

func TestPublishBatchEncodingFailureSendsNothing(t *testing.T) {
	w := &captureWriter{}
	p := NewProducerWithWriter(w, "gzip")

	err := p.PublishBatch(context.Background(), "t", []Message{{Value: "ok"}, {Value: make(chan int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message 1")
	assert.Empty(t, w.msgs)
}

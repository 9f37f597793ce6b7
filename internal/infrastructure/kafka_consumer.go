package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

// RowSink receives decoded row submissions from the intake paths.
type RowSink interface {
	StoreRows(ctx context.Context, source string, batch []domain.RowSubmission) (int, error)
}

// KafkaRowConsumer reads row submissions published by the external sync
// and feeds them to the intake sink. One message carries either a
// single submission or a batch under "rows".
type KafkaRowConsumer struct {
	reader  *kafka.Reader
	sink    RowSink
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewKafkaRowConsumer(brokers []string, topic, groupID string, sink RowSink, logger *logger.Logger, metrics *metrics.Metrics) *KafkaRowConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &KafkaRowConsumer{
		reader:  reader,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes until the context is cancelled.
func (c *KafkaRowConsumer) Run(ctx context.Context) {
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			c.logger.WithError(err).Error("Failed to read message from Kafka")
			continue
		}

		batch, ok := decodeRowMessage(message.Value)
		if !ok {
			c.metrics.RecordRowRejected("kafka", "decode")
			c.logger.WithFields(map[string]any{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}).Warn("Dropped undecodable intake message")
			continue
		}

		if _, err := c.sink.StoreRows(ctx, "kafka", batch); err != nil {
			c.logger.WithError(err).Error("Failed to store intake rows from Kafka")
		}
	}
}

func (c *KafkaRowConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

func decodeRowMessage(value []byte) ([]domain.RowSubmission, bool) {
	var batch domain.RowBatch
	if err := json.Unmarshal(value, &batch); err == nil && len(batch.Rows) > 0 {
		return batch.Rows, true
	}

	var single domain.RowSubmission
	if err := json.Unmarshal(value, &single); err == nil && single.EntityID != "" {
		return []domain.RowSubmission{single}, true
	}

	return nil, false
}

package repository

import (
	"context"
	"fmt"

	"PairScope/internal/domain/models"
	domrepo "PairScope/internal/domain/repository"
	pkgkafka "PairScope/pkg/kafka"
)

// Topics names the destination of each report kind.
type Topics struct {
	Scan     string
	Backtest string
	Trades   string
}

// KafkaResults implements Publisher. Messages are keyed by pair.
type KafkaResults struct {
	producer *pkgkafka.Producer
	topics   Topics
}

func NewKafkaResults(producer *pkgkafka.Producer, topics Topics) *KafkaResults {
	return &KafkaResults{producer: producer, topics: topics}
}

var _ domrepo.Publisher = (*KafkaResults)(nil)

type scanMessage struct {
	RunID       string   `json:"run_id"`
	Pair        string   `json:"pair"`
	M1Signal    string   `json:"m1_signal,omitempty"`
	Intercept   *float64 `json:"intercept"`
	Slope       *float64 `json:"slope"`
	PValue      *float64 `json:"p_value"`
	StdErr      *float64 `json:"std_err"`
	Correlation *float64 `json:"correlation"`
	M2Signal    string   `json:"m2_signal,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type backtestMessage struct {
	RunID        string            `json:"run_id"`
	Pair         string            `json:"pair"`
	M1Efficiency models.Efficiency `json:"m1_efficiency"`
	M2Efficiency models.Efficiency `json:"m2_efficiency"`
	Error        string            `json:"error,omitempty"`
}

type tradeMessage struct {
	RunID string `json:"run_id"`
	Pair  string `json:"pair"`
	models.Trade
}

func (p *KafkaResults) PublishScanRows(ctx context.Context, runID string, rows []models.ScanRow) error {
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		msgs[i] = pkgkafka.Message{
			Key: []byte(r.Pair),
			Value: scanMessage{
				RunID:       runID,
				Pair:        r.Pair,
				M1Signal:    string(r.M1Signal),
				Intercept:   models.FiniteOrNil(r.Intercept),
				Slope:       models.FiniteOrNil(r.Slope),
				PValue:      models.FiniteOrNil(r.PValue),
				StdErr:      models.FiniteOrNil(r.StdErr),
				Correlation: models.FiniteOrNil(r.Correlation),
				M2Signal:    string(r.M2Signal),
				Error:       r.Err,
			},
		}
	}
	return p.publish(ctx, p.topics.Scan, msgs)
}

func (p *KafkaResults) PublishBacktestRows(ctx context.Context, runID string, rows []models.BacktestRow) error {
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Pair),
			Value: backtestMessage{RunID: runID, Pair: r.Pair, M1Efficiency: r.M1Efficiency, M2Efficiency: r.M2Efficiency, Error: r.Err},
		}
	}
	return p.publish(ctx, p.topics.Backtest, msgs)
}

func (p *KafkaResults) PublishTrades(ctx context.Context, runID, pair string, trades []models.Trade) error {
	msgs := make([]pkgkafka.Message, len(trades))
	for i, t := range trades {
		msgs[i] = pkgkafka.Message{Key: []byte(pair), Value: tradeMessage{RunID: runID, Pair: pair, Trade: t}}
	}
	return p.publish(ctx, p.topics.Trades, msgs)
}

func (p *KafkaResults) publish(ctx context.Context, topic string, msgs []pkgkafka.Message) error {
	if err := p.producer.PublishBatch(ctx, topic, msgs); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaResults) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

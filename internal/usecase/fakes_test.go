package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func series(symbol string, closes []float64) models.PriceSeries {
	s := models.PriceSeries{Symbol: symbol, Points: make([]models.PricePoint, len(closes))}
	for i, c := range closes {
		s.Points[i] = models.PricePoint{Time: day0.AddDate(0, 0, i), Close: c}
	}
	return s
}

// spikePair returns X = 100+i and Y = 2X + 50 with symmetric spikes that open four M2 trades.
func spikePair() (x, y []float64) {
	spikes := map[int]float64{2: 7.7, 47: 7.7, 5: -7.7, 44: -7.7, 10: -10, 39: -10, 20: 10, 29: 10}
	x = make([]float64, 50)
	y = make([]float64, 50)
	for i := range x {
		x[i] = float64(100 + i)
		y[i] = 2*x[i] + 50 + spikes[i]
	}
	return x, y
}

type fakePrices struct {
	series map[string]models.PriceSeries
	calls  []string
}

func newFakePrices() *fakePrices {
	x, y := spikePair()
	return &fakePrices{series: map[string]models.PriceSeries{
		"XX":    series("XX", x),
		"YY":    series("YY", y),
		"SHORT": series("SHORT", x[:10]),
	}}
}

func (f *fakePrices) Fetch(_ context.Context, symbol string) (models.PriceSeries, error) {
	f.calls = append(f.calls, symbol)
	s, ok := f.series[symbol]
	if !ok {
		return models.PriceSeries{}, fmt.Errorf("fetch %s: %w", symbol, models.ErrUnknownSymbol)
	}
	return s, nil
}

type recordingSink struct {
	scan     []models.ScanRow
	backtest []models.BacktestRow
	pair     *models.PairBacktest
	errPair  string
	err      error
}

func (s *recordingSink) WriteScan(_ context.Context, _ time.Time, rows []models.ScanRow) (string, error) {
	s.scan = rows
	return "scan.csv", s.err
}

func (s *recordingSink) WriteBacktest(_ context.Context, _ time.Time, rows []models.BacktestRow) (string, error) {
	s.backtest = rows
	return "backtest.csv", s.err
}

func (s *recordingSink) WritePairBacktest(_ context.Context, _ time.Time, r *models.PairBacktest) (string, error) {
	s.pair = r
	return "pair.csv", s.err
}

func (s *recordingSink) WritePairError(_ context.Context, _ time.Time, pair string) (string, error) {
	s.errPair = pair
	return "pair.csv", s.err
}

type recordingStore struct {
	runIDs []string
	err    error
	closed bool
}

func (s *recordingStore) Init(context.Context) error { return nil }

func (s *recordingStore) StoreScanRows(_ context.Context, runID string, _ time.Time, _ []models.ScanRow) error {
	s.runIDs = append(s.runIDs, runID)
	return s.err
}

func (s *recordingStore) StoreBacktestRows(_ context.Context, runID string, _ time.Time, _ []models.BacktestRow) error {
	s.runIDs = append(s.runIDs, runID)
	return s.err
}

func (s *recordingStore) StoreTrades(_ context.Context, runID, _ string, _ []models.Trade) error {
	s.runIDs = append(s.runIDs, runID)
	return s.err
}

func (s *recordingStore) Health(context.Context) error { return nil }

func (s *recordingStore) Close() error {
	s.closed = true
	return nil
}

type recordingPub struct {
	topics []string
	closed bool
}

func (p *recordingPub) PublishScanRows(context.Context, string, []models.ScanRow) error {
	p.topics = append(p.topics, models.ReportScan)
	return nil
}

func (p *recordingPub) PublishBacktestRows(context.Context, string, []models.BacktestRow) error {
	p.topics = append(p.topics, models.ReportBacktest)
	return nil
}

func (p *recordingPub) PublishTrades(context.Context, string, string, []models.Trade) error {
	p.topics = append(p.topics, models.ReportPairBacktest)
	return errors.New("broker down")
}

func (p *recordingPub) Close() error {
	p.closed = true
	return nil
}

type pairCounter struct {
	pairs  map[string]int
	errors map[string]int
}

func newPairCounter() *pairCounter {
	return &pairCounter{pairs: map[string]int{}, errors: map[string]int{}}
}

func (m *pairCounter) RecordFetch(string, string) {}
func (m *pairCounter) RecordError(kind string) { m.errors[kind]++ }
func (m *pairCounter) RecordPair(mode, outcome string) { m.pairs[mode+"/"+outcome]++ }
func (m *pairCounter) RecordLatency(string, float64) {}
func (m *pairCounter) RecordBreakerState(string, int) {}

var (
	_ drepo.PriceProvider = (*fakePrices)(nil)
	_ drepo.ReportSink    = (*recordingSink)(nil)
	_ drepo.Storage       = (*recordingStore)(nil)
	_ drepo.Publisher     = (*recordingPub)(nil)
	_ drepo.Metrics       = (*pairCounter)(nil)
)

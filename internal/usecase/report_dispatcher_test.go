package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
	"PairScope/pkg/logger"
)

func TestDispatchFansOut(t *testing.T) {
	sink, store, pub, m := &recordingSink{}, &recordingStore{}, &recordingPub{}, newPairCounter()
	d := NewReportDispatcher(sink, store, pub, m, logger.Nop())
	ctx := context.Background()

	path, err := d.DispatchScan(ctx, "r1", []models.ScanRow{{Pair: "B_A"}})
	require.NoError(t, err)
	assert.Equal(t, "scan.csv", path)

	_, err = d.DispatchBacktest(ctx, "r2", []models.BacktestRow{{Pair: "B_A"}})
	require.NoError(t, err)

	// publisher failure on trades is logged, not returned
	_, err = d.DispatchPairBacktest(ctx, &models.PairBacktest{RunID: "r3", Pair: "B_A"})
	require.NoError(t, err)

	assert.Len(t, sink.scan, 1)
	assert.Len(t, sink.backtest, 1)
	assert.Equal(t, "B_A", sink.pair.Pair)
	assert.Equal(t, []string{"r1", "r2", "r3"}, store.runIDs)
	assert.Equal(t, []string{models.ReportScan, models.ReportBacktest, models.ReportPairBacktest}, pub.topics)
	assert.Equal(t, 1, m.errors["kafka"])

	d.Close()
	assert.True(t, store.closed)
	assert.True(t, pub.closed)
}

func TestDispatchSinkFailureIsReturned(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	d := NewReportDispatcher(sink, nil, nil, newPairCounter(), logger.Nop())

	_, err := d.DispatchScan(context.Background(), "r", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = d.DispatchPairBacktest(context.Background(), nil)
	assert.Error(t, err)
}

func TestDispatchPairError(t *testing.T) {
	sink := &recordingSink{}
	d := NewReportDispatcher(sink, nil, nil, newPairCounter(), logger.Nop())
	_, err := d.DispatchPairError(context.Background(), "YY_XX")
	require.NoError(t, err)
	assert.Equal(t, "YY_XX", sink.errPair)
}

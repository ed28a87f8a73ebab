package util

import (
	"testing"
	"time"
)

func TestDatedFileName(t *testing.T) {
	d := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	if got := DatedFileName("batch_result_", d, ""); got != "batch_result_2024-03-07.csv" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := DatedFileName("backtest_result_", d, "TCS_INFY"); got != "backtest_result_2024-03-07TCS_INFY.csv" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestLookbackWindow(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	from, to := LookbackWindow(now, 24)
	if !to.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", to)
	}
	if !from.Equal(time.Date(2022, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", from)
	}
}

package repository

import "testing"

func TestNormalizeInterval(t *testing.T) {
	if got := NormalizeInterval(""); got != Interval1d {
		t.Fatalf("expected default, got %s", got)
	}
	if got := NormalizeInterval("1wk"); got != Interval1wk {
		t.Fatalf("expected 1wk, got %s", got)
	}
	if got := NormalizeInterval("1m"); got != Interval1d {
		t.Fatalf("intraday must fall back to default, got %s", got)
	}
}

package util

import (
	"reflect"
	"testing"
)

func TestSplitPair(t *testing.T) {
	y, x, ok := SplitPair(" tcs_infy ")
	if !ok || y != "TCS" || x != "INFY" {
		t.Fatalf("unexpected split %q %q %v", y, x, ok)
	}
	for _, bad := range []string{"TCS", "_INFY", "TCS_", ""} {
		if _, _, ok := SplitPair(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestCombinations(t *testing.T) {
	got := Combinations([]string{"A", "B", "C", "D"}, 0)
	want := [][2]string{{"A", "B"}, {"A", "C"}, {"A", "D"}, {"B", "C"}, {"B", "D"}, {"C", "D"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected combinations %v", got)
	}
	if got := Combinations([]string{"A", "B", "C", "D"}, 4); len(got) != 4 || got[3] != [2]string{"B", "C"} {
		t.Fatalf("unexpected capped combinations %v", got)
	}
	if got := Combinations([]string{"A"}, 0); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}

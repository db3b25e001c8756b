package service

import (
	"math"
	"testing"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

func f(v float64) *float64 { return &v }

func rec(key string, lat, lon *float64) domain.PositionRecord {
	return domain.PositionRecord{Key: key, Latitude: lat, Longitude: lon}
}

func TestReduceSnapshot_LatestByTimestamp(t *testing.T) {
	snap := domain.Snapshot{
		EntityID: "elephantId6",
		Records: []domain.PositionRecord{
			rec("100", f(6.1), f(81.1)),
			rec("300", f(6.3), f(81.3)),
			rec("200", f(6.2), f(81.2)),
		},
	}

	red, ok := ReduceSnapshot(snap)
	if !ok {
		t.Fatal("expected a latest position")
	}
	if red.Latest.Timestamp != 300 || red.Latest.Lat != 6.3 {
		t.Errorf("expected timestamp 300 at 6.3, got %+v", red.Latest)
	}
	if len(red.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(red.History))
	}
	for i, want := range []int64{100, 200, 300} {
		if red.History[i].Timestamp != want {
			t.Errorf("history[%d]: expected %d, got %d", i, want, red.History[i].Timestamp)
		}
	}
	if red.Discarded != 0 {
		t.Errorf("expected 0 discarded, got %d", red.Discarded)
	}
}

func TestReduceSnapshot_DiscardsMalformed(t *testing.T) {
	snap := domain.Snapshot{
		Records: []domain.PositionRecord{
			rec("100", f(6.1), f(81.1)),
			// missing latitude
			rec("900", nil, f(81.9)),
			// missing longitude
			rec("800", f(6.8), nil),
			// unparsable key
			rec("abc", f(6.7), f(81.7)),
			// empty key
			rec("", f(6.6), f(81.6)),
			// NaN
			rec("700", f(math.NaN()), f(81.7)),
			// out of range
			rec("600", f(91), f(81.6)),
			// infinite
			rec("500", f(6.5), f(math.Inf(1))),
			rec("200", f(6.2), f(81.2)),
		},
	}

	red, ok := ReduceSnapshot(snap)
	if !ok {
		t.Fatal("expected a latest position")
	}
	if red.Latest.Timestamp != 200 {
		t.Errorf("expected latest 200, got %d", red.Latest.Timestamp)
	}
	if len(red.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(red.History))
	}
	if red.Discarded != 7 {
		t.Errorf("expected 7 discarded, got %d", red.Discarded)
	}
	for _, p := range red.History {
		if p.Timestamp == 900 {
			t.Error("record missing latitude must not appear in history")
		}
	}
}

func TestReduceSnapshot_TieKeepsFirstSeen(t *testing.T) {
	snap := domain.Snapshot{
		Records: []domain.PositionRecord{
			rec("300", f(1), f(1)),
			rec("300", f(2), f(2)),
		},
	}

	red, ok := ReduceSnapshot(snap)
	if !ok {
		t.Fatal("expected a latest position")
	}
	if red.Latest.Lat != 1 {
		t.Errorf("expected the first record to win the tie, got %+v", red.Latest)
	}
	if red.History[0].Lat != 1 || red.History[1].Lat != 2 {
		t.Errorf("expected stable history order, got %+v", red.History)
	}
}

func TestReduceSnapshot_Empty(t *testing.T) {
	tests := []struct {
		name string
		snap domain.Snapshot
	}{
		{"no records", domain.Snapshot{}},
		{"only malformed", domain.Snapshot{Records: []domain.PositionRecord{rec("1", nil, nil)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			red, ok := ReduceSnapshot(tt.snap)
			if ok {
				t.Fatalf("expected no latest position, got %+v", red.Latest)
			}
			if len(red.History) != 0 {
				t.Errorf("expected empty history, got %d", len(red.History))
			}
		})
	}
}

func TestReduceSnapshot_NegativeAndZeroTimestamps(t *testing.T) {
	snap := domain.Snapshot{
		Records: []domain.PositionRecord{
			rec("-5", f(1), f(1)),
			rec("0", f(2), f(2)),
		},
	}

	red, ok := ReduceSnapshot(snap)
	if !ok {
		t.Fatal("expected a latest position")
	}
	if red.Latest.Timestamp != 0 {
		t.Errorf("expected latest 0, got %d", red.Latest.Timestamp)
	}
}

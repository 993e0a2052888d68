package date

import (
	"testing"
	"time"
)

func day(d int) Date { return New(2020, time.January, d) }

func TestSeries_Append_KeepsChronologicalOrder(t *testing.T) {
	var s Series
	s.Append(day(3), 30).Append(day(1), 10).Append(day(2), 20)

	var got []Date
	for on := range s.Values() {
		got = append(got, on)
	}
	want := []Date{day(1), day(2), day(3)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() order = %v, want %v", got, want)
		}
	}
}

func TestSeries_Append_SameDayOverwrites(t *testing.T) {
	var s Series
	s.Append(day(1), 10)
	s.Append(day(1), 10) // re-appending same pair is a no-op
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	s.Append(day(1), 12) // differing value at same date is an update
	if v, _ := s.Get(day(1)); v != 12 {
		t.Errorf("Get() = %v, want 12", v)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSeries_AsOf(t *testing.T) {
	var s Series
	s.Append(day(10), 100).Append(day(20), 200)

	testCases := []struct {
		name   string
		on     Date
		want   float64
		wantOK bool
	}{
		{name: "before first observation", on: day(5), wantOK: false},
		{name: "exact match", on: day(10), want: 100, wantOK: true},
		{name: "between observations forward-fills", on: day(15), want: 100, wantOK: true},
		{name: "after last observation", on: day(25), want: 200, wantOK: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := s.AsOf(tc.on)
			if ok != tc.wantOK {
				t.Fatalf("AsOf(%v) ok = %v, want %v", tc.on, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("AsOf(%v) = %v, want %v", tc.on, got, tc.want)
			}
		})
	}
}

func TestSeries_Latest(t *testing.T) {
	var s Series
	if on, v := s.Latest(); !on.IsZero() || v != 0 {
		t.Errorf("Latest() on empty series = (%v, %v), want zero values", on, v)
	}
	s.Append(day(2), 20).Append(day(1), 10)
	on, v := s.Latest()
	if on != day(2) || v != 20 {
		t.Errorf("Latest() = (%v, %v), want (%v, 20)", on, v, day(2))
	}
}

func TestMerge(t *testing.T) {
	var a, b Series
	a.Append(day(1), 1).Append(day(3), 3)
	b.Append(day(2), 2).Append(day(3), 33).Append(day(4), 4)

	var got []Date
	for on := range Merge(&a, &b) {
		got = append(got, on)
	}
	want := []Date{day(1), day(2), day(3), day(4)}
	if len(got) != len(want) {
		t.Fatalf("Merge() yielded %d dates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Merge() = %v, want %v", got, want)
		}
	}
}

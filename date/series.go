package date

import (
	"iter"
	"slices"
	"sort"
)

// Series stores a chronological series of float64 values, each associated
// with a specific date. Dates are unique and the series is always sorted.
//
// Price and exchange-rate histories are sparse (trading days only), so
// consumers rely on AsOf to forward-fill the most recent observation.
type Series struct {
	days   []Date
	values []float64
}

// Len returns the number of observations in the series.
func (s *Series) Len() int { return len(s.days) }

// Latest returns the latest date and value in the series,
// or zero values when the series is empty.
func (s *Series) Latest() (day Date, value float64) {
	last := len(s.days) - 1
	if last < 0 {
		return Date{}, 0
	}
	return s.days[last], s.values[last]
}

// First returns the earliest date and value in the series,
// or zero values when the series is empty.
func (s *Series) First() (day Date, value float64) {
	if len(s.days) == 0 {
		return Date{}, 0
	}
	return s.days[0], s.values[0]
}

// chronological sorts both slices in lockstep by date.
type chronological struct{ *Series }

func (c chronological) Len() int           { return len(c.days) }
func (c chronological) Less(i, j int) bool { return c.days[i].Before(c.days[j]) }
func (c chronological) Swap(i, j int) {
	c.days[i], c.days[j] = c.days[j], c.days[i]
	c.values[i], c.values[j] = c.values[j], c.values[i]
}

// Append adds an observation to the series. An existing value at the same
// date is overwritten: re-appending the same (date, value) pair is a no-op,
// a differing value at the same date is an update.
func (s *Series) Append(on Date, v float64) *Series {
	if i := slices.Index(s.days, on); i >= 0 {
		s.values[i] = v
		return s
	}
	s.days, s.values = append(s.days, on), append(s.values, v)
	sort.Sort(chronological{s})
	return s
}

// Get returns the value recorded exactly at day.
func (s *Series) Get(day Date) (float64, bool) {
	if i := slices.Index(s.days, day); i >= 0 {
		return s.values[i], true
	}
	return 0, false
}

// AsOf returns the value on a given day, or the most recent value before it.
// Future-dated observations are never used. It returns false when no
// observation exists on or before the given day.
func (s *Series) AsOf(day Date) (float64, bool) {
	i, found := slices.BinarySearchFunc(s.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
	if found {
		return s.values[i], true
	}
	if i == 0 {
		return 0, false // no observation on or before day
	}
	return s.values[i-1], true
}

// Values returns an iterator over all (date, value) pairs in chronological order.
func (s *Series) Values() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		for i, on := range s.days {
			if !yield(on, s.values[i]) {
				return
			}
		}
	}
}

// Days returns a copy of the observation dates, in chronological order.
func (s *Series) Days() []Date { return slices.Clone(s.days) }

// Merge returns an iterator over all unique dates from multiple series,
// in chronological order.
func Merge(series ...*Series) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		indexes := make([]int, len(series))
		for {
			// Find the minimum date not yet consumed across all series.
			var m Date
			found := false
			for i, idx := range indexes {
				if idx >= len(series[i].days) {
					continue
				}
				on := series[i].days[idx]
				if !found || on.Before(m) {
					m, found = on, true
				}
			}
			if !found {
				return // all series consumed
			}
			// Consume every series positioned at that date.
			for i, idx := range indexes {
				if idx < len(series[i].days) && series[i].days[idx] == m {
					indexes[i]++
				}
			}
			if !yield(m) {
				return
			}
		}
	}
}

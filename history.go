package shareplan

import (
	"sort"

	"github.com/etnz/shareplan/date"
)

// PriceHistory holds the instrument's historical closes, one sparse series
// per currency. A single-currency feed fills one column; a multi-currency
// table fills one column per currency code, which is what makes currency
// extraction O(1) later on.
type PriceHistory struct {
	series map[string]*date.Series
}

// NewPriceHistory returns an empty price history.
func NewPriceHistory() *PriceHistory {
	return &PriceHistory{series: make(map[string]*date.Series)}
}

// Append records a close for the given currency. Appending the same
// (date, price) again is a no-op; a differing price at the same date is an
// update. This is the idempotent merge used for the as-of-date marker.
func (h *PriceHistory) Append(on date.Date, currency string, price float64) {
	s, ok := h.series[currency]
	if !ok {
		s = &date.Series{}
		h.series[currency] = s
	}
	s.Append(on, price)
}

// Series returns the series for a currency, or nil when that currency was
// never observed.
func (h *PriceHistory) Series(currency string) *date.Series {
	if h == nil {
		return nil
	}
	return h.series[currency]
}

// PriceAsOf returns the close on the given day or the most recent one before
// it, in the given currency.
func (h *PriceHistory) PriceAsOf(currency string, on date.Date) (float64, bool) {
	s := h.Series(currency)
	if s == nil {
		return 0, false
	}
	return s.AsOf(on)
}

// Latest returns the most recent close in the given currency.
func (h *PriceHistory) Latest(currency string) (date.Date, float64, bool) {
	s := h.Series(currency)
	if s == nil || s.Len() == 0 {
		return date.Date{}, 0, false
	}
	day, price := s.Latest()
	return day, price, true
}

// Currencies returns the currency codes present in the history, sorted.
func (h *PriceHistory) Currencies() []string {
	if h == nil {
		return nil
	}
	out := make([]string, 0, len(h.series))
	for c := range h.series {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of observations in the richest currency column.
func (h *PriceHistory) Len() int {
	if h == nil {
		return 0
	}
	max := 0
	for _, s := range h.series {
		if s.Len() > max {
			max = s.Len()
		}
	}
	return max
}

// RateHistory holds historical exchange rates against a single base currency.
// A rate is the number of units of a currency per one unit of the base
// (e.g. with base EUR, rate["USD"] on a day is that day's EURUSD).
type RateHistory struct {
	base  string
	rates map[string]*date.Series
}

// NewRateHistory returns an empty rate history with the given base currency.
func NewRateHistory(base string) *RateHistory {
	return &RateHistory{base: base, rates: make(map[string]*date.Series)}
}

// Base returns the base currency of the table.
func (r *RateHistory) Base() string { return r.base }

// Append records a rate for the given currency on a day.
func (r *RateHistory) Append(on date.Date, currency string, rate float64) {
	s, ok := r.rates[currency]
	if !ok {
		s = &date.Series{}
		r.rates[currency] = s
	}
	s.Append(on, rate)
}

// rateAsOf returns the base→currency rate on or before the given day.
func (r *RateHistory) rateAsOf(currency string, on date.Date) (float64, bool) {
	if currency == r.base {
		return 1, true
	}
	s := r.rates[currency]
	if s == nil {
		return 0, false
	}
	rate, ok := s.AsOf(on)
	if !ok || rate == 0 {
		return 0, false
	}
	return rate, ok
}

// Convert converts an amount between two currencies using the rates in
// effect on the given day (nearest available rate at or before the day,
// never a future-dated one). It returns false when either leg has no rate.
func (r *RateHistory) Convert(amount float64, from, to string, on date.Date) (float64, bool) {
	if from == to {
		return amount, true
	}
	if r == nil {
		return 0, false
	}
	fromRate, ok := r.rateAsOf(from, on)
	if !ok {
		return 0, false
	}
	toRate, ok := r.rateAsOf(to, on)
	if !ok {
		return 0, false
	}
	// through the base: amount/fromRate is in base units, then scale to target.
	return amount / fromRate * toRate, true
}

// Currencies returns the currency codes convertible by this table, sorted,
// including the base itself.
func (r *RateHistory) Currencies() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.rates)+1)
	out = append(out, r.base)
	for c := range r.rates {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

package shareplan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/etnz/shareplan/date"
)

// TimelinePoint is one sample of the portfolio's value over time. The
// reconstructor emits exactly one per date present in the historical price
// series; it never interpolates to daily granularity, so the series stays
// free of artificial volatility between observations.
type TimelinePoint struct {
	Date           date.Date
	Shares         Quantity // outstanding shares, forward-filled
	Price          float64  // historical close used for valuation
	Value          float64  // Shares × Price
	ProfitLoss     float64  // Value + cumulative proceeds − cumulative investment
	Reason         string   // description of any purchase or sale on that date
	HasTransaction bool

	// MarkerPrice carries the portfolio-reported as-of price when it falls
	// on this date and differs from the historical close. The close drives
	// the valuation for continuity; the marker is kept for annotation.
	MarkerPrice float64
	HasMarker   bool
}

// shareEvent is one share-changing fact on a date: a purchase (positive
// delta) or an executed sale (negative delta).
type shareEvent struct {
	on       date.Date
	delta    Quantity
	invested float64 // acquisition cost added on that date
	proceeds float64 // sale proceeds received on that date
	reason   string
}

// Reconstruct derives the value-over-time series for one currency from the
// built reference points, the executed transactions, and that currency's
// historical close series. Acquisition costs are taken from each point's
// pre-computed price in the target currency; sale proceeds are converted
// with the rates in effect on the sale date.
func Reconstruct(points []*ReferencePoint, txs []TransactionEntry, prices *date.Series, currency string, rates *RateHistory) []TimelinePoint {
	if prices == nil || prices.Len() == 0 {
		return nil
	}

	events := collectEvents(points, txs, currency, rates)

	var marker *ReferencePoint
	for _, pt := range points {
		if pt.Kind == AsOfPoint {
			marker = pt
		}
	}

	timeline := make([]TimelinePoint, 0, prices.Len())
	var shares Quantity
	var invested, proceeds float64
	next := 0 // next unconsumed event

	for on, price := range prices.Values() {
		var reasons []string
		hasTx := false
		for next < len(events) && !events[next].on.After(on) {
			e := events[next]
			shares = shares.Add(e.delta)
			invested += e.invested
			proceeds += e.proceeds
			if e.on == on {
				reasons = append(reasons, e.reason)
				hasTx = true
			}
			next++
		}

		tp := TimelinePoint{
			Date:           on,
			Shares:         shares,
			Price:          price,
			Value:          shares.AsFloat() * price,
			Reason:         strings.Join(reasons, "; "),
			HasTransaction: hasTx,
		}
		tp.ProfitLoss = tp.Value + proceeds - invested
		if marker != nil && marker.Date == on {
			if mp, ok := marker.Price(currency); ok && mp != price {
				tp.MarkerPrice, tp.HasMarker = mp, true
			}
		}
		timeline = append(timeline, tp)
	}
	return timeline
}

// Synthesize builds a flat-line fallback timeline directly from the
// reference points when no historical price series exists: one sample per
// point date, holding the price flat between points. Consumers still get a
// valid, monotonically dated series.
func Synthesize(points []*ReferencePoint, currency string) []TimelinePoint {
	byDate := make(map[date.Date]float64)
	var days []date.Date
	for _, pt := range points {
		price, ok := pt.Price(currency)
		if !ok {
			continue
		}
		if _, seen := byDate[pt.Date]; !seen {
			days = append(days, pt.Date)
		}
		byDate[pt.Date] = price // last point of the day wins
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	events := collectEvents(points, nil, currency, nil)

	timeline := make([]TimelinePoint, 0, len(days))
	var shares Quantity
	var invested float64
	next := 0

	for _, on := range days {
		var reasons []string
		hasTx := false
		for next < len(events) && !events[next].on.After(on) {
			e := events[next]
			shares = shares.Add(e.delta)
			invested += e.invested
			if e.on == on {
				reasons = append(reasons, e.reason)
				hasTx = true
			}
			next++
		}
		price := byDate[on]
		tp := TimelinePoint{
			Date:           on,
			Shares:         shares,
			Price:          price,
			Value:          shares.AsFloat() * price,
			Reason:         strings.Join(reasons, "; "),
			HasTransaction: hasTx,
		}
		tp.ProfitLoss = tp.Value - invested
		timeline = append(timeline, tp)
	}
	return timeline
}

// collectEvents flattens purchases and executed sales into a single
// chronological event list in the target currency.
func collectEvents(points []*ReferencePoint, txs []TransactionEntry, currency string, rates *RateHistory) []shareEvent {
	var events []shareEvent
	for _, pt := range points {
		if pt.Kind != PurchasePoint {
			continue
		}
		cost := 0.0
		if price, ok := pt.Price(currency); ok {
			cost = price * pt.Allocated.AsFloat()
		}
		events = append(events, shareEvent{
			on:       pt.Date,
			delta:    pt.Allocated,
			invested: cost,
			reason:   fmt.Sprintf("%s of %s shares", pt.ContributionType, pt.Allocated),
		})
	}
	for _, tx := range txs {
		if !tx.Executed() {
			continue
		}
		proceeds := tx.Proceeds().AsFloat()
		if rates != nil {
			if v, ok := rates.Convert(proceeds, tx.ExecutionPrice.Currency(), currency, tx.Date); ok {
				proceeds = v
			}
		}
		events = append(events, shareEvent{
			on:       tx.Date,
			delta:    tx.Quantity.Neg(),
			proceeds: proceeds,
			reason:   fmt.Sprintf("%s of %s shares", tx.OrderType, tx.Quantity),
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].on.Before(events[j].on) })
	return events
}

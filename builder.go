package shareplan

import (
	"fmt"
	"sort"

	"github.com/etnz/shareplan/date"
)

// Build normalizes a parsed portfolio into the flat list of reference points
// every other component reads. It runs once per portfolio load:
//
//   - one purchase point per allocation row, categorized at ingestion,
//   - exactly one as-of point for the portfolio's valuation snapshot,
//   - per-currency prices pre-computed through the FX rate history,
//   - outstanding quantities reduced by executed sales, earliest lots first.
//
// Non-fatal data-quality issues (classification gaps) are returned as
// diagnostics. A sale exceeding the shares outstanding at its date is a
// structural problem and fails the whole build with an OversellError.
func Build(p Portfolio, rates *RateHistory) ([]*ReferencePoint, Diagnostics, error) {
	var diags Diagnostics

	points := make([]*ReferencePoint, 0, len(p.Entries)+1)
	for _, e := range p.Entries {
		cat := Categorize(e.Plan, e.ContributionType)
		if cat == Uncategorized {
			diags.add(ClassificationGap, e.AllocationDate, e.Plan,
				"no category for contribution type %q on plan %q", e.ContributionType, e.Plan)
		}
		points = append(points, &ReferencePoint{
			Date:             e.AllocationDate,
			Kind:             PurchasePoint,
			Category:         cat,
			Plan:             e.Plan,
			ContributionType: e.ContributionType,
			CostBasis:        e.CostBasis,
			Allocated:        e.Quantity,
			Outstanding:      e.Quantity,
			Available:        e.Available,
			AvailableFrom:    e.AvailableFrom,
			Prices:           pricesByCurrency(e.CostBasis, e.AllocationDate, rates),
		})
	}

	if !p.AsOfDate.IsZero() {
		points = append(points, &ReferencePoint{
			Date:      p.AsOfDate,
			Kind:      AsOfPoint,
			CostBasis: p.MarketPrice,
			Prices:    pricesByCurrency(p.MarketPrice, p.AsOfDate, rates),
		})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	if err := applySales(points, p.Transactions); err != nil {
		return nil, diags, err
	}

	// A lot cannot have more shares unlocked than it has left.
	for _, pt := range points {
		if pt.Available.GreaterThan(pt.Outstanding) {
			pt.Available = pt.Outstanding
		}
	}

	return points, diags, nil
}

// pricesByCurrency converts a per-share price into every currency the rate
// table knows, using the nearest rate at or before the given day. Currencies
// with no usable rate are left out of the map: absence means "not
// convertible", and callers must tolerate it.
func pricesByCurrency(price Money, on date.Date, rates *RateHistory) map[string]float64 {
	out := make(map[string]float64)
	if price.Currency() == "" {
		return out
	}
	out[price.Currency()] = price.AsFloat()
	for _, cur := range rates.Currencies() {
		if cur == price.Currency() {
			continue
		}
		if v, ok := rates.Convert(price.AsFloat(), price.Currency(), cur, on); ok {
			out[cur] = v
		}
	}
	return out
}

// applySales walks the executed sell and transfer transactions in date order
// and consumes outstanding shares from the earliest still-outstanding lots
// first (FIFO). A sale may partially consume a lot. Lock-up status is
// deliberately ignored when picking lots; see the design notes.
func applySales(points []*ReferencePoint, txs []TransactionEntry) error {
	executed := make([]TransactionEntry, 0, len(txs))
	for _, tx := range txs {
		if tx.Executed() {
			executed = append(executed, tx)
		}
	}
	sort.SliceStable(executed, func(i, j int) bool { return executed[i].Date.Before(executed[j].Date) })

	for _, tx := range executed {
		remaining := tx.Quantity
		for _, pt := range points {
			if pt.Kind != PurchasePoint || pt.Date.After(tx.Date) {
				continue
			}
			if remaining.IsZero() {
				break
			}
			if pt.Outstanding.IsZero() {
				continue
			}
			if pt.Outstanding.GreaterThan(remaining) {
				// partial sale from this lot
				pt.Outstanding = pt.Outstanding.Sub(remaining)
				remaining = Q(0)
				break
			}
			// full sale of this lot
			remaining = remaining.Sub(pt.Outstanding)
			pt.Outstanding = Q(0)
		}
		if remaining.IsPositive() {
			return &OversellError{
				Date:        tx.Date,
				Sold:        tx.Quantity,
				Outstanding: tx.Quantity.Sub(remaining),
			}
		}
	}
	return nil
}

// AsOfPointOf returns the single as-of point of a built portfolio, or an
// error when none or several exist.
func AsOfPointOf(points []*ReferencePoint) (*ReferencePoint, error) {
	var found *ReferencePoint
	for _, pt := range points {
		if pt.Kind != AsOfPoint {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("portfolio has more than one as-of point (%s and %s)", found.Date, pt.Date)
		}
		found = pt
	}
	if found == nil {
		return nil, &MissingDataError{What: "as-of point"}
	}
	return found, nil
}

package shareplan

import (
	"github.com/etnz/shareplan/date"
)

// PointKind discriminates the two kinds of reference points.
type PointKind int

const (
	// PurchasePoint is a dated share acquisition lot.
	PurchasePoint PointKind = iota
	// AsOfPoint is the portfolio's valuation snapshot marker. Exactly one
	// exists per built portfolio.
	AsOfPoint
)

func (k PointKind) String() string {
	if k == AsOfPoint {
		return "asOfDate"
	}
	return "purchase"
}

// ReferencePoint is a dated, typed record of either a share acquisition or
// the portfolio's as-of-date snapshot, carrying pre-computed per-currency
// prices. Points are built once per portfolio load and owned by the engine;
// only ChangeCurrency mutates them afterwards, by repointing Current.
type ReferencePoint struct {
	Date             date.Date
	Kind             PointKind
	Category         Category
	Plan             string
	ContributionType string

	CostBasis Money // price per share at acquisition, original currency

	Allocated     Quantity // shares originally granted or purchased in this lot
	Outstanding   Quantity // shares from this lot not yet sold
	Available     Quantity // subset of outstanding currently unlocked
	AvailableFrom date.Date

	// Prices maps currency code → this point's price per share in that
	// currency, pre-computed at build time. A currency with no FX data on
	// or before the point's date is absent from the map.
	Prices map[string]float64

	// Current is the active currency view: the point's price in the
	// currency last selected by ChangeCurrency. Zero when the active
	// currency is absent from Prices.
	Current Money
}

// Price returns the point's price in the given currency.
func (p *ReferencePoint) Price(currency string) (float64, bool) {
	v, ok := p.Prices[currency]
	return v, ok
}

// Blocked returns the shares outstanding but not yet unlocked for sale.
func (p *ReferencePoint) Blocked() Quantity {
	blocked := p.Outstanding.Sub(p.Available)
	if blocked.IsNegative() {
		return Q(0)
	}
	return blocked
}

// Invested returns the acquisition cost of the whole lot, including shares
// sold since. Investment figures are never reduced by later sales.
func (p *ReferencePoint) Invested() Money {
	return p.CostBasis.Mul(p.Allocated)
}

// Portfolio groups the inputs the file-parsing collaborator hands over:
// allocation rows, transaction rows, and the file's own valuation snapshot.
type Portfolio struct {
	Entries      []AllocationEntry
	Transactions []TransactionEntry
	AsOfDate     date.Date
	MarketPrice  Money // per-share price reported at AsOfDate, in the detected currency
}

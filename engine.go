package shareplan

import (
	"context"
	"fmt"
	"log"

	"github.com/etnz/shareplan/date"
)

// PriceStore is the persistence collaborator for historical closes. The
// engine only talks to it while loading; every computation afterwards is
// pure and synchronous.
type PriceStore interface {
	// LoadPrices returns the instrument's full historical price table.
	LoadPrices(ctx context.Context) (*PriceHistory, error)
	// SaveAsOf appends or merges one as-of observation into the stored
	// series. Re-saving the same date and price must be a no-op; a
	// differing price at the same date is an update.
	SaveAsOf(ctx context.Context, on date.Date, currency string, price float64) error
}

// RateStore is the persistence collaborator for exchange-rate history.
type RateStore interface {
	LoadRates(ctx context.Context) (*RateHistory, error)
}

// Engine owns the built reference points and the computed-result cache of
// one portfolio. Construct it with its collaborators, load a parsed
// portfolio once, then query; currency switching and manual overrides only
// invalidate the cache, they never redo I/O or rebuild points.
//
// The engine is single-threaded: callers must not share one Engine across
// goroutines, and must treat the slices it exposes as read-only.
type Engine struct {
	priceStore PriceStore
	rateStore  RateStore

	portfolio Portfolio
	points    []*ReferencePoint
	prices    *PriceHistory
	rates     *RateHistory

	currency   string
	override   float64
	overrideOn date.Date

	calc    *Calculations // cached result, nil when stale
	diags   Diagnostics   // build-time issues, fixed for the portfolio's lifetime
	fxDiags Diagnostics   // FX gaps of the active currency, replaced on switch
}

// NewEngine creates an engine wired to its persistence collaborators.
func NewEngine(prices PriceStore, rates RateStore) *Engine {
	return &Engine{priceStore: prices, rateStore: rates}
}

// Load ingests a parsed portfolio: it awaits both stores, builds the
// reference points, merges the portfolio's as-of observation back into the
// stored series, and activates the portfolio's detected currency. This is
// the only suspension point; everything after it is pure arithmetic.
func (e *Engine) Load(ctx context.Context, p Portfolio) error {
	rates, err := e.rateStore.LoadRates(ctx)
	if err != nil {
		return fmt.Errorf("loading exchange rates: %w", err)
	}
	prices, err := e.priceStore.LoadPrices(ctx)
	if err != nil {
		return fmt.Errorf("loading price history: %w", err)
	}

	points, diags, err := Build(p, rates)
	if err != nil {
		return err
	}
	for _, d := range diags {
		log.Printf("warning: %s", d)
	}

	e.portfolio = p
	e.points = points
	e.prices = prices
	e.rates = rates
	e.diags = diags
	e.calc = nil

	if !p.AsOfDate.IsZero() && p.MarketPrice.IsPositive() {
		cur := p.MarketPrice.Currency()
		stored := false
		if s := prices.Series(cur); s != nil {
			_, stored = s.Get(p.AsOfDate)
		}
		// A stored close on the as-of date keeps driving timelines and
		// valuations; the reported price then only survives as the as-of
		// point's marker. Merge the observation only where the series has
		// none.
		if !stored {
			prices.Append(p.AsOfDate, cur, p.MarketPrice.AsFloat())
			if err := e.priceStore.SaveAsOf(ctx, p.AsOfDate, cur, p.MarketPrice.AsFloat()); err != nil {
				return fmt.Errorf("persisting as-of price: %w", err)
			}
		}
	}

	currency := p.MarketPrice.Currency()
	if currency == "" {
		if available := AvailableCurrencies(points); len(available) > 0 {
			currency = available[0]
		}
	}
	return e.SetCurrency(currency)
}

// Currency returns the active currency code.
func (e *Engine) Currency() string { return e.currency }

// SetCurrency switches the active currency view. It repoints the in-memory
// prices and invalidates the result cache; it performs no I/O, which is what
// makes it cheap enough for an interactive selector.
func (e *Engine) SetCurrency(currency string) error {
	if currency == "" {
		return &MissingDataError{What: "currency"}
	}
	fxDiags := ChangeCurrency(e.points, currency)
	for _, d := range fxDiags {
		log.Printf("warning: %s", d)
	}
	e.fxDiags = fxDiags
	e.currency = currency
	e.calc = nil
	return nil
}

// AvailableCurrencies lists the currencies every purchase point is priced in.
func (e *Engine) AvailableCurrencies() []string {
	return AvailableCurrencies(e.points)
}

// SetOverride installs a manual valuation price, taking precedence over the
// historical and as-of prices. A zero price clears the override.
func (e *Engine) SetOverride(price float64, on date.Date) {
	e.override = price
	e.overrideOn = on
	e.calc = nil
}

// Points exposes the engine-owned reference points. Callers must treat the
// returned slice and the points as read-only.
func (e *Engine) Points() []*ReferencePoint { return e.points }

// Diagnostics returns the portfolio's build-time issues plus the FX gaps of
// the active currency. Switching currencies replaces the FX part instead of
// accumulating it.
func (e *Engine) Diagnostics() Diagnostics {
	out := make(Diagnostics, 0, len(e.diags)+len(e.fxDiags))
	out = append(out, e.diags...)
	return append(out, e.fxDiags...)
}

// Calculations computes (or returns the cached) aggregate result for the
// active currency and price.
func (e *Engine) Calculations() (*Calculations, error) {
	if e.calc != nil {
		return e.calc, nil
	}
	price := SelectPrice(e.override, e.overrideOn, e.prices, e.points, e.currency)
	calc, err := Calculate(e.points, e.portfolio.Transactions, price, e.rates)
	if err != nil {
		return nil, err
	}
	e.calc = calc
	return calc, nil
}

// CashFlows returns the dated cash flows behind the annualized return
// figures, in the active currency.
func (e *Engine) CashFlows(userOnly bool) []CashFlow {
	price := SelectPrice(e.override, e.overrideOn, e.prices, e.points, e.currency)
	return CashFlows(e.points, e.portfolio.Transactions, price, e.currency, e.rates, userOnly)
}

// Timeline reconstructs the value-over-time series for the active currency,
// falling back to the flat-line synthetic series when no historical prices
// exist in that currency.
func (e *Engine) Timeline() []TimelinePoint {
	series := e.prices.Series(e.currency)
	if series == nil || series.Len() == 0 {
		return Synthesize(e.points, e.currency)
	}
	return Reconstruct(e.points, e.portfolio.Transactions, series, e.currency, e.rates)
}

package shareplan

import (
	"log"

	"github.com/etnz/shareplan/date"
)

// PriceSource identifies which price drives the current valuation.
type PriceSource int

const (
	// SourceNone means no usable price was found.
	SourceNone PriceSource = iota
	// SourceManual is a user-entered override price.
	SourceManual
	// SourceHistorical is the latest close from the historical series.
	SourceHistorical
	// SourceAsOf is the portfolio file's own as-of snapshot price.
	SourceAsOf
)

func (s PriceSource) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceHistorical:
		return "historical"
	case SourceAsOf:
		return "asOfDate"
	default:
		return "none"
	}
}

// CurrentPrice is the active valuation price: its value, where it came from,
// its date and its currency.
type CurrentPrice struct {
	Price    float64
	Source   PriceSource
	Date     date.Date
	Currency string
}

// BreakdownRow is one flat audit row of a metric table.
type BreakdownRow struct {
	Date     date.Date
	Label    string
	Quantity Quantity
	Price    float64
	Amount   float64
}

// Breakdown is the audit table behind one headline metric: its flat rows
// plus one synthetic "Total" row, all in the table's currency. These tables
// are the contract surface for charting and export code, so they carry raw
// values only, no display formatting.
type Breakdown struct {
	Metric   string
	Currency string
	Rows     []BreakdownRow
}

// total appends the synthetic Total row, summing amounts and quantities.
func (b *Breakdown) total() {
	var qty Quantity
	var amount float64
	for _, r := range b.Rows {
		qty = qty.Add(r.Quantity)
		amount += r.Amount
	}
	b.Rows = append(b.Rows, BreakdownRow{Label: "Total", Quantity: qty, Amount: amount})
}

// Calculations is the aggregated output of one Calculate call. Each call
// produces a fresh value; results are never partially mutated.
type Calculations struct {
	// Invested amounts per category. Investment figures include shares sold
	// since; they are never reduced by later sales.
	UserInvestment  Money
	CompanyMatch    Money
	FreeShares      Money
	DividendIncome  Money
	TotalInvestment Money

	TotalSold    Money // proceeds of executed sales and transfers
	CurrentValue Money // outstanding shares at the current price
	TotalValue   Money // CurrentValue + TotalSold

	TotalReturn             Money // TotalValue − UserInvestment
	ReturnPercentage        Percent
	ReturnOnTotalInvestment Money // TotalValue − TotalInvestment
	ReturnOnTotalPercentage Percent

	XIRRUserInvestment  Percent
	XIRRTotalInvestment Percent

	AvailableShares Quantity
	BlockedShares   Quantity
	BlockedByYear   map[int]Quantity // unlock year → blocked shares, 0 = unknown

	CurrentPrice CurrentPrice
	Currency     string

	Breakdowns  map[string]*Breakdown
	Diagnostics Diagnostics
}

// Calculate aggregates the built reference points and transactions into the
// headline totals under the given current price. Points priced in another
// currency than the active one (zero Current) are excluded from sums and
// recorded as diagnostics; the computation continues with what is available.
//
// It fails with a MissingDataError when there are no reference points or no
// usable current price: callers must not show stale results in that case.
func Calculate(points []*ReferencePoint, txs []TransactionEntry, price CurrentPrice, rates *RateHistory) (*Calculations, error) {
	if len(points) == 0 {
		return nil, &MissingDataError{What: "reference points"}
	}
	if price.Source == SourceNone || price.Price <= 0 {
		return nil, &MissingDataError{What: "current price"}
	}

	cur := price.Currency
	c := &Calculations{
		UserInvestment:  M(0, cur),
		CompanyMatch:    M(0, cur),
		FreeShares:      M(0, cur),
		DividendIncome:  M(0, cur),
		TotalSold:       M(0, cur),
		CurrentValue:    M(0, cur),
		BlockedByYear:   make(map[int]Quantity),
		CurrentPrice:    price,
		Currency:        cur,
		Breakdowns:      make(map[string]*Breakdown),
	}

	categoryBreakdowns := make(map[Category]*Breakdown)
	for _, cat := range Categories {
		categoryBreakdowns[cat] = &Breakdown{Metric: cat.String(), Currency: cur}
	}
	valueTable := &Breakdown{Metric: "current value", Currency: cur}
	soldTable := &Breakdown{Metric: "total sold", Currency: cur}

	for _, pt := range points {
		if pt.Kind != PurchasePoint {
			continue
		}

		pointPrice, priced := pt.Price(cur)
		if !priced {
			c.Diagnostics.add(FxUnavailable, pt.Date, cur,
				"point of %s excluded from %s sums", pt.Date, cur)
		}

		if pt.Category != Uncategorized && priced {
			invested := M(pointPrice, cur).Mul(pt.Allocated)
			switch pt.Category {
			case UserInvestment:
				c.UserInvestment = c.UserInvestment.Add(invested)
			case CompanyMatch:
				c.CompanyMatch = c.CompanyMatch.Add(invested)
			case FreeShares:
				c.FreeShares = c.FreeShares.Add(invested)
			case DividendIncome:
				c.DividendIncome = c.DividendIncome.Add(invested)
			}
			bd := categoryBreakdowns[pt.Category]
			bd.Rows = append(bd.Rows, BreakdownRow{
				Date:     pt.Date,
				Label:    pt.Plan,
				Quantity: pt.Allocated,
				Price:    pointPrice,
				Amount:   invested.AsFloat(),
			})
		}

		if pt.Outstanding.IsPositive() {
			value := M(price.Price, cur).Mul(pt.Outstanding)
			c.CurrentValue = c.CurrentValue.Add(value)
			valueTable.Rows = append(valueTable.Rows, BreakdownRow{
				Date:     pt.Date,
				Label:    pt.Plan,
				Quantity: pt.Outstanding,
				Price:    price.Price,
				Amount:   value.AsFloat(),
			})
		}

		c.AvailableShares = c.AvailableShares.Add(pt.Available)
		if blocked := pt.Blocked(); blocked.IsPositive() {
			c.BlockedShares = c.BlockedShares.Add(blocked)
			year := 0 // unknown unlock year
			if !pt.AvailableFrom.IsZero() {
				year = pt.AvailableFrom.Year()
			}
			c.BlockedByYear[year] = c.BlockedByYear[year].Add(blocked)
		}
	}

	for _, tx := range txs {
		if !tx.Executed() {
			continue
		}
		proceeds := tx.Proceeds().AsFloat()
		if converted, ok := rates.Convert(proceeds, tx.ExecutionPrice.Currency(), cur, tx.Date); ok {
			proceeds = converted
		} else if tx.ExecutionPrice.Currency() != cur {
			log.Printf("no %s rate for sale of %s, keeping %s proceeds",
				cur, tx.Date, tx.ExecutionPrice.Currency())
		}
		c.TotalSold = c.TotalSold.Add(M(proceeds, cur))
		soldTable.Rows = append(soldTable.Rows, BreakdownRow{
			Date:     tx.Date,
			Label:    tx.OrderType.String(),
			Quantity: tx.Quantity,
			Price:    tx.ExecutionPrice.AsFloat(),
			Amount:   proceeds,
		})
	}

	c.TotalInvestment = c.UserInvestment.Add(c.CompanyMatch).Add(c.FreeShares).Add(c.DividendIncome)
	c.TotalValue = c.CurrentValue.Add(c.TotalSold)
	c.TotalReturn = c.TotalValue.Sub(c.UserInvestment)
	c.ReturnPercentage = ratio(c.TotalReturn, c.UserInvestment)
	c.ReturnOnTotalInvestment = c.TotalValue.Sub(c.TotalInvestment)
	c.ReturnOnTotalPercentage = ratio(c.ReturnOnTotalInvestment, c.TotalInvestment)

	c.XIRRUserInvestment = xirrOf(points, txs, price, cur, rates, true)
	c.XIRRTotalInvestment = xirrOf(points, txs, price, cur, rates, false)

	for _, cat := range Categories {
		bd := categoryBreakdowns[cat]
		bd.total()
		c.Breakdowns[bd.Metric] = bd
	}
	valueTable.total()
	soldTable.total()
	c.Breakdowns[valueTable.Metric] = valueTable
	c.Breakdowns[soldTable.Metric] = soldTable

	return c, nil
}

// ratio returns part/whole as a Percent, and 0 when the denominator is zero.
// Never NaN, never Inf.
func ratio(part, whole Money) Percent {
	w := whole.AsFloat()
	if w == 0 {
		return 0
	}
	return Percent(100 * part.AsFloat() / w)
}

// SelectPrice picks the active valuation price following the fixed priority:
// manual override, then latest historical close, then the as-of snapshot.
func SelectPrice(override float64, overrideOn date.Date, prices *PriceHistory, points []*ReferencePoint, currency string) CurrentPrice {
	if override > 0 {
		on := overrideOn
		if on.IsZero() {
			on = date.Today()
		}
		return CurrentPrice{Price: override, Source: SourceManual, Date: on, Currency: currency}
	}
	if on, price, ok := prices.Latest(currency); ok {
		return CurrentPrice{Price: price, Source: SourceHistorical, Date: on, Currency: currency}
	}
	for _, pt := range points {
		if pt.Kind != AsOfPoint {
			continue
		}
		if price, ok := pt.Price(currency); ok {
			return CurrentPrice{Price: price, Source: SourceAsOf, Date: pt.Date, Currency: currency}
		}
	}
	return CurrentPrice{Currency: currency}
}

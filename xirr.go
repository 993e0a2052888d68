package shareplan

import (
	"fmt"
	"math"
	"sort"

	"github.com/etnz/shareplan/date"
)

// CashFlow is one signed flow for the XIRR computation: negative amounts are
// money out (purchases, contributions), positive amounts money in (sale
// proceeds, and the current portfolio value as the final synthetic inflow).
type CashFlow struct {
	Date        date.Date
	Amount      float64
	Description string
}

const (
	xirrMaxIterations = 100
	xirrTolerance     = 1e-6
	xirrMinRate       = -0.99
	xirrMaxRate       = 10.0
	daysPerYear       = 365.25
)

// XIRR solves for the annualized internal rate of return of a set of
// irregularly dated cash flows, as a percentage. It is a pure function.
//
// The primary solver is Newton-Raphson on NPV(rate) with an analytic
// derivative, starting at 10% and clamped to (−0.99, 10) each step. When the
// derivative underflows before convergence, a closed-form approximation
// (totalInflow/totalOutflow)^(1/years) − 1 takes over; non-convergence is
// always recovered internally, never surfaced as an error.
func XIRR(flows []CashFlow) Percent {
	if len(flows) < 2 {
		return 0
	}
	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	first := sorted[0].Date
	years := make([]float64, len(sorted))
	for i, f := range sorted {
		years[i] = f.Date.Time().Sub(first.Time()).Hours() / 24 / daysPerYear
	}

	hasOut, hasIn := false, false
	for _, f := range sorted {
		if f.Amount < 0 {
			hasOut = true
		}
		if f.Amount > 0 {
			hasIn = true
		}
	}
	if !hasOut || !hasIn {
		return 0
	}

	rate := 0.1
	for iter := 0; iter < xirrMaxIterations; iter++ {
		npv := 0.0
		dnpv := 0.0
		for i, f := range sorted {
			discount := math.Pow(1+rate, years[i])
			if discount == 0 {
				continue
			}
			npv += f.Amount / discount
			if years[i] != 0 {
				dnpv -= years[i] * f.Amount / (discount * (1 + rate))
			}
		}
		if math.Abs(npv) < xirrTolerance {
			return Percent(rate * 100)
		}
		if dnpv == 0 {
			break // derivative underflow, hand over to the approximation
		}
		rate -= npv / dnpv
		if rate < xirrMinRate {
			rate = xirrMinRate
		}
		if rate > xirrMaxRate {
			rate = xirrMaxRate
		}
	}
	return approximateRate(sorted, years)
}

// approximateRate is the closed-form fallback: the annualized ratio of total
// inflows to total outflows over the elapsed years. It returns 0 when either
// total is not positive or no time elapsed.
func approximateRate(flows []CashFlow, years []float64) Percent {
	var in, out float64
	for _, f := range flows {
		if f.Amount < 0 {
			out -= f.Amount
		} else {
			in += f.Amount
		}
	}
	elapsed := years[len(years)-1]
	if in <= 0 || out <= 0 || elapsed <= 0 {
		return 0
	}
	return Percent((math.Pow(in/out, 1/elapsed) - 1) * 100)
}

// CashFlows builds the signed flow series for the XIRR computation in the
// given currency: one outflow per purchase (user-only or all contribution
// types), one inflow per executed sale, and the current portfolio value as a
// final synthetic inflow dated at the valuation price's date.
func CashFlows(points []*ReferencePoint, txs []TransactionEntry, price CurrentPrice, currency string, rates *RateHistory, userOnly bool) []CashFlow {
	var flows []CashFlow
	var outstanding Quantity

	for _, pt := range points {
		if pt.Kind != PurchasePoint || pt.Category == Uncategorized {
			continue
		}
		if userOnly && pt.Category != UserInvestment {
			continue
		}
		pointPrice, ok := pt.Price(currency)
		if !ok {
			continue
		}
		flows = append(flows, CashFlow{
			Date:        pt.Date,
			Amount:      -pointPrice * pt.Allocated.AsFloat(),
			Description: fmt.Sprintf("%s of %s shares", pt.ContributionType, pt.Allocated),
		})
	}

	for _, pt := range points {
		if pt.Kind == PurchasePoint {
			outstanding = outstanding.Add(pt.Outstanding)
		}
	}

	for _, tx := range txs {
		if !tx.Executed() {
			continue
		}
		proceeds := tx.Proceeds().AsFloat()
		if converted, ok := rates.Convert(proceeds, tx.ExecutionPrice.Currency(), currency, tx.Date); ok {
			proceeds = converted
		}
		flows = append(flows, CashFlow{
			Date:        tx.Date,
			Amount:      proceeds,
			Description: fmt.Sprintf("%s of %s shares", tx.OrderType, tx.Quantity),
		})
	}

	on := price.Date
	if on.IsZero() {
		on = date.Today()
	}
	flows = append(flows, CashFlow{
		Date:        on,
		Amount:      price.Price * outstanding.AsFloat(),
		Description: "current portfolio value",
	})
	return flows
}

// xirrOf is the convenience used by Calculate for its two solver runs.
func xirrOf(points []*ReferencePoint, txs []TransactionEntry, price CurrentPrice, currency string, rates *RateHistory, userOnly bool) Percent {
	return XIRR(CashFlows(points, txs, price, currency, rates, userOnly))
}

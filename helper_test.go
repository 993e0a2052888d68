package shareplan

import (
	"math"
	"testing"
	"time"

	"github.com/etnz/shareplan/date"
)

// EUR is a helper for tests to create euro money from const.
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for tests to create usd money from const.
func USD(v float64) Money { return M(v, "USD") }

func on(y int, m time.Month, d int) date.Date { return date.New(y, m, d) }

// mustDay parses a day literal, failing the test on a typo.
func mustDay(t *testing.T, s string) date.Date {
	t.Helper()
	d, err := date.Parse(s)
	if err != nil {
		t.Fatalf("bad day literal %q: %v", s, err)
	}
	return d
}

// almostEqual compares floats within tolerance.
func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// purchase builds an allocation row of the employee purchase category.
func purchase(t *testing.T, on date.Date, qty, costBasis float64) AllocationEntry {
	t.Helper()
	return AllocationEntry{
		Plan:             "Employee Share Purchase Plan 2020",
		ContributionType: "Purchase",
		AllocationDate:   on,
		CostBasis:        EUR(costBasis),
		Quantity:         Q(qty),
		Available:        Q(qty),
	}
}

// match builds a company-match allocation row.
func match(t *testing.T, on date.Date, qty, costBasis float64) AllocationEntry {
	t.Helper()
	return AllocationEntry{
		Plan:             "Employee Share Purchase Plan 2020",
		ContributionType: "Company match",
		AllocationDate:   on,
		CostBasis:        EUR(costBasis),
		Quantity:         Q(qty),
		Available:        Q(qty),
	}
}

// sale builds an executed market sale.
func sale(t *testing.T, on date.Date, qty, price float64) TransactionEntry {
	t.Helper()
	return TransactionEntry{
		Date:           on,
		OrderType:      OrderSellMarket,
		Status:         StatusExecuted,
		Quantity:       Q(qty),
		ExecutionPrice: EUR(price),
	}
}

// buildPoints runs Build and fails the test on any error.
func buildPoints(t *testing.T, p Portfolio, rates *RateHistory) []*ReferencePoint {
	t.Helper()
	points, _, err := Build(p, rates)
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	return points
}

// eurUsdRates builds a rate table with a single EURUSD observation.
func eurUsdRates(on date.Date, rate float64) *RateHistory {
	r := NewRateHistory("EUR")
	r.Append(on, "USD", rate)
	return r
}

package shareplan

import (
	"errors"
	"testing"
	"time"
)

func TestBuild_EmitsOnePointPerAllocationPlusAsOf(t *testing.T) {
	p := Portfolio{
		Entries: []AllocationEntry{
			purchase(t, on(2020, time.January, 1), 100, 10),
			match(t, on(2020, time.June, 1), 10, 12),
		},
		AsOfDate:    on(2021, time.January, 1),
		MarketPrice: EUR(15),
	}
	points := buildPoints(t, p, NewRateHistory("EUR"))

	if len(points) != 3 {
		t.Fatalf("Build() returned %d points, want 3", len(points))
	}
	asOf, err := AsOfPointOf(points)
	if err != nil {
		t.Fatalf("AsOfPointOf() returned unexpected error: %v", err)
	}
	if asOf.Date != p.AsOfDate {
		t.Errorf("as-of point date = %v, want %v", asOf.Date, p.AsOfDate)
	}
	if got, ok := asOf.Price("EUR"); !ok || got != 15 {
		t.Errorf("as-of point EUR price = %v (%v), want 15", got, ok)
	}
}

func TestBuild_CategorizesAtIngestion(t *testing.T) {
	testCases := []struct {
		name             string
		plan             string
		contributionType string
		want             Category
	}{
		{"employee purchase", "Employee Share Purchase Plan 2020", "Purchase", UserInvestment},
		{"company match", "Employee Share Purchase Plan 2020", "Company match", CompanyMatch},
		{"free share award", "Free Share Plan 2021", "Award", FreeShares},
		{"dividend reinvestment", "Dividend Reinvestment Plan", "Purchase", DividendIncome},
		{"unknown combination", "Mystery Plan", "Bonus", Uncategorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Categorize(tc.plan, tc.contributionType); got != tc.want {
				t.Errorf("Categorize(%q, %q) = %v, want %v", tc.plan, tc.contributionType, got, tc.want)
			}
		})
	}
}

func TestBuild_ClassificationGapIsDiagnosedNotDropped(t *testing.T) {
	p := Portfolio{
		Entries: []AllocationEntry{{
			Plan:             "Mystery Plan",
			ContributionType: "Bonus",
			AllocationDate:   on(2020, time.January, 1),
			CostBasis:        EUR(10),
			Quantity:         Q(5),
		}},
	}
	points, diags, err := Build(p, NewRateHistory("EUR"))
	if err != nil {
		t.Fatalf("Build() returned unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("Build() returned %d points, want 1 (gap must not drop the point)", len(points))
	}
	if points[0].Category != Uncategorized {
		t.Errorf("category = %v, want Uncategorized", points[0].Category)
	}
	found := false
	for _, d := range diags {
		if d.Kind == ClassificationGap {
			found = true
		}
	}
	if !found {
		t.Error("Build() did not record a ClassificationGap diagnostic")
	}
}

func TestBuild_FIFOSalesAcrossLots(t *testing.T) {
	p := Portfolio{
		Entries: []AllocationEntry{
			purchase(t, on(2020, time.January, 1), 100, 10),
			purchase(t, on(2020, time.June, 1), 50, 12),
		},
		Transactions: []TransactionEntry{
			// consumes the whole first lot and part of the second
			sale(t, on(2021, time.January, 1), 120, 20),
		},
	}
	points := buildPoints(t, p, NewRateHistory("EUR"))

	if got := points[0].Outstanding; !got.IsZero() {
		t.Errorf("first lot outstanding = %v, want 0", got)
	}
	if got, want := points[1].Outstanding, Q(30); !got.Equal(want) {
		t.Errorf("second lot outstanding = %v, want %v", got, want)
	}
}

func TestBuild_PartialSaleOfSingleLot(t *testing.T) {
	// 100 bought, 40 sold, 60 outstanding.
	p := Portfolio{
		Entries:      []AllocationEntry{purchase(t, on(2020, time.January, 1), 100, 10)},
		Transactions: []TransactionEntry{sale(t, on(2021, time.January, 1), 40, 20)},
	}
	points := buildPoints(t, p, NewRateHistory("EUR"))
	if got, want := points[0].Outstanding, Q(60); !got.Equal(want) {
		t.Errorf("outstanding = %v, want %v", got, want)
	}
}

func TestBuild_NonExecutedAndNonSellOrdersAreIgnored(t *testing.T) {
	p := Portfolio{
		Entries: []AllocationEntry{purchase(t, on(2020, time.January, 1), 100, 10)},
		Transactions: []TransactionEntry{
			{Date: on(2021, time.January, 1), OrderType: OrderSell, Status: "Cancelled", Quantity: Q(40), ExecutionPrice: EUR(20)},
			{Date: on(2021, time.February, 1), OrderType: OrderSell, Status: "Pending", Quantity: Q(40), ExecutionPrice: EUR(20)},
		},
	}
	points := buildPoints(t, p, NewRateHistory("EUR"))
	if got, want := points[0].Outstanding, Q(100); !got.Equal(want) {
		t.Errorf("outstanding = %v, want %v", got, want)
	}
}

func TestBuild_OversellIsRejected(t *testing.T) {
	p := Portfolio{
		Entries:      []AllocationEntry{purchase(t, on(2020, time.January, 1), 100, 10)},
		Transactions: []TransactionEntry{sale(t, on(2021, time.January, 1), 150, 20)},
	}
	_, _, err := Build(p, NewRateHistory("EUR"))
	var oversell *OversellError
	if !errors.As(err, &oversell) {
		t.Fatalf("Build() error = %v, want OversellError", err)
	}
	if oversell.Date != on(2021, time.January, 1) {
		t.Errorf("OversellError date = %v, want 2021-01-01", oversell.Date)
	}
	if !oversell.Sold.Equal(Q(150)) {
		t.Errorf("OversellError sold = %v, want 150", oversell.Sold)
	}
}

func TestBuild_SaleCannotConsumeLaterLots(t *testing.T) {
	// The sale happens before the lot is allocated, so there is nothing
	// outstanding at its date.
	p := Portfolio{
		Entries:      []AllocationEntry{purchase(t, on(2021, time.June, 1), 100, 10)},
		Transactions: []TransactionEntry{sale(t, on(2021, time.January, 1), 10, 20)},
	}
	_, _, err := Build(p, NewRateHistory("EUR"))
	var oversell *OversellError
	if !errors.As(err, &oversell) {
		t.Fatalf("Build() error = %v, want OversellError", err)
	}
}

func TestBuild_InvariantsHoldAfterSales(t *testing.T) {
	p := Portfolio{
		Entries: []AllocationEntry{
			purchase(t, on(2020, time.January, 1), 100, 10),
			purchase(t, on(2020, time.June, 1), 50, 12),
			match(t, on(2020, time.June, 1), 25, 12),
		},
		Transactions: []TransactionEntry{
			sale(t, on(2020, time.July, 1), 30, 15),
			sale(t, on(2021, time.January, 1), 110, 20),
		},
	}
	points := buildPoints(t, p, NewRateHistory("EUR"))
	for _, pt := range points {
		if pt.Outstanding.GreaterThan(pt.Allocated) {
			t.Errorf("point %s: outstanding %v > allocated %v", pt.Date, pt.Outstanding, pt.Allocated)
		}
		if pt.Available.GreaterThan(pt.Outstanding) {
			t.Errorf("point %s: available %v > outstanding %v", pt.Date, pt.Available, pt.Outstanding)
		}
		if pt.Outstanding.IsNegative() {
			t.Errorf("point %s: negative outstanding %v", pt.Date, pt.Outstanding)
		}
	}
}

func TestBuild_PricesByCurrencyUsesRateAtOrBeforeDate(t *testing.T) {
	rates := NewRateHistory("EUR")
	rates.Append(on(2019, time.December, 1), "USD", 1.10) // in effect on purchase date
	rates.Append(on(2020, time.February, 1), "USD", 1.20) // future rate, must not be used

	p := Portfolio{Entries: []AllocationEntry{purchase(t, on(2020, time.January, 1), 100, 10)}}
	points := buildPoints(t, p, rates)

	got, ok := points[0].Price("USD")
	if !ok {
		t.Fatal("USD price missing from point")
	}
	if !almostEqual(got, 11.0, 1e-9) {
		t.Errorf("USD price = %v, want 11.0 (10 × 1.10)", got)
	}
}

func TestBuild_MissingFxLeavesCurrencyAbsent(t *testing.T) {
	rates := NewRateHistory("EUR")
	rates.Append(on(2020, time.June, 1), "USD", 1.10) // only after the purchase

	p := Portfolio{Entries: []AllocationEntry{purchase(t, on(2020, time.January, 1), 100, 10)}}
	points := buildPoints(t, p, rates)

	if _, ok := points[0].Price("USD"); ok {
		t.Error("USD price present despite no rate at or before the purchase date")
	}
	if _, ok := points[0].Price("EUR"); !ok {
		t.Error("EUR (native) price missing")
	}
}

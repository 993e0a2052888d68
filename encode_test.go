package shareplan

import (
	"context"
	"strings"
	"testing"
	"time"
)

const samplePortfolio = `{"row":"allocation","plan":"Employee Share Purchase Plan 2020","contributionType":"Purchase","allocationDate":"2020-01-01","costBasis":{"currency":"EUR","amount":"10"},"quantity":"100","available":"100"}
{"row":"allocation","plan":"Employee Share Purchase Plan 2020","contributionType":"Company match","allocationDate":"2020-01-01","costBasis":{"currency":"EUR","amount":"10"},"quantity":"10","available":"0","availableFrom":"2025-01-01"}
{"row":"transaction","date":"2021-01-01","orderType":"Sell at market price","status":"Executed","quantity":"40","executionPrice":{"currency":"EUR","amount":"20"}}
{"row":"asof","date":"2021-06-01","price":{"currency":"EUR","amount":"25"}}
`

func TestDecodePortfolio(t *testing.T) {
	p, err := DecodePortfolio(strings.NewReader(samplePortfolio))
	if err != nil {
		t.Fatalf("DecodePortfolio() returned unexpected error: %v", err)
	}
	if len(p.Entries) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(p.Entries))
	}
	if len(p.Transactions) != 1 {
		t.Fatalf("decoded %d transactions, want 1", len(p.Transactions))
	}
	if p.AsOfDate != on(2021, time.June, 1) {
		t.Errorf("as-of date = %s, want 2021-06-01", p.AsOfDate)
	}
	if !p.MarketPrice.Equal(EUR(25)) {
		t.Errorf("market price = %v, want 25 EUR", p.MarketPrice)
	}

	e := p.Entries[0]
	if !e.CostBasis.Equal(EUR(10)) || !e.Quantity.Equal(Q(100)) {
		t.Errorf("first entry = %+v, want cost 10 EUR, quantity 100", e)
	}
	if !e.AvailableFrom.IsZero() {
		t.Errorf("first entry availableFrom = %s, want zero", e.AvailableFrom)
	}
	if got := p.Entries[1].AvailableFrom; got != on(2025, time.January, 1) {
		t.Errorf("second entry availableFrom = %s, want 2025-01-01", got)
	}

	tx := p.Transactions[0]
	if tx.OrderType != OrderSellMarket || tx.Status != StatusExecuted {
		t.Errorf("transaction = %+v, want executed market sale", tx)
	}
}

func TestDecodePortfolio_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // substring of the error message
	}{
		{"unknown row", `{"row":"dividend"}`, "unknown row kind"},
		{"bad json", `{"row":`, "line 1"},
		{"duplicate asof", `{"row":"asof","date":"2021-06-01","price":{"currency":"EUR","amount":"25"}}
{"row":"asof","date":"2021-07-01","price":{"currency":"EUR","amount":"26"}}`, "duplicate as-of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePortfolio(strings.NewReader(tc.in))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("DecodePortfolio() error = %v, want one containing %q", err, tc.want)
			}
		})
	}
}

func TestEncodePortfolio_RoundTrip(t *testing.T) {
	p, err := DecodePortfolio(strings.NewReader(samplePortfolio))
	if err != nil {
		t.Fatalf("DecodePortfolio() returned unexpected error: %v", err)
	}

	var sb strings.Builder
	if err := EncodePortfolio(&sb, p); err != nil {
		t.Fatalf("EncodePortfolio() returned unexpected error: %v", err)
	}
	back, err := DecodePortfolio(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("DecodePortfolio() of encoded output failed: %v", err)
	}
	if len(back.Entries) != len(p.Entries) || len(back.Transactions) != len(p.Transactions) {
		t.Fatalf("round trip lost rows: %d/%d entries, %d/%d transactions",
			len(back.Entries), len(p.Entries), len(back.Transactions), len(p.Transactions))
	}
	if back.AsOfDate != p.AsOfDate || !back.MarketPrice.Equal(p.MarketPrice) {
		t.Errorf("round trip as-of = %s %v, want %s %v", back.AsOfDate, back.MarketPrice, p.AsOfDate, p.MarketPrice)
	}
	for i := range p.Entries {
		got, want := back.Entries[i], p.Entries[i]
		if got.Plan != want.Plan || got.ContributionType != want.ContributionType ||
			got.AllocationDate != want.AllocationDate || got.AvailableFrom != want.AvailableFrom ||
			!got.CostBasis.Equal(want.CostBasis) || !got.Quantity.Equal(want.Quantity) ||
			!got.Available.Equal(want.Available) {
			t.Errorf("entry %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestFileStore_PriceRoundTrip(t *testing.T) {
	store := &FileStore{Dir: t.TempDir(), Base: "EUR"}
	ctx := context.Background()

	h := NewPriceHistory()
	h.Append(on(2020, time.January, 1), "EUR", 10)
	h.Append(on(2020, time.January, 1), "USD", 12.5)
	h.Append(on(2020, time.June, 1), "EUR", 12)
	if err := store.SavePrices(h); err != nil {
		t.Fatalf("SavePrices() returned unexpected error: %v", err)
	}

	back, err := store.LoadPrices(ctx)
	if err != nil {
		t.Fatalf("LoadPrices() returned unexpected error: %v", err)
	}
	if got, _ := back.PriceAsOf("EUR", on(2020, time.June, 1)); got != 12 {
		t.Errorf("loaded EUR price = %v, want 12", got)
	}
	if got, _ := back.PriceAsOf("USD", on(2020, time.March, 1)); got != 12.5 {
		t.Errorf("loaded USD price = %v, want 12.5", got)
	}
	// USD has no observation on 2020-06-01, only forward fill.
	if back.Series("USD").Len() != 1 {
		t.Errorf("USD series length = %d, want 1", back.Series("USD").Len())
	}
}

func TestFileStore_MissingFilesAreEmpty(t *testing.T) {
	store := &FileStore{Dir: t.TempDir(), Base: "EUR"}
	ctx := context.Background()

	h, err := store.LoadPrices(ctx)
	if err != nil {
		t.Fatalf("LoadPrices() on empty folder returned error: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("price history length = %d, want 0", h.Len())
	}
	r, err := store.LoadRates(ctx)
	if err != nil {
		t.Fatalf("LoadRates() on empty folder returned error: %v", err)
	}
	if r.Base() != "EUR" {
		t.Errorf("rate base = %q, want EUR", r.Base())
	}
}

func TestFileStore_SaveAsOfIsIdempotent(t *testing.T) {
	store := &FileStore{Dir: t.TempDir(), Base: "EUR"}
	ctx := context.Background()

	day := on(2021, time.June, 1)
	if err := store.SaveAsOf(ctx, day, "EUR", 25); err != nil {
		t.Fatalf("SaveAsOf() returned unexpected error: %v", err)
	}
	if err := store.SaveAsOf(ctx, day, "EUR", 25); err != nil {
		t.Fatalf("repeated SaveAsOf() returned unexpected error: %v", err)
	}
	h, err := store.LoadPrices(ctx)
	if err != nil {
		t.Fatalf("LoadPrices() returned unexpected error: %v", err)
	}
	if h.Series("EUR").Len() != 1 {
		t.Errorf("series length = %d, want 1 after duplicate save", h.Series("EUR").Len())
	}

	// A differing price on the same date is an update, not a new row.
	if err := store.SaveAsOf(ctx, day, "EUR", 26); err != nil {
		t.Fatalf("SaveAsOf() update returned unexpected error: %v", err)
	}
	h, _ = store.LoadPrices(ctx)
	if got, _ := h.PriceAsOf("EUR", day); got != 26 {
		t.Errorf("price after update = %v, want 26", got)
	}
	if h.Series("EUR").Len() != 1 {
		t.Errorf("series length = %d, want 1 after same-day update", h.Series("EUR").Len())
	}
}

func TestFileStore_RateRoundTrip(t *testing.T) {
	store := &FileStore{Dir: t.TempDir(), Base: "EUR"}
	ctx := context.Background()

	r := NewRateHistory("EUR")
	r.Append(on(2020, time.January, 1), "USD", 1.25)
	r.Append(on(2020, time.June, 1), "USD", 1.10)
	r.Append(on(2020, time.January, 1), "GBP", 0.85)
	if err := store.SaveRates(r); err != nil {
		t.Fatalf("SaveRates() returned unexpected error: %v", err)
	}

	back, err := store.LoadRates(ctx)
	if err != nil {
		t.Fatalf("LoadRates() returned unexpected error: %v", err)
	}
	got, ok := back.Convert(10, "EUR", "USD", on(2020, time.March, 1))
	if !ok || !almostEqual(got, 12.5, 1e-9) {
		t.Errorf("Convert() after reload = %v, %v, want 12.5, true", got, ok)
	}
	want := []string{"EUR", "GBP", "USD"}
	curs := back.Currencies()
	if len(curs) != len(want) {
		t.Fatalf("Currencies() = %v, want %v", curs, want)
	}
	for i := range want {
		if curs[i] != want[i] {
			t.Fatalf("Currencies() = %v, want %v", curs, want)
		}
	}
}

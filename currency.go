package shareplan

import "sort"

// Currency switching is the one interactive hot path: the user toggles a
// selector and every figure must follow instantly. All FX lookups happened
// once at build time, so switching only repoints each point's Current price
// to the pre-computed value. No recomputation, no I/O.

// ChangeCurrency sets the active currency view on the given points, in
// place. It is O(1) per point, safe to call repeatedly, and idempotent for
// the same currency. A point with no price in the requested currency gets a
// zero Current and is reported in the returned diagnostics; sums that read
// Current must skip such points.
func ChangeCurrency(points []*ReferencePoint, currency string) Diagnostics {
	var diags Diagnostics
	for _, pt := range points {
		price, ok := pt.Prices[currency]
		if !ok {
			pt.Current = Money{}
			diags.add(FxUnavailable, pt.Date, currency,
				"no %s price for %s point of %s", currency, pt.Kind, pt.Date)
			continue
		}
		pt.Current = M(price, currency)
	}
	return diags
}

// AvailableCurrencies returns the currency codes priced on every purchase
// point (the as-of marker alone does not make a currency available), sorted.
func AvailableCurrencies(points []*ReferencePoint) []string {
	counts := make(map[string]int)
	purchases := 0
	for _, pt := range points {
		if pt.Kind != PurchasePoint {
			continue
		}
		purchases++
		for cur := range pt.Prices {
			counts[cur]++
		}
	}
	if purchases == 0 {
		return nil
	}
	out := make([]string, 0, len(counts))
	for cur, n := range counts {
		if n == purchases {
			out = append(out, cur)
		}
	}
	sort.Strings(out)
	return out
}

package shareplan

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/etnz/shareplan/date"
)

// This file persists the engine's collaborator data as JSONL files, one
// object per line, so the data stays human-readable and git-friendly.
//
//   portfolio.jsonl  - allocation rows, transaction rows and the as-of row,
//                      discriminated by a "row" attribute.
//   prices.jsonl     - one line per date: {"on": ..., "EUR": 12.3, ...};
//                      a single-currency feed simply has one currency key.
//   rates.jsonl      - same shape, rates against the store's base currency.

const (
	rowAllocation  = "allocation"
	rowTransaction = "transaction"
	rowAsOf        = "asof"

	portfolioFilename = "portfolio.jsonl"
	pricesFilename    = "prices.jsonl"
	ratesFilename     = "rates.jsonl"
)

// fileLine is one line of a JSONL file with its location, for error messages.
type fileLine struct {
	filename string
	n        int
	txt      string
}

// decodeLines reads all non-blank lines of a file.
func decodeLines(filename string) ([]fileLine, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", filename, err)
	}
	defer r.Close()

	var list []fileLine
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		txt := scanner.Text()
		if strings.TrimSpace(txt) == "" {
			continue
		}
		list = append(list, fileLine{filename: filename, n: n, txt: txt})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return list, nil
}

// DecodePortfolio reads a portfolio JSONL stream: allocation rows,
// transaction rows, and at most one as-of row.
func DecodePortfolio(r io.Reader) (Portfolio, error) {
	var p Portfolio

	type row struct {
		Row string `json:"row"`
	}
	type asofRow struct {
		Date  date.Date `json:"date"`
		Price Money     `json:"price"`
	}

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var kind row
		if err := json.Unmarshal(line, &kind); err != nil {
			return p, fmt.Errorf("format error on line %d: %w", n, err)
		}
		switch kind.Row {
		case rowAllocation:
			var e AllocationEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return p, fmt.Errorf("invalid allocation on line %d: %w", n, err)
			}
			p.Entries = append(p.Entries, e)
		case rowTransaction:
			var t TransactionEntry
			if err := json.Unmarshal(line, &t); err != nil {
				return p, fmt.Errorf("invalid transaction on line %d: %w", n, err)
			}
			p.Transactions = append(p.Transactions, t)
		case rowAsOf:
			if !p.AsOfDate.IsZero() {
				return p, fmt.Errorf("duplicate as-of row on line %d", n)
			}
			var a asofRow
			if err := json.Unmarshal(line, &a); err != nil {
				return p, fmt.Errorf("invalid as-of row on line %d: %w", n, err)
			}
			p.AsOfDate, p.MarketPrice = a.Date, a.Price
		default:
			return p, fmt.Errorf("unknown row kind %q on line %d", kind.Row, n)
		}
	}
	return p, scanner.Err()
}

// EncodePortfolio writes a portfolio back in canonical JSONL form.
func EncodePortfolio(w io.Writer, p Portfolio) error {
	write := func(v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	for _, e := range p.Entries {
		if err := write(struct {
			Row string `json:"row"`
			AllocationEntry
		}{rowAllocation, e}); err != nil {
			return err
		}
	}
	for _, t := range p.Transactions {
		if err := write(struct {
			Row string `json:"row"`
			TransactionEntry
		}{rowTransaction, t}); err != nil {
			return err
		}
	}
	if !p.AsOfDate.IsZero() {
		if err := write(struct {
			Row   string    `json:"row"`
			Date  date.Date `json:"date"`
			Price Money     `json:"price"`
		}{rowAsOf, p.AsOfDate, p.MarketPrice}); err != nil {
			return err
		}
	}
	return nil
}

// decodeTable parses the per-date JSONL shape shared by the price and rate
// files: an "on" date plus one numeric attribute per currency code.
func decodeTable(lines []fileLine, add func(on date.Date, currency string, v float64)) error {
	for _, l := range lines {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal([]byte(l.txt), &raw); err != nil {
			return fmt.Errorf("format error in %q line %d: %w", l.filename, l.n, err)
		}
		onRaw, ok := raw["on"]
		if !ok {
			return fmt.Errorf("format error in %q line %d: missing \"on\" attribute", l.filename, l.n)
		}
		var on date.Date
		if err := json.Unmarshal(onRaw, &on); err != nil {
			return fmt.Errorf("format error in %q line %d: %w", l.filename, l.n, err)
		}
		for key, val := range raw {
			if key == "on" {
				continue
			}
			var v float64
			if err := json.Unmarshal(val, &v); err != nil {
				return fmt.Errorf("format error in %q line %d: attribute %q: %w", l.filename, l.n, key, err)
			}
			add(on, key, v)
		}
	}
	return nil
}

// encodeTable writes the per-date table in canonical, deterministic form.
func encodeTable(w io.Writer, currencies []string, series func(string) *date.Series) error {
	all := make([]*date.Series, 0, len(currencies))
	for _, c := range currencies {
		if s := series(c); s != nil {
			all = append(all, s)
		}
	}
	for on := range date.Merge(all...) {
		values := make(map[string]float64, len(currencies))
		keys := make([]string, 0, len(currencies))
		for _, c := range currencies {
			s := series(c)
			if s == nil {
				continue
			}
			if v, ok := s.Get(on); ok {
				values[c] = v
				keys = append(keys, c)
			}
		}
		// deterministic attribute order: "on" first, then sorted currencies
		sort.Strings(keys)
		var sb strings.Builder
		fmt.Fprintf(&sb, `{"on":%q`, on)
		for _, k := range keys {
			vb, err := json.Marshal(values[k])
			if err != nil {
				return err
			}
			fmt.Fprintf(&sb, `,%q:%s`, k, vb)
		}
		sb.WriteString("}")
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// FileStore persists the portfolio and its price and rate histories as JSONL
// files in a folder. It implements PriceStore and RateStore.
type FileStore struct {
	Dir  string
	Base string // base currency of the rate table
}

var _ PriceStore = (*FileStore)(nil)
var _ RateStore = (*FileStore)(nil)

// LoadPrices reads the stored price history. A missing file yields an empty
// history, not an error.
func (s *FileStore) LoadPrices(_ context.Context) (*PriceHistory, error) {
	h := NewPriceHistory()
	lines, err := decodeLines(filepath.Join(s.Dir, pricesFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	if err := decodeTable(lines, h.Append); err != nil {
		return nil, err
	}
	return h, nil
}

// SavePrices rewrites the whole price file in canonical form.
func (s *FileStore) SavePrices(h *PriceHistory) error {
	return s.writeFile(pricesFilename, func(w io.Writer) error {
		return encodeTable(w, h.Currencies(), h.Series)
	})
}

// SaveAsOf merges one as-of observation into the stored price series.
// Re-saving the same date and price is a no-op; a differing price at the
// same date is an update.
func (s *FileStore) SaveAsOf(ctx context.Context, on date.Date, currency string, price float64) error {
	h, err := s.LoadPrices(ctx)
	if err != nil {
		return err
	}
	if series := h.Series(currency); series != nil {
		if existing, ok := series.Get(on); ok && existing == price {
			return nil
		}
	}
	h.Append(on, currency, price)
	return s.SavePrices(h)
}

// LoadRates reads the stored exchange-rate history. A missing file yields an
// empty table, not an error.
func (s *FileStore) LoadRates(_ context.Context) (*RateHistory, error) {
	r := NewRateHistory(s.Base)
	lines, err := decodeLines(filepath.Join(s.Dir, ratesFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	if err := decodeTable(lines, r.Append); err != nil {
		return nil, err
	}
	return r, nil
}

// SaveRates rewrites the whole rate file in canonical form.
func (s *FileStore) SaveRates(r *RateHistory) error {
	currencies := make([]string, 0)
	for _, c := range r.Currencies() {
		if c != r.base {
			currencies = append(currencies, c)
		}
	}
	return s.writeFile(ratesFilename, func(w io.Writer) error {
		return encodeTable(w, currencies, func(c string) *date.Series { return r.rates[c] })
	})
}

// LoadPortfolio reads the portfolio file from the store's folder.
func (s *FileStore) LoadPortfolio() (Portfolio, error) {
	f, err := os.Open(filepath.Join(s.Dir, portfolioFilename))
	if err != nil {
		return Portfolio{}, fmt.Errorf("cannot open portfolio file: %w", err)
	}
	defer f.Close()
	return DecodePortfolio(f)
}

func (s *FileStore) writeFile(name string, fill func(io.Writer) error) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("cannot create store folder %q: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

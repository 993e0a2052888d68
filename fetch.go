package shareplan

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/shareplan/date"
)

// This file fetches daily closes and exchange rates to keep the local store
// current. Quotes come from the Yahoo Finance chart endpoint (the original
// data source of the share-plan workbook) and exchange rates from a
// base-currency rate API. Responses are cached on disk with a daily expiry
// so repeated commands during one day never re-hit the network.

const rateAPIURL = "https://api.exchangerate-api.com/v4/latest/"

// diskCache implements a simple disk cache for HTTP responses. The cache key
// includes today's date, so entries expire daily.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", date.Today(), req.Method, req.URL.String())
	key = fmt.Sprintf("shareplan-%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil // cache hit
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0644)
}

// daily returns a client whose responses are cached until end of day.
func daily() *http.Client {
	return &http.Client{Transport: &diskCache{http.DefaultTransport}}
}

// jwget performs an HTTP GET and unmarshals the JSON response into data.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// jpath extracts a single value from a generic JSON object. When the path
// matches a one-element list, the element itself is returned; jsonpath is
// never clear about which of the two it yields.
func jpath(jobj any, path string) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		return jlist[0], nil
	}
	return jval, nil
}

// FetchDailyCloses downloads the instrument's daily closes between from and
// to (inclusive) from the Yahoo Finance chart endpoint.
func FetchDailyCloses(ticker string, from, to date.Date) (*date.Series, error) {
	addr := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		url.PathEscape(ticker), from.Time().Unix(), to.Add(1).Time().Unix())

	var jobj any
	if err := jwget(daily(), addr, &jobj); err != nil {
		return nil, fmt.Errorf("cannot fetch quotes for %q: %w", ticker, err)
	}

	jts, err := jpath(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		return nil, fmt.Errorf("no timestamps for %q: %w", ticker, err)
	}
	jcloses, err := jpath(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("no closes for %q: %w", ticker, err)
	}

	timestamps, ok1 := jts.([]any)
	closes, ok2 := jcloses.([]any)
	if !ok1 || !ok2 || len(timestamps) != len(closes) {
		return nil, fmt.Errorf("inconsistent chart response for %q", ticker)
	}

	series := &date.Series{}
	for i := range timestamps {
		ts, ok := timestamps[i].(float64)
		if !ok {
			continue
		}
		close, ok := closes[i].(float64) // null on non-trading rows
		if !ok {
			continue
		}
		series.Append(date.FromUnix(int64(ts)), close)
	}
	return series, nil
}

// FetchRates downloads today's exchange-rate table for the given base
// currency and appends it to the history. The endpoint only serves the
// latest rates; history accrues by fetching regularly, which is why stale
// rate data shows up in the quality report.
func FetchRates(rates *RateHistory) error {
	addr := rateAPIURL + url.PathEscape(rates.Base())

	var jobj any
	if err := jwget(daily(), addr, &jobj); err != nil {
		return fmt.Errorf("cannot fetch %s rates: %w", rates.Base(), err)
	}
	jrates, err := jpath(jobj, "$.rates")
	if err != nil {
		return fmt.Errorf("no rates in response: %w", err)
	}
	table, ok := jrates.(map[string]any)
	if !ok {
		return fmt.Errorf("unexpected rates payload %T", jrates)
	}

	today := date.Today()
	for cur, jv := range table {
		v, ok := jv.(float64)
		if !ok || v == 0 || cur == rates.Base() {
			continue
		}
		rates.Append(today, cur, v)
	}
	return nil
}

// UpdatePrices fetches any missing closes for the instrument into the price
// history, one currency column per configured quote.
//
// A quote maps a currency code to the ticker serving closes in that
// currency (e.g. "EUR" → "ALV.DE"). For currencies without a native ticker
// the caller converts through the rate table instead.
func UpdatePrices(h *PriceHistory, quotes map[string]string, origin, end date.Date) error {
	var errs error
	for currency, ticker := range quotes {
		from := origin
		if latest, _, ok := h.Latest(currency); ok {
			if !latest.Before(end) {
				continue // already up to date
			}
			from = latest.Add(1)
		}
		series, err := FetchDailyCloses(ticker, from, end)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if series.Len() == 0 {
			log.Printf("no new closes for %q (%s) between %s and %s", ticker, currency, from, end)
			continue
		}
		for on, v := range series.Values() {
			h.Append(on, currency, v)
		}
	}
	return errs
}

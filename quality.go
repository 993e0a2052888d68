package shareplan

import (
	"fmt"

	"github.com/etnz/shareplan/date"
)

// Health summarizes the overall state of the local data.
type Health string

const (
	Healthy Health = "HEALTHY"
	Warning Health = "WARNING"
)

// SeriesQuality describes one currency column of the price or rate history.
type SeriesQuality struct {
	Name          string // currency code of the column
	Observations  int
	FirstDate     date.Date
	LastDate      date.Date
	StalenessDays int // days between the last observation and the report date
	Stale         bool
}

// QualityReport is the audit of the locally stored market data: per-column
// coverage and staleness, plus the overall verdict. It exists because the
// engine happily computes on stale closes; someone has to notice.
type QualityReport struct {
	On        date.Date
	Prices    []SeriesQuality
	Rates     []SeriesQuality
	Gaps      []string
	Health    Health
	Threshold int // staleness threshold in days
}

// DefaultStalenessDays is how old the latest close may be before the report
// flags the column. A week covers market closures and long weekends.
const DefaultStalenessDays = 7

// AnalyzeQuality inspects the stored price and rate histories as of the
// given date and reports coverage and staleness per currency column.
func AnalyzeQuality(on date.Date, prices *PriceHistory, rates *RateHistory, thresholdDays int) *QualityReport {
	if thresholdDays <= 0 {
		thresholdDays = DefaultStalenessDays
	}
	report := &QualityReport{On: on, Health: Healthy, Threshold: thresholdDays}

	for _, cur := range prices.Currencies() {
		q := seriesQuality(cur, prices.Series(cur), on, thresholdDays)
		report.Prices = append(report.Prices, q)
		if q.Stale {
			report.Gaps = append(report.Gaps,
				fmt.Sprintf("%s closes are stale (%d days)", cur, q.StalenessDays))
			report.Health = Warning
		}
	}
	if rates != nil {
		for _, cur := range rates.Currencies() {
			if cur == rates.Base() {
				continue
			}
			q := seriesQuality(cur, rates.rates[cur], on, thresholdDays)
			report.Rates = append(report.Rates, q)
			if q.Stale {
				report.Gaps = append(report.Gaps,
					fmt.Sprintf("%s%s rates are stale (%d days)", rates.Base(), cur, q.StalenessDays))
				report.Health = Warning
			}
		}
	}
	return report
}

func seriesQuality(name string, s *date.Series, on date.Date, threshold int) SeriesQuality {
	q := SeriesQuality{Name: name}
	if s == nil || s.Len() == 0 {
		q.StalenessDays = 999
		q.Stale = true
		return q
	}
	q.Observations = s.Len()
	q.FirstDate, _ = s.First()
	q.LastDate, _ = s.Latest()
	q.StalenessDays = int(on.Time().Sub(q.LastDate.Time()).Hours() / 24)
	if q.StalenessDays < 0 {
		q.StalenessDays = 0
	}
	q.Stale = q.StalenessDays > threshold
	return q
}

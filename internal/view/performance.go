package view

import (
	"github.com/montanaflynn/stats"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// MonthReturn is the close-to-close return of one month.
type MonthReturn struct {
	Date string
	Pct  float64
	Text string
}

// Performance summarises a price series for the stock panel.
type Performance struct {
	Period         string
	StartPrice     string
	EndPrice       string
	TotalReturnPct float64
	TotalReturn    string
	ReturnColor    common.ColorToken
	DataPoints     int
	Volatility     string // sample standard deviation of monthly returns
	AverageMonthly string
	Best           *MonthReturn
	Worst          *MonthReturn
	Empty          bool
}

// PerformanceView derives the display summary of a price series. The
// server-provided summary wins for start, end and total return; the
// monthly statistics are computed from the closes.
func PerformanceView(s *models.StockPriceSeries) Performance {
	if s == nil || (len(s.Prices) == 0 && s.Performance == nil) {
		return Performance{Empty: true, Volatility: "N/A", AverageMonthly: "N/A"}
	}

	p := Performance{Period: s.Period, DataPoints: len(s.Prices), Volatility: "N/A", AverageMonthly: "N/A"}
	closes := s.Closes()

	var start, end, total float64
	switch {
	case s.Performance != nil:
		start, end, total = s.Performance.StartPrice, s.Performance.EndPrice, s.Performance.TotalReturnPct
		if s.Performance.DataPoints > 0 {
			p.DataPoints = s.Performance.DataPoints
		}
	case len(closes) >= 2:
		start, end = closes[0], closes[len(closes)-1]
		if start > 0 {
			total = (end/start - 1) * 100
		}
	default:
		return Performance{Empty: true, Period: s.Period, DataPoints: len(s.Prices), Volatility: "N/A", AverageMonthly: "N/A"}
	}

	p.StartPrice = common.FormatPrice(start)
	p.EndPrice = common.FormatPrice(end)
	p.TotalReturnPct = total
	p.TotalReturn = common.FormatSignedPct(total)
	p.ReturnColor = common.ReturnColor(total)

	returns, dates := monthlyReturns(s.Prices)
	if len(returns) == 0 {
		return p
	}

	if mean, err := stats.Mean(returns); err == nil {
		p.AverageMonthly = common.FormatSignedPct(mean)
	}
	if len(returns) >= 2 {
		if sd, err := stats.StandardDeviationSample(returns); err == nil {
			p.Volatility = common.FormatPct(sd)
		}
	}
	if hi, err := stats.Max(returns); err == nil {
		p.Best = monthAt(returns, dates, hi)
	}
	if lo, err := stats.Min(returns); err == nil {
		p.Worst = monthAt(returns, dates, lo)
	}
	return p
}

// monthlyReturns skips months whose previous close is not positive.
func monthlyReturns(prices []models.StockPricePoint) (stats.Float64Data, []string) {
	var returns stats.Float64Data
	var dates []string
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, (prices[i].Close/prev-1)*100)
		dates = append(dates, prices[i].Date)
	}
	return returns, dates
}

func monthAt(returns []float64, dates []string, v float64) *MonthReturn {
	for i, r := range returns {
		if r == v {
			return &MonthReturn{Date: dates[i], Pct: r, Text: common.FormatSignedPct(r)}
		}
	}
	return nil
}

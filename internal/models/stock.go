package models

import (
	"fmt"
	"time"
)

// StockPeriods are the lookback windows accepted by GET /stock-prices/{id}.
var StockPeriods = []string{"1y", "3y", "5y", "10y"}

// DefaultStockPeriod is used when no period is selected.
const DefaultStockPeriod = "1y"

// ValidStockPeriod reports whether period is one of StockPeriods.
func ValidStockPeriod(period string) bool {
	for _, p := range StockPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// StockPricePoint is one monthly OHLCV bar.
type StockPricePoint struct {
	Date   string  `json:"date"` // YYYY-MM or YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Time parses Date, accepting month or day precision.
func (p StockPricePoint) Time() (time.Time, error) {
	if t, err := time.Parse("2006-01-02", p.Date); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01", p.Date); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid price date %q", p.Date)
}

// StockPerformance is the server-derived summary of a price series.
type StockPerformance struct {
	StartPrice     float64 `json:"start_price"`
	EndPrice       float64 `json:"end_price"`
	TotalReturnPct float64 `json:"total_return"`
	DataPoints     int     `json:"data_points"`
}

// StockPriceSeries is the response of GET /stock-prices/{id}.
type StockPriceSeries struct {
	CompanyID   string            `json:"company_id"`
	Ticker      string            `json:"stock_code"`
	Period      string            `json:"period"`
	Prices      []StockPricePoint `json:"prices"`
	Performance *StockPerformance `json:"performance"`
}

// Closes returns the closing prices in series order.
func (s *StockPriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Prices))
	for i, p := range s.Prices {
		out[i] = p.Close
	}
	return out
}

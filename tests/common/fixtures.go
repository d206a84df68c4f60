package common

import (
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/raymonds/internal/models"
)

func f(v float64) *float64 { return &v }

// SampleCompanies returns a small, deterministic scored universe.
func SampleCompanies() []models.CompanyScore {
	updated := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	return []models.CompanyScore{
		{
			ID: "005930", CompanyName: "Samsung Electronics", Ticker: "005930", Sector: "Semiconductors", Market: "KOSPI",
			FiscalYear: 2024, RaymondsIndex: 78.4, CEI: f(82.1), RII: f(74.0), CGI: f(80.5), MAI: f(71.2),
			Grade: models.GradeA, RedFlags: []string{}, YellowFlags: []string{"Cash pile exceeds 3 years of capex"},
			Verdict:        "Disciplined reinvestment with a growing idle cash buffer.",
			KeyRisk:        "Memory cycle downturn compresses reinvestment returns.",
			Recommendation: "Hold; watch buyback execution.",
			WatchTrigger:   "Cash-to-assets above 25%.",
			UpdatedAt:      updated,
		},
		{
			ID: "000660", CompanyName: "SK hynix", Ticker: "000660", Sector: "Semiconductors", Market: "KOSPI",
			FiscalYear: 2024, RaymondsIndex: 101.3, CEI: f(96.0), RII: f(99.5), CGI: f(88.0), MAI: f(92.4),
			Grade: models.GradeAPlusPlus, RedFlags: []string{}, YellowFlags: []string{},
			Verdict:   "Top-decile capital allocation through the cycle.",
			UpdatedAt: updated,
		},
		{
			ID: "035420", CompanyName: "NAVER", Ticker: "035420", Sector: "Internet", Market: "KOSPI",
			FiscalYear: 2024, RaymondsIndex: 61.7, CEI: f(58.3), RII: f(66.1), CGI: f(60.0), MAI: nil,
			Grade: models.GradeBPlus, RedFlags: []string{}, YellowFlags: []string{"Momentum history too short"},
			UpdatedAt: updated,
		},
		{
			ID: "051910", CompanyName: "LG Chem", Ticker: "051910", Sector: "Chemicals", Market: "KOSPI",
			FiscalYear: 2024, RaymondsIndex: 44.9, CEI: f(38.2), RII: f(55.0), CGI: f(41.7), MAI: f(45.3),
			Grade: models.GradeB, RedFlags: []string{"Capex funded by debt for 3 consecutive years"},
			YellowFlags:    []string{"Dividend cut"},
			ViolationCount: 1,
			Verdict:        "Aggressive expansion outpacing internal cash generation.",
			KeyRisk:        "Refinancing at higher rates.",
			UpdatedAt:      updated,
		},
		{
			ID: "086520", CompanyName: "Ecopro", Ticker: "086520", Sector: "Chemicals", Market: "KOSDAQ",
			FiscalYear: 2024, RaymondsIndex: 27.5, CEI: f(20.4), RII: f(31.0), CGI: f(25.5), MAI: f(33.1),
			Grade: models.GradeC, RedFlags: []string{"Negative free cash flow", "Related-party cash transfers"},
			YellowFlags:    []string{"Auditor change"},
			ViolationCount: 3,
			UpdatedAt:      updated,
		},
		{
			ID: "105560", CompanyName: "KB Financial", Ticker: "105560", Sector: "Banks", Market: "KOSPI",
			FiscalYear: 2024, RaymondsIndex: 69.0, CEI: f(70.2), RII: nil, CGI: f(77.9), MAI: f(59.8),
			Grade: models.GradeAMinus, RedFlags: []string{}, YellowFlags: []string{},
			UpdatedAt: updated,
		},
	}
}

// SampleStockSeries returns 120 monthly bars for the first two sample companies.
func SampleStockSeries() map[string]models.StockPriceSeries {
	out := make(map[string]models.StockPriceSeries)
	for _, s := range []struct {
		id    string
		base  float64
		drift float64
	}{
		{"005930", 50000, 0.004},
		{"000660", 80000, 0.012},
	} {
		start := time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC)
		prices := make([]models.StockPricePoint, 120)
		for i := range prices {
			px := s.base * math.Pow(1+s.drift, float64(i)) * (1 + 0.05*math.Sin(float64(i)/3))
			prices[i] = models.StockPricePoint{
				Date:   start.AddDate(0, i, 0).Format("2006-01"),
				Open:   math.Round(px * 0.98),
				High:   math.Round(px * 1.04),
				Low:    math.Round(px * 0.95),
				Close:  math.Round(px),
				Volume: int64(1_000_000 + i*1000),
			}
		}
		out[s.id] = models.StockPriceSeries{
			CompanyID: s.id,
			Ticker:    s.id,
			Prices:    prices,
		}
	}
	return out
}

// SampleCompany returns the sample record with id, or panics.
func SampleCompany(id string) models.CompanyScore {
	for _, c := range SampleCompanies() {
		if c.ID == id {
			return c
		}
	}
	panic(fmt.Sprintf("no sample company %q", id))
}

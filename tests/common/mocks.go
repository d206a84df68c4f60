package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/raymonds/internal/models"
)

// MockScoreClient implements interfaces.ScoreClient in memory for testing
type MockScoreClient struct {
	mu          sync.Mutex
	Companies   map[string]*models.CompanyScore
	Stock       map[string]*models.StockPriceSeries
	Stats       *models.Statistics
	Err         error         // returned by every call when set
	Delay       time.Duration // applied before every call
	CompanyHits int
	RankingHits int
	StatsHits   int
	SearchHits  int
	StockHits   int
}

// NewMockScoreClient creates a mock seeded with SampleCompanies
func NewMockScoreClient() *MockScoreClient {
	m := &MockScoreClient{
		Companies: make(map[string]*models.CompanyScore),
		Stock:     make(map[string]*models.StockPriceSeries),
		Stats:     &models.Statistics{TotalCompanies: len(SampleCompanies())},
	}
	for _, c := range SampleCompanies() {
		c := c
		m.Companies[c.ID] = &c
	}
	for id, s := range SampleStockSeries() {
		s := s
		m.Stock[id] = &s
	}
	return m
}

// SetErr sets the error returned by subsequent calls
func (m *MockScoreClient) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Hits returns the per-method call counters
func (m *MockScoreClient) Hits() (company, ranking, stats, search, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompanyHits, m.RankingHits, m.StatsHits, m.SearchHits, m.StockHits
}

func (m *MockScoreClient) begin(ctx context.Context, counter *int) error {
	m.mu.Lock()
	*counter++
	delay, err := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockScoreClient) GetCompany(ctx context.Context, id string) (*models.CompanyScore, error) {
	if err := m.begin(ctx, &m.CompanyHits); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Companies[id]
	if !ok {
		return nil, fmt.Errorf("company %s not found", id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockScoreClient) GetRanking(ctx context.Context, params models.RankingParams) (*models.RankingPage, error) {
	if err := m.begin(ctx, &m.RankingHits); err != nil {
		return nil, err
	}
	params = params.Normalized()
	page := &models.RankingPage{Page: params.Page, PageSize: params.PageSize}
	for _, c := range SampleCompanies() {
		if params.Grade != "" && c.Grade != params.Grade {
			continue
		}
		page.Items = append(page.Items, c.Summary())
	}
	page.Total = len(page.Items)
	page.TotalPages = 1
	return page, nil
}

func (m *MockScoreClient) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	if err := m.begin(ctx, &m.StatsHits); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.Stats
	return &cp, nil
}

func (m *MockScoreClient) Search(ctx context.Context, query string, limit int) (*models.SearchResults, error) {
	if err := m.begin(ctx, &m.SearchHits); err != nil {
		return nil, err
	}
	res := &models.SearchResults{Query: query}
	for _, c := range SampleCompanies() {
		if c.CompanyName == query || c.Ticker == query {
			res.Results = append(res.Results, c.Summary())
		}
	}
	res.Total = len(res.Results)
	return res, nil
}

func (m *MockScoreClient) GetStockPrices(ctx context.Context, id, period string) (*models.StockPriceSeries, error) {
	if err := m.begin(ctx, &m.StockHits); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Stock[id]
	if !ok {
		return nil, fmt.Errorf("no price data for %s", id)
	}
	cp := *s
	cp.Period = period
	return &cp, nil
}

package raymonds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/raymonds/internal/models"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// GetCompany retrieves the scored record for one company. A response with
// no body returns (nil, nil).
func (c *Client) GetCompany(ctx context.Context, id string) (*models.CompanyScore, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validationError("company id is required")
	}

	var company models.CompanyScore
	if err := c.do(ctx, request{method: http.MethodGet, path: "/company/" + url.PathEscape(id)}, &company); err != nil {
		return nil, noData(err)
	}
	if err := company.Validate(); err != nil {
		return nil, fmt.Errorf("invalid company record: %w", err)
	}

	return &company, nil
}

// GetRanking retrieves one page of the ranked company list
func (c *Client) GetRanking(ctx context.Context, params models.RankingParams) (*models.RankingPage, error) {
	params = params.Normalized()
	if params.MinScore != nil && params.MaxScore != nil && *params.MinScore > *params.MaxScore {
		return nil, validationError("min score %v is above max score %v", *params.MinScore, *params.MaxScore)
	}

	var page models.RankingPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/ranking", params: params.Values()}, &page); err != nil {
		return nil, noData(err)
	}
	if page.Page == 0 {
		page.Page = params.Page
	}
	if page.PageSize == 0 {
		page.PageSize = params.PageSize
	}
	if page.TotalPages == 0 && page.PageSize > 0 {
		page.TotalPages = (page.Total + page.PageSize - 1) / page.PageSize
	}

	return &page, nil
}

// GetStatistics retrieves aggregate counts and the grade distribution
func (c *Client) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	if err := c.do(ctx, request{method: http.MethodGet, path: "/statistics"}, &stats); err != nil {
		return nil, noData(err)
	}
	return &stats, nil
}

// Search finds companies by name or ticker
func (c *Client) Search(ctx context.Context, query string, limit int) (*models.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("search query is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/search", params: params}, &raw); err != nil && !errors.Is(err, errNoData) {
		return nil, err
	}

	results := &models.SearchResults{Query: query}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		// some deployments return the bare hit list
		if err := json.Unmarshal(trimmed, &results.Results); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	default:
		if err := json.Unmarshal(trimmed, results); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		results.Query = query
	}
	if results.Total == 0 {
		results.Total = len(results.Results)
	}

	return results, nil
}

// GetStockPrices retrieves the monthly price series and performance summary
func (c *Client) GetStockPrices(ctx context.Context, id, period string) (*models.StockPriceSeries, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validationError("company id is required")
	}
	if period == "" {
		period = models.DefaultStockPeriod
	}
	if !models.ValidStockPeriod(period) {
		return nil, validationError("unsupported period %q", period)
	}

	params := url.Values{}
	params.Set("period", period)

	var series models.StockPriceSeries
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stock-prices/" + url.PathEscape(id), params: params}, &series); err != nil {
		return nil, noData(err)
	}
	if series.Period == "" {
		series.Period = period
	}
	if series.CompanyID == "" {
		series.CompanyID = id
	}

	return &series, nil
}

// noData maps errNoData to a nil error so the caller returns (nil, nil).
func noData(err error) error {
	if errors.Is(err, errNoData) {
		return nil
	}
	return err
}

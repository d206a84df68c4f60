package query

import (
	"context"
	"strings"

	"github.com/bobmcallan/raymonds/internal/interfaces"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Resource names used as key prefixes.
const (
	ResourceCompany     = "company"
	ResourceRanking     = "ranking"
	ResourceStatistics  = "statistics"
	ResourceSearch      = "search"
	ResourceStockPrices = "stock-prices"
)

func CompanyKey(id string) Key { return NewKey(ResourceCompany, id) }

func RankingKey(params models.RankingParams) Key {
	return NewKey(ResourceRanking, params.Normalized().Values().Encode())
}

func StatisticsKey() Key { return NewKey(ResourceStatistics) }

func SearchKey(q string, limit int) Key { return NewKey(ResourceSearch, q, limit) }

func StockPricesKey(id, period string) Key { return NewKey(ResourceStockPrices, id, period) }

// Hooks binds the scoring client to a cache. A hook whose required
// parameter is empty returns an idle Result without fetching.
type Hooks struct {
	client interfaces.ScoreClient
	cache  *Cache
}

func NewHooks(client interfaces.ScoreClient, cache *Cache) *Hooks {
	return &Hooks{client: client, cache: cache}
}

func (h *Hooks) Cache() *Cache {
	return h.cache
}

func (h *Hooks) Company(ctx context.Context, id string) Result[models.CompanyScore] {
	id = strings.TrimSpace(id)
	if id == "" {
		return idle[models.CompanyScore]()
	}
	return Fetch(ctx, h.cache, CompanyKey(id), func(ctx context.Context) (*models.CompanyScore, error) {
		return h.client.GetCompany(ctx, id)
	})
}

func (h *Hooks) Ranking(ctx context.Context, params models.RankingParams) Result[models.RankingPage] {
	params = params.Normalized()
	return Fetch(ctx, h.cache, RankingKey(params), func(ctx context.Context) (*models.RankingPage, error) {
		return h.client.GetRanking(ctx, params)
	})
}

func (h *Hooks) Statistics(ctx context.Context) Result[models.Statistics] {
	return Fetch(ctx, h.cache, StatisticsKey(), h.client.GetStatistics)
}

func (h *Hooks) Search(ctx context.Context, q string, limit int) Result[models.SearchResults] {
	q = strings.TrimSpace(q)
	if q == "" {
		return idle[models.SearchResults]()
	}
	return Fetch(ctx, h.cache, SearchKey(q, limit), func(ctx context.Context) (*models.SearchResults, error) {
		return h.client.Search(ctx, q, limit)
	})
}

func (h *Hooks) StockPrices(ctx context.Context, id, period string) Result[models.StockPriceSeries] {
	id = strings.TrimSpace(id)
	if id == "" {
		return idle[models.StockPriceSeries]()
	}
	if period == "" {
		period = models.DefaultStockPeriod
	}
	return Fetch(ctx, h.cache, StockPricesKey(id, period), func(ctx context.Context) (*models.StockPriceSeries, error) {
		return h.client.GetStockPrices(ctx, id, period)
	})
}

// Package interfaces defines the contracts between client components
package interfaces

import (
	"context"

	"github.com/bobmcallan/raymonds/internal/models"
)

// ScoreClient reads scoring data from the RaymondsIndex backend.
type ScoreClient interface {
	GetCompany(ctx context.Context, id string) (*models.CompanyScore, error)
	GetRanking(ctx context.Context, params models.RankingParams) (*models.RankingPage, error)
	GetStatistics(ctx context.Context) (*models.Statistics, error)
	Search(ctx context.Context, query string, limit int) (*models.SearchResults, error)
	GetStockPrices(ctx context.Context, id, period string) (*models.StockPriceSeries, error)
}

// AuthClient talks to the authentication backend.
type AuthClient interface {
	Login(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error)
	Me(ctx context.Context, token string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

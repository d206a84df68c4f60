package raymonds

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
	tcommon "github.com/bobmcallan/raymonds/tests/common"
)

func newStubClient(t *testing.T) (*Client, *tcommon.StubBackend) {
	t.Helper()
	backend := tcommon.NewStubBackend(t)
	return NewClient(WithBaseURL(backend.URL()), WithRateLimit(1000)), backend
}

func TestClient_GetCompany(t *testing.T) {
	client, backend := newStubClient(t)

	company, err := client.GetCompany(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, "Samsung Electronics", company.CompanyName)
	assert.Equal(t, models.GradeA, company.Grade)
	assert.Equal(t, 1, backend.Calls("/company/005930"))
}

func TestClient_GetCompany_NullSubIndexSurvives(t *testing.T) {
	client, _ := newStubClient(t)

	company, err := client.GetCompany(context.Background(), "035420")
	require.NoError(t, err)
	assert.Nil(t, company.MAI)
}

func TestClient_GetCompany_NotFound(t *testing.T) {
	client, _ := newStubClient(t)

	_, err := client.GetCompany(context.Background(), "999999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Company not found", apiErr.Message)
	assert.Equal(t, "/company/999999", apiErr.Endpoint)
}

func TestClient_GetCompany_EmptyIDNeverHitsNetwork(t *testing.T) {
	client, backend := newStubClient(t)

	_, err := client.GetCompany(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, backend.TotalCalls())
}

func TestClient_GetCompany_RejectsOutOfRangeSubIndex(t *testing.T) {
	client, backend := newStubClient(t)
	bad := 140.0
	backend.AddCompany(models.CompanyScore{ID: "BAD", CompanyName: "Broken", RaymondsIndex: 10, CEI: &bad})

	_, err := client.GetCompany(context.Background(), "BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid company record")
}

func TestClient_GetRanking_FiltersAndPages(t *testing.T) {
	client, _ := newStubClient(t)
	min := 50.0

	page, err := client.GetRanking(context.Background(), models.RankingParams{PageSize: 2, MinScore: &min})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "000660", page.Items[0].ID, "highest score first")
	assert.Equal(t, 1, page.Items[0].Rank)
	assert.True(t, page.HasNext())
}

func TestClient_GetRanking_InvertedRange(t *testing.T) {
	client, backend := newStubClient(t)
	min, max := 80.0, 20.0

	_, err := client.GetRanking(context.Background(), models.RankingParams{MinScore: &min, MaxScore: &max})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, backend.TotalCalls())
}

func TestClient_GetStatistics(t *testing.T) {
	client, _ := newStubClient(t)

	stats, err := client.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalCompanies)
	assert.Equal(t, 1, stats.GradeDistribution[models.GradeC])
	assert.Equal(t, 2, stats.RedFlagCompanies)
}

func TestClient_Search(t *testing.T) {
	client, _ := newStubClient(t)

	res, err := client.Search(context.Background(), "sk", 5)
	require.NoError(t, err)
	assert.Equal(t, "sk", res.Query)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "000660", res.Results[0].ID)
}

func TestClient_Search_BareArrayResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lg", r.URL.Query().Get("q"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"), "limit capped")
		json.NewEncoder(w).Encode([]models.CompanySummary{{ID: "051910", CompanyName: "LG Chem"}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	res, err := client.Search(context.Background(), "lg", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "LG Chem", res.Results[0].CompanyName)
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	client, _ := newStubClient(t)
	_, err := client.Search(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClient_GetStockPrices(t *testing.T) {
	client, _ := newStubClient(t)

	series, err := client.GetStockPrices(context.Background(), "005930", "3y")
	require.NoError(t, err)
	assert.Equal(t, "3y", series.Period)
	assert.Len(t, series.Prices, 36)
	require.NotNil(t, series.Performance)
	assert.Equal(t, 36, series.Performance.DataPoints)
}

func TestClient_GetStockPrices_DefaultAndInvalidPeriod(t *testing.T) {
	client, _ := newStubClient(t)

	series, err := client.GetStockPrices(context.Background(), "005930", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStockPeriod, series.Period)

	_, err = client.GetStockPrices(context.Background(), "005930", "7y")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClient_TransportFailure(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"), WithTimeout(time.Second))

	_, err := client.GetStatistics(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "request failed"))
	assert.False(t, IsUnauthorized(err))
}

func TestClient_SendsRequestIDAndAccept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"total_companies": 3}`))
	}))
	defer server.Close()

	stats, err := NewClient(WithBaseURL(server.URL + "/")).GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCompanies)
}

func TestErrorMessage_Shapes(t *testing.T) {
	assert.Equal(t, "Company not found", errorMessage(404, []byte(`{"detail":"Company not found"}`)))
	assert.Equal(t, "field required", errorMessage(422, []byte(`{"detail":[{"loc":["body","email"],"msg":"field required"}]}`)))
	assert.Equal(t, "boom", errorMessage(500, []byte(`{"message":"boom"}`)))
	assert.Equal(t, "nope", errorMessage(400, []byte(`{"error":"nope"}`)))
	assert.Equal(t, "upstream down", errorMessage(502, []byte("upstream down")))
	assert.Equal(t, "Bad Gateway", errorMessage(502, []byte("<html>gateway</html>")))
	assert.Equal(t, "Service Unavailable", errorMessage(503, nil))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"), WithRateLimit(1))
	// drain the single burst token
	client.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetStatistics(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}

func newNullServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_NullBodyIsNoData(t *testing.T) {
	for _, body := range []string{"null", " null\n", ""} {
		client := NewClient(WithBaseURL(newNullServer(t, body).URL), WithRateLimit(1000))
		ctx := context.Background()

		company, err := client.GetCompany(ctx, "005930")
		require.NoError(t, err, "body %q", body)
		assert.Nil(t, company)

		stats, err := client.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Nil(t, stats)

		page, err := client.GetRanking(ctx, models.RankingParams{})
		require.NoError(t, err)
		assert.Nil(t, page)

		series, err := client.GetStockPrices(ctx, "005930", "1y")
		require.NoError(t, err)
		assert.Nil(t, series)

		results, err := client.Search(ctx, "sam", 5)
		require.NoError(t, err)
		require.NotNil(t, results)
		assert.Empty(t, results.Results)
		assert.Equal(t, "sam", results.Query)
	}
}

func TestClient_NullBodyOnAuth(t *testing.T) {
	client := NewClient(WithBaseURL(newNullServer(t, "null").URL), WithRateLimit(1000))
	ctx := context.Background()

	_, err := client.Login(ctx, models.Credentials{Email: "a@example.com", Password: "password1"})
	assert.EqualError(t, err, "login response missing access token")

	_, err = client.Me(ctx, "token")
	assert.EqualError(t, err, "profile response was empty")
}

func TestClient_ForwardsContextRequestID(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"total_companies": 1}`))
	}))
	defer server.Close()

	ctx := common.WithRequestID(context.Background(), "ab12cd34")
	_, err := NewClient(WithBaseURL(server.URL)).GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", got)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/raymonds/internal/app"
	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/stepper"
	tcommon "github.com/bobmcallan/raymonds/tests/common"
)

type testServer struct {
	srv     *Server
	app     *app.App
	backend *tcommon.StubBackend
	sched   *stepper.ManualScheduler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	backend := tcommon.NewStubBackend(t)

	cfg := common.NewDefaultConfig()
	cfg.API.BaseURL = backend.URL()
	cfg.API.RateLimit = 1000
	cfg.Storage.Backend = "memory"

	a, err := app.NewAppWithConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	sched := stepper.NewManualScheduler()
	srv, err := NewServer(a, WithStepperScheduler(sched))
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.scoreRange.Close()
		srv.search.Close()
	})

	return &testServer{srv: srv, app: a, backend: backend, sched: sched}
}

func (ts *testServer) do(t *testing.T, method, target string, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodGet, target, "", nil)
}

func (ts *testServer) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, target, body, map[string]string{"Content-Type": "application/json"})
}

func (ts *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, target, form.Encode(), map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])

	rr = ts.get(t, "/api/version")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr), "version")

	rr = ts.do(t, http.MethodPost, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHome_RendersStatisticsAndTopRanked(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "Market Overview")
	assert.Contains(t, body, "SK hynix")
	assert.Contains(t, body, "Samsung Electronics")
	assert.Contains(t, body, "Compare (0/4)")
}

func TestHome_StatisticsFailureStaysInSection(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.FailNext("/statistics", 1)

	rr := ts.get(t, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, "SK hynix", "ranking section should still render")
}

func TestUnknownPath_NotFound(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/nope").Code)
}

func TestRanking_GradeFilter(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/ranking?grade=A")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Samsung Electronics")
	assert.NotContains(t, body, "LG Chem")
}

func TestRanking_NoMatches(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/ranking?sector=Shipbuilding")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No companies match the current filters.")
}

func TestRanking_BadParams(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/ranking?page=two").Code)
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/ranking?min_score=low").Code)
}

func TestRanking_UsesScoreRange(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.postJSON(t, "/api/range/set", `{"low": 60, "high": 120}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.get(t, "/ranking")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "NAVER")
	assert.NotContains(t, body, "LG Chem")
	assert.NotContains(t, body, "Ecopro")

	// Explicit bounds win over the control.
	rr = ts.get(t, "/ranking?min_score=0")
	assert.Contains(t, rr.Body.String(), "Ecopro")
}

func TestCompany_Detail(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/company/005930?period=3y")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Samsung Electronics")
	assert.Contains(t, body, "Cash pile exceeds 3 years of capex")
	assert.Contains(t, body, "/charts/stock/005930.svg?period=3y")
	assert.Equal(t, 1, ts.backend.Calls("/company/005930"))
	assert.Equal(t, 1, ts.backend.Calls("/stock-prices/005930"))
}

func TestCompany_NoPriceData(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/company/105560")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "KB Financial")
	assert.Contains(t, body, "No price data")
}

func TestCompany_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/company/999999")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Company not found")
}

func TestCompany_EmptyIDRedirects(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/company/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/ranking", rr.Header().Get("Location"))
}

func TestSearch_Page(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/search?q=samsung")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Samsung Electronics")

	rr = ts.get(t, "/search")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Enter a company name or ticker.")
	assert.Equal(t, 0, ts.backend.Calls("/search"))

	rr = ts.get(t, "/search?q=zzzz")
	assert.Contains(t, rr.Body.String(), "No companies found")
}

func TestCompare_JSONFlow(t *testing.T) {
	ts := newTestServer(t)
	accept := map[string]string{"Content-Type": "application/json", "Accept": "application/json"}

	for _, id := range []string{"005930", "000660"} {
		rr := ts.do(t, http.MethodPost, "/compare/add", `{"id":"`+id+`"}`, accept)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := ts.do(t, http.MethodPost, "/compare/add", `{"id":"005930"}`, accept)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[compareState](t, rr)
	assert.Equal(t, 2, state.Count, "duplicate add is a no-op")
	assert.True(t, state.CanOpen)
	assert.Nil(t, state.Table)

	rr = ts.do(t, http.MethodPost, "/compare/open", "", accept)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[compareState](t, rr)
	assert.True(t, state.IsModalOpen)
	require.NotNil(t, state.Table)
	assert.Equal(t, []string{"Samsung Electronics", "SK hynix"}, state.Table.Columns)

	for _, id := range []string{"035420", "051910"} {
		rr = ts.do(t, http.MethodPost, "/compare/add", `{"id":"`+id+`"}`, accept)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr = ts.do(t, http.MethodPost, "/compare/add", `{"id":"086520"}`, accept)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "selection_full", decode[ErrorResponse](t, rr).Code)
	assert.Equal(t, 4, ts.app.Compare.Len())

	rr = ts.do(t, http.MethodPost, "/compare/remove", `{"id":"000660"}`, accept)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, decode[compareState](t, rr).Count)

	rr = ts.do(t, http.MethodPost, "/compare/clear", "", accept)
	state = decode[compareState](t, rr)
	assert.Zero(t, state.Count)
	assert.False(t, state.IsModalOpen)
	assert.Equal(t, "Select companies to compare.", state.Message)
}

func TestCompare_OpenNeedsTwo(t *testing.T) {
	ts := newTestServer(t)
	accept := map[string]string{"Content-Type": "application/json", "Accept": "application/json"}

	ts.do(t, http.MethodPost, "/compare/add", `{"id":"005930"}`, accept)
	rr := ts.do(t, http.MethodPost, "/compare/open", "", accept)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.False(t, ts.app.Compare.State().IsModalOpen)
}

func TestCompare_AddUnknownCompany(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.postJSON(t, "/compare/add", `{"id":"999999"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Zero(t, ts.app.Compare.Len())
}

func TestCompare_FormRedirectsBack(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.postForm(t, "/compare/add", url.Values{"id": {"005930"}, "next": {"/company/005930"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/company/005930", rr.Header().Get("Location"))
	assert.True(t, ts.app.Compare.Contains("005930"))

	rr = ts.get(t, "/compare")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Select at least two companies to compare.")
}

func TestCompare_ModalRendersTable(t *testing.T) {
	ts := newTestServer(t)
	ts.postForm(t, "/compare/add", url.Values{"id": {"005930"}})
	ts.postForm(t, "/compare/add", url.Values{"id": {"086520"}})
	ts.postForm(t, "/compare/open", nil)

	rr := ts.get(t, "/compare")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, `class="best"`)
	assert.Contains(t, body, "Red Flags")
}

func TestLogin_Flow(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.AddUser("analyst@example.com", "analyst", "correct-horse")

	rr := ts.get(t, "/login")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.postForm(t, "/login", url.Values{"email": {"analyst@example.com"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Incorrect email or password")
	assert.False(t, ts.app.Auth.State().IsAuthenticated)

	rr = ts.postForm(t, "/login", url.Values{"email": {"analyst@example.com"}, "password": {"correct-horse"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.True(t, ts.app.Auth.State().IsAuthenticated)

	rr = ts.get(t, "/")
	assert.Contains(t, rr.Body.String(), "analyst")
	assert.Contains(t, rr.Body.String(), "Log out")

	assert.Equal(t, http.StatusMethodNotAllowed, ts.get(t, "/logout").Code)
	rr = ts.postForm(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.False(t, ts.app.Auth.State().IsAuthenticated)
}

func TestLogin_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.postForm(t, "/login", url.Values{"email": {"analyst@example.com"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Email and password are required")
	assert.Zero(t, ts.backend.Calls("/auth/login"))
}

func TestRegister_Flow(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.postForm(t, "/register", url.Values{
		"email":    {"new@example.com"},
		"username": {"newbie"},
		"password": {"long-enough-1"},
	})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?registered=1", rr.Header().Get("Location"))
	assert.False(t, ts.app.Auth.State().IsAuthenticated, "registering does not log in")

	rr = ts.get(t, "/login?registered=1")
	assert.Contains(t, rr.Body.String(), "Account created")

	rr = ts.postForm(t, "/register", url.Values{"email": {"bad"}, "username": {"x"}, "password": {"long-enough-1"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "is not valid")
}

func TestRange_PressHoldRelease(t *testing.T) {
	ts := newTestServer(t)

	state := decode[rangeState](t, ts.get(t, "/api/range"))
	assert.Equal(t, rangeState{Low: 0, High: 120, Phase: "idle", Accel: 1, Min: 0, Max: 120, Step: 1}, state)

	rr := ts.postJSON(t, "/api/range/press", `{"thumb":"high","direction":"down"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[rangeState](t, rr)
	assert.Equal(t, 119.0, state.High)
	assert.Equal(t, "pressed-waiting", state.Phase)

	ts.sched.Advance(300 * time.Millisecond)
	assert.Equal(t, "repeating", decode[rangeState](t, ts.get(t, "/api/range")).Phase)

	ts.sched.Advance(80 * time.Millisecond)
	assert.Equal(t, 118.0, decode[rangeState](t, ts.get(t, "/api/range")).High)

	rr = ts.postJSON(t, "/api/range/release", "")
	state = decode[rangeState](t, rr)
	assert.Equal(t, "idle", state.Phase)
	assert.Equal(t, 0, ts.sched.Pending())

	ts.sched.Advance(time.Second)
	assert.Equal(t, 118.0, decode[rangeState](t, ts.get(t, "/api/range")).High)
}

func TestRange_BadInput(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.postJSON(t, "/api/range/press", `{"thumb":"middle","direction":"up"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.postJSON(t, "/api/range/press", `{"thumb":"low","direction":"sideways"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.postJSON(t, "/api/range/set", `{"low":10}`).Code)
}

func TestRange_SetClamps(t *testing.T) {
	ts := newTestServer(t)

	state := decode[rangeState](t, ts.postJSON(t, "/api/range/set", `{"low":-20,"high":500}`))
	assert.Equal(t, 0.0, state.Low)
	assert.Equal(t, 120.0, state.High)

	state = decode[rangeState](t, ts.postJSON(t, "/api/range/set", `{"low":80,"high":50}`))
	assert.Equal(t, 80.0, state.Low)
	assert.Equal(t, 81.0, state.High)
}

func TestLiveSearch(t *testing.T) {
	ts := newTestServer(t)

	state := decode[liveSearchState](t, ts.get(t, "/api/search"))
	assert.Equal(t, "idle", string(state.Status))
	assert.Empty(t, state.Results)

	rr := ts.postJSON(t, "/api/search", `{"query":"sk","wait":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[liveSearchState](t, rr)
	assert.Equal(t, "success", string(state.Status))
	assert.Equal(t, "sk", state.Query)
	require.Len(t, state.Results, 1)
	assert.Equal(t, "SK hynix", state.Results[0].CompanyName)

	again := decode[liveSearchState](t, ts.get(t, "/api/search"))
	assert.Equal(t, state.Generation, again.Generation)

	state = decode[liveSearchState](t, ts.postJSON(t, "/api/search", `{"query":"","wait":true}`))
	assert.Equal(t, "idle", string(state.Status))
}

func TestCharts_Radar(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/charts/radar/035420.svg?size=240")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<svg")

	rr = ts.get(t, "/charts/radar/035420.png")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/charts/radar/999999.svg").Code)
}

func TestCharts_Compare(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/charts/compare.svg").Code)

	ts.postForm(t, "/compare/add", url.Values{"id": {"005930"}})
	ts.postForm(t, "/compare/add", url.Values{"id": {"000660"}})
	rr := ts.get(t, "/charts/compare.svg")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<svg")
}

func TestCharts_Stock(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get(t, "/charts/stock/000660.png?period=5y")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, 1, ts.backend.Calls("/stock-prices/000660"))

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/charts/stock/105560.png").Code)
}

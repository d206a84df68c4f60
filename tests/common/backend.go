// Package common provides shared test infrastructure
package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/raymonds/internal/models"
)

// StubBackend is an in-process RaymondsIndex scoring and auth API.
type StubBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	secret    []byte
	tokenTTL  time.Duration
	users     map[string]*stubUser
	companies map[string]models.CompanyScore
	stock     map[string]models.StockPriceSeries
	stats     *models.Statistics
	calls     map[string]int
	delays    map[string]time.Duration
	failures  map[string]int
}

type stubUser struct {
	user         models.User
	passwordHash []byte
}

// NewStubBackend starts a backend seeded with SampleCompanies and closes it on cleanup.
func NewStubBackend(t testing.TB) *StubBackend {
	t.Helper()

	b := &StubBackend{
		secret:    []byte("stub-backend-secret"),
		tokenTTL:  time.Hour,
		users:     make(map[string]*stubUser),
		companies: make(map[string]models.CompanyScore),
		stock:     make(map[string]models.StockPriceSeries),
		calls:     make(map[string]int),
		delays:    make(map[string]time.Duration),
		failures:  make(map[string]int),
	}
	for _, c := range SampleCompanies() {
		b.companies[c.ID] = c
	}
	for id, s := range SampleStockSeries() {
		b.stock[id] = s
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("GET /auth/me", b.handleMe)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("GET /company/{id}", b.handleCompany)
	mux.HandleFunc("GET /ranking", b.handleRanking)
	mux.HandleFunc("GET /statistics", b.handleStatistics)
	mux.HandleFunc("GET /search", b.handleSearch)
	mux.HandleFunc("GET /stock-prices/{id}", b.handleStockPrices)

	b.Server = httptest.NewServer(b.instrument(mux))
	t.Cleanup(b.Server.Close)

	return b
}

// URL returns the backend base URL.
func (b *StubBackend) URL() string {
	return b.Server.URL
}

// AddUser registers an account directly.
func (b *StubBackend) AddUser(email, username, password string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := models.User{
		ID:        strconv.Itoa(len(b.users) + 1),
		Email:     email,
		Username:  username,
		IsActive:  true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	b.users[strings.ToLower(email)] = &stubUser{user: u, passwordHash: hash}
	return u
}

// AddCompany adds or replaces a company record.
func (b *StubBackend) AddCompany(c models.CompanyScore) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.companies[c.ID] = c
}

// SetStatistics overrides the computed statistics response.
func (b *StubBackend) SetStatistics(s models.Statistics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = &s
}

// IssueToken signs a token for email with the given lifetime (negative for expired).
func (b *StubBackend) IssueToken(email string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strings.ToLower(email),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// Calls returns how many requests hit path (method-less, e.g. "/company/005930").
func (b *StubBackend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// TotalCalls returns the number of requests served.
func (b *StubBackend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// SetDelay slows responses for requests whose path+query contains match.
func (b *StubBackend) SetDelay(match string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[match] = d
}

// FailNext makes the next n requests to path answer 500.
func (b *StubBackend) FailNext(path string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = n
}

func (b *StubBackend) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		full := r.URL.Path
		if r.URL.RawQuery != "" {
			full += "?" + r.URL.RawQuery
		}

		b.mu.Lock()
		b.calls[r.URL.Path]++
		var delay time.Duration
		for match, d := range b.delays {
			if strings.Contains(full, match) && d > delay {
				delay = d
			}
		}
		fail := b.failures[r.URL.Path] > 0
		if fail {
			b.failures[r.URL.Path]--
		}
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (b *StubBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	b.mu.Lock()
	u, ok := b.users[strings.ToLower(creds.Email)]
	ttl := b.tokenTTL
	b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(creds.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: b.IssueToken(creds.Email, ttl),
		TokenType:   "bearer",
	})
}

func (b *StubBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	sub, _ := claims.GetSubject()
	b.mu.Lock()
	u, ok := b.users[sub]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	writeJSON(w, http.StatusOK, u.user)
}

func (b *StubBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	b.mu.Lock()
	_, exists := b.users[strings.ToLower(req.Email)]
	b.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	u := b.AddUser(req.Email, req.Username, req.Password)
	if req.FullName != "" {
		b.mu.Lock()
		b.users[strings.ToLower(req.Email)].user.FullName = req.FullName
		u.FullName = req.FullName
		b.mu.Unlock()
	}

	writeJSON(w, http.StatusCreated, u)
}

func (b *StubBackend) handleCompany(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	c, ok := b.companies[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Company not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (b *StubBackend) sortedCompanies() []models.CompanyScore {
	b.mu.Lock()
	list := make([]models.CompanyScore, 0, len(b.companies))
	for _, c := range b.companies {
		list = append(list, c)
	}
	b.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].RaymondsIndex != list[j].RaymondsIndex {
			return list[i].RaymondsIndex > list[j].RaymondsIndex
		}
		return list[i].ID < list[j].ID
	})
	for i := range list {
		list[i].Rank = i + 1
	}
	return list
}

func (b *StubBackend) handleRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var items []models.CompanySummary
	for _, c := range b.sortedCompanies() {
		if g := q.Get("grade"); g != "" && string(c.Grade) != g {
			continue
		}
		if s := q.Get("sector"); s != "" && !strings.EqualFold(c.Sector, s) {
			continue
		}
		if v, err := strconv.ParseFloat(q.Get("min_score"), 64); err == nil && c.RaymondsIndex < v {
			continue
		}
		if v, err := strconv.ParseFloat(q.Get("max_score"), 64); err == nil && c.RaymondsIndex > v {
			continue
		}
		items = append(items, c.Summary())
	}

	total := len(items)
	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, models.RankingPage{
		Items:      append([]models.CompanySummary{}, items[start:end]...),
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	})
}

func (b *StubBackend) handleStatistics(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	override := b.stats
	b.mu.Unlock()
	if override != nil {
		writeJSON(w, http.StatusOK, override)
		return
	}

	list := b.sortedCompanies()
	stats := models.Statistics{
		TotalCompanies:    len(list),
		GradeDistribution: make(map[models.Grade]int),
		SectorAverages:    make(map[string]float64),
		UpdatedAt:         time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	sectorCounts := make(map[string]int)
	sum := 0.0
	for _, c := range list {
		sum += c.RaymondsIndex
		stats.GradeDistribution[c.Grade]++
		stats.SectorAverages[c.Sector] += c.RaymondsIndex
		sectorCounts[c.Sector]++
		if len(c.RedFlags) > 0 {
			stats.RedFlagCompanies++
		}
	}
	for s, total := range stats.SectorAverages {
		stats.SectorAverages[s] = total / float64(sectorCounts[s])
	}
	if len(list) > 0 {
		stats.AverageScore = sum / float64(len(list))
		stats.MedianScore = list[len(list)/2].RaymondsIndex
	}

	writeJSON(w, http.StatusOK, stats)
}

func (b *StubBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	results := []models.CompanySummary{}
	for _, c := range b.sortedCompanies() {
		if strings.Contains(strings.ToLower(c.CompanyName), query) || strings.Contains(c.Ticker, query) {
			results = append(results, c.Summary())
		}
		if len(results) == limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, models.SearchResults{
		Query:   query,
		Results: results,
		Total:   len(results),
	})
}

func (b *StubBackend) handleStockPrices(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	period := r.URL.Query().Get("period")

	b.mu.Lock()
	s, ok := b.stock[id]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "No price data")
		return
	}

	months := map[string]int{"1y": 12, "3y": 36, "5y": 60, "10y": 120}[period]
	if months > 0 && len(s.Prices) > months {
		s.Prices = s.Prices[len(s.Prices)-months:]
	}
	s.Period = period
	if len(s.Prices) > 0 {
		first, last := s.Prices[0].Close, s.Prices[len(s.Prices)-1].Close
		s.Performance = &models.StockPerformance{
			StartPrice:     first,
			EndPrice:       last,
			TotalReturnPct: (last - first) / first * 100,
			DataPoints:     len(s.Prices),
		}
	}

	writeJSON(w, http.StatusOK, s)
}

// Package pages composes query hooks, stores and views into per-route
// page models. Page builders never fail: each section carries its own
// result and renders its loading, error or empty state independently.
package pages

import (
	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/query"
	"github.com/bobmcallan/raymonds/internal/stores/auth"
	"github.com/bobmcallan/raymonds/internal/stores/compare"
	"github.com/bobmcallan/raymonds/internal/view"
)

const (
	DefaultTopN        = 10
	DefaultSearchLimit = 20
)

// Section is one independently rendered block of a page.
type Section[T any] struct {
	Result query.Result[T]
	Error  string
}

func newSection[T any](r query.Result[T]) Section[T] {
	return Section[T]{Result: r, Error: view.ErrorMessage(r.Err)}
}

// Ready reports a successful fetch with data to show.
func (s Section[T]) Ready() bool {
	return s.Result.Status == query.StatusSuccess && s.Result.Data != nil
}

// Failed reports a fetch error.
func (s Section[T]) Failed() bool {
	return s.Result.Status == query.StatusError
}

// Empty reports a successful fetch that returned no data.
func (s Section[T]) Empty() bool {
	return s.Result.IsEmpty()
}

// Disabled reports a section whose required input was missing.
func (s Section[T]) Disabled() bool {
	return s.Result.Status == query.StatusIdle
}

// Data returns the payload or nil.
func (s Section[T]) Data() *T {
	return s.Result.Data
}

// Header is the auth and selection summary shown on every page.
type Header struct {
	User            string
	Email           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	CompareCount    int
	CompareMax      int
}

// Pages builds page models.
type Pages struct {
	hooks       *query.Hooks
	auth        *auth.Store
	compare     *compare.Store
	logger      *common.Logger
	topN        int
	searchLimit int
}

// Option configures Pages.
type Option func(*Pages)

// WithTopN sets how many companies the home page ranks.
func WithTopN(n int) Option {
	return func(p *Pages) {
		if n > 0 {
			p.topN = n
		}
	}
}

// WithSearchLimit caps search results.
func WithSearchLimit(n int) Option {
	return func(p *Pages) {
		if n > 0 {
			p.searchLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *common.Logger) Option {
	return func(p *Pages) {
		p.logger = logger
	}
}

// New creates page builders. authStore and compareStore may be nil for
// read-only callers such as the CLI.
func New(hooks *query.Hooks, authStore *auth.Store, compareStore *compare.Store, opts ...Option) *Pages {
	p := &Pages{
		hooks:       hooks,
		auth:        authStore,
		compare:     compareStore,
		logger:      common.NewSilentLogger(),
		topN:        DefaultTopN,
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Header projects the auth and comparison stores.
func (p *Pages) Header() Header {
	var h Header
	if p.auth != nil {
		st := p.auth.State()
		h.IsAuthenticated = st.IsAuthenticated
		h.IsLoading = st.IsLoading
		h.Error = st.Error
		if st.User != nil {
			h.User = st.User.DisplayName()
			h.Email = st.User.Email
		}
	}
	if p.compare != nil {
		h.CompareCount = p.compare.Len()
		h.CompareMax = p.compare.Max()
	}
	return h
}

func (p *Pages) inCompare(id string) bool {
	return p.compare != nil && p.compare.Contains(id)
}

func (p *Pages) compareFull() bool {
	return p.compare != nil && p.compare.IsFull()
}

// Package query maps stable keys to cached backend fetches.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/raymonds/internal/common"
)

// Status describes where a Result is in its lifecycle.
type Status string

const (
	StatusIdle    Status = "idle" // disabled: a required parameter is empty
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Key is a resource name plus its parameters.
type Key struct {
	Resource string
	Params   []string
}

func NewKey(resource string, params ...any) Key {
	k := Key{Resource: resource}
	for _, p := range params {
		k.Params = append(k.Params, fmt.Sprint(p))
	}
	return k
}

// String renders "resource:p1:p2".
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Resource
	}
	return k.Resource + ":" + strings.Join(k.Params, ":")
}

// Result is what a hook hands to its caller. Data is nil while loading, on
// error, or when the backend returned no data.
type Result[T any] struct {
	Data      *T
	Err       error
	Status    Status
	IsLoading bool
	UpdatedAt time.Time
}

// IsEmpty reports a successful fetch that carried no data.
func (r Result[T]) IsEmpty() bool {
	return r.Status == StatusSuccess && r.Data == nil
}

func idle[T any]() Result[T] {
	return Result[T]{Status: StatusIdle}
}

func loading[T any](prev Result[T]) Result[T] {
	return Result[T]{Data: prev.Data, Status: StatusLoading, IsLoading: true, UpdatedAt: prev.UpdatedAt}
}

type entry struct {
	value     any
	err       error
	fetchedAt time.Time
}

// Cache holds fetched values and errors for StaleTime. Concurrent fetches
// of the same key share one backend call.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	group     singleflight.Group
	staleTime time.Duration
	logger    *common.Logger
	fetches   int
}

func NewCache(staleTime time.Duration, logger *common.Logger) *Cache {
	if staleTime <= 0 {
		staleTime = common.FreshnessQuery
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Cache{
		entries:   make(map[string]*entry),
		staleTime: staleTime,
		logger:    logger,
	}
}

func (c *Cache) StaleTime() time.Duration {
	return c.staleTime
}

// Invalidate drops every entry whose key starts with prefix and returns the count.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	if n > 0 {
		c.logger.Debug().Str("prefix", prefix).Int("entries", n).Msg("Query cache invalidated")
	}
	return n
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetches returns how many fetch functions the cache has run.
func (c *Cache) Fetches() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches
}

func (c *Cache) fresh(key string) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !common.IsFresh(e.fetchedAt, c.staleTime) {
		return nil, false
	}
	return e, true
}

func (c *Cache) store(key string, value any, err error) *entry {
	e := &entry{value: value, err: err, fetchedAt: time.Now()}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	// a cancelled caller says nothing about the resource
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return e
	}
	c.entries[key] = e
	return e
}

// Fetch returns the cached result for key, running fn when the entry is
// missing or stale. Errors are cached like values. Concurrent callers share
// one fn call, which runs detached from their cancellation; a caller whose
// ctx ends stops waiting without affecting the others.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (*T, error)) Result[T] {
	k := key.String()

	e, ok := c.fresh(k)
	if !ok {
		if err := ctx.Err(); err != nil {
			return Result[T]{Err: err, Status: StatusError}
		}
		fetchCtx := context.WithoutCancel(ctx)
		ch := c.group.DoChan(k, func() (any, error) {
			if e, ok := c.fresh(k); ok {
				return e, nil
			}
			data, err := fn(fetchCtx)
			if err != nil {
				c.logger.Debug().Err(err).Str("key", k).Msg("Query fetch failed")
			}
			return c.store(k, data, err), nil
		})
		select {
		case <-ctx.Done():
			return Result[T]{Err: ctx.Err(), Status: StatusError}
		case r := <-ch:
			e = r.Val.(*entry)
		}
	}

	if e.err != nil {
		return Result[T]{Err: e.err, Status: StatusError, UpdatedAt: e.fetchedAt}
	}
	data, _ := e.value.(*T)
	return Result[T]{Data: data, Status: StatusSuccess, UpdatedAt: e.fetchedAt}
}

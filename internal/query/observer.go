package query

import (
	"context"
	"sync"
)

// Observer follows a query that changes over time, such as a search box.
// Each SetQuery starts a new generation; results from older generations are
// dropped even if they arrive last. Superseded fetches are left to finish so
// they can still fill the cache.
type Observer[T any] struct {
	fetch func(ctx context.Context, query string) Result[T]
	base  context.Context
	stop  context.CancelFunc

	mu      sync.Mutex
	gen     uint64
	query   string
	current Result[T]
	closed  bool
	wg      sync.WaitGroup
}

// NewObserver wraps fetch. An empty query never reaches fetch.
func NewObserver[T any](fetch func(ctx context.Context, query string) Result[T]) *Observer[T] {
	base, stop := context.WithCancel(context.Background())
	return &Observer[T]{fetch: fetch, base: base, stop: stop, current: idle[T]()}
}

// SetQuery switches to q. The returned channel yields this generation's
// result once, or is closed without a value if a newer query supersedes it.
func (o *Observer[T]) SetQuery(ctx context.Context, q string) <-chan Result[T] {
	out := make(chan Result[T], 1)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		close(out)
		return out
	}
	o.gen++
	gen := o.gen
	o.query = q

	if q == "" {
		o.current = idle[T]()
		o.mu.Unlock()
		out <- idle[T]()
		close(out)
		return out
	}

	o.current = loading(o.current)
	o.wg.Add(1)
	o.mu.Unlock()

	fetchCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(o.base, cancel)

	go func() {
		defer o.wg.Done()
		defer close(out)
		defer stopAfter()
		defer cancel()

		res := o.fetch(fetchCtx, q)

		o.mu.Lock()
		defer o.mu.Unlock()
		if gen != o.gen {
			return
		}
		o.current = res
		out <- res
	}()

	return out
}

// Current returns the latest accepted result. While a fetch is in flight it
// is loading and keeps the previous data as a placeholder.
func (o *Observer[T]) Current() Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *Observer[T]) Query() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query
}

func (o *Observer[T]) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

// Close cancels in-flight fetches and waits for them to return.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	o.closed = true
	o.gen++
	o.mu.Unlock()

	o.stop()
	o.wg.Wait()
}

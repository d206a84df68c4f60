// Package stores holds the subscription plumbing shared by the state stores.
package stores

import "sync"

// Listeners is an ordered set of state subscribers. Deliveries are
// serialized, so subscribers must not call a mutating store action from
// inside their callback.
type Listeners[S any] struct {
	mu   sync.Mutex
	next int
	subs []subscriber[S]

	deliver sync.Mutex
	last    uint64
}

type subscriber[S any] struct {
	id int
	fn func(S)
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (l *Listeners[S]) Subscribe(fn func(S)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	id := l.next
	l.subs = append(l.subs, subscriber[S]{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every subscriber in subscription order. Subscribers may
// subscribe or unsubscribe from inside fn; the change applies to the next Notify.
func (l *Listeners[S]) Notify(state S) {
	l.deliver.Lock()
	defer l.deliver.Unlock()
	l.notify(state)
}

// Publish delivers a snapshot tagged with the store version it was taken
// at. A snapshot older than one already delivered is dropped, so the last
// state a subscriber sees is the newest.
func (l *Listeners[S]) Publish(version uint64, state S) {
	l.deliver.Lock()
	defer l.deliver.Unlock()
	if version <= l.last {
		return
	}
	l.last = version
	l.notify(state)
}

func (l *Listeners[S]) notify(state S) {
	l.mu.Lock()
	subs := make([]subscriber[S], len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(state)
	}
}

// Len returns the number of subscribers.
func (l *Listeners[S]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

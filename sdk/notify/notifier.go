// Package notify provides owned signal emitters with explicit subscriber
// lifetime. A Notifier fans a value out to every live subscriber; it replaces
// ambient global notification objects with a value the emitting component
// owns and exposes.
package notify

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
)

// Option configures a Notifier at construction time.
type Option func(*settings)

type settings struct {
	debounceInterval time.Duration
}

// WithDebounce coalesces bursts of emissions: subscribers see a single
// trailing-edge call carrying the last value notified within the interval.
// Only meaningful for payload-free signals where intermediate values carry no
// information.
func WithDebounce(interval time.Duration) Option {
	return func(s *settings) {
		s.debounceInterval = interval
	}
}

// Notifier is a signal emitter carrying values of type T. The zero value is
// not usable; construct with New.
type Notifier[T any] struct {
	mu       sync.RWMutex
	subs     map[uuid.UUID]func(T)
	debounce func(func())
}

// New constructs a Notifier.
func New[T any](opts ...Option) *Notifier[T] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	n := &Notifier[T]{subs: make(map[uuid.UUID]func(T))}
	if s.debounceInterval > 0 {
		n.debounce = debounce.New(s.debounceInterval)
	}
	return n
}

// Subscription identifies one subscriber of a Notifier.
type Subscription[T any] struct {
	id       uuid.UUID
	notifier *Notifier[T]
}

// Subscribe registers fn to be called on every emission. fn runs on the
// emitting goroutine and must not block.
func (n *Notifier[T]) Subscribe(fn func(T)) Subscription[T] {
	id := uuid.New()

	n.mu.Lock()
	n.subs[id] = fn
	n.mu.Unlock()

	return Subscription[T]{id: id, notifier: n}
}

// Unsubscribe removes the subscriber. Safe to call more than once.
func (s Subscription[T]) Unsubscribe() {
	if s.notifier == nil {
		return
	}
	s.notifier.mu.Lock()
	delete(s.notifier.subs, s.id)
	s.notifier.mu.Unlock()
}

// Notify emits v to all current subscribers. The subscriber set is
// snapshotted first, so a subscriber may unsubscribe (itself or others)
// from within its callback.
func (n *Notifier[T]) Notify(v T) {
	if n.debounce != nil {
		n.debounce(func() { n.fanOut(v) })
		return
	}
	n.fanOut(v)
}

func (n *Notifier[T]) fanOut(v T) {
	n.mu.RLock()
	fns := make([]func(T), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

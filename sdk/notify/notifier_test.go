package notify

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifyFansOut(t *testing.T) {
	n := New[int]()

	var first, second []int
	subA := n.Subscribe(func(v int) { first = append(first, v) })
	subB := n.Subscribe(func(v int) { second = append(second, v) })

	n.Notify(1)
	n.Notify(2)

	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{1, 2}, second)

	subA.Unsubscribe()
	n.Notify(3)

	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{1, 2, 3}, second)

	subB.Unsubscribe()
	subB.Unsubscribe() // safe to repeat
	n.Notify(4)
	assert.Equal(t, []int{1, 2, 3}, second)
}

func TestSubscriberMayUnsubscribeDuringNotify(t *testing.T) {
	n := New[struct{}]()

	var calls int
	var sub Subscription[struct{}]
	sub = n.Subscribe(func(struct{}) {
		calls++
		sub.Unsubscribe()
	})

	n.Notify(struct{}{})
	n.Notify(struct{}{})
	assert.Equal(t, 1, calls)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	n := New[struct{}](WithDebounce(20 * time.Millisecond))

	var calls atomic.Int32
	n.Subscribe(func(struct{}) { calls.Add(1) })

	for i := 0; i < 5; i++ {
		n.Notify(struct{}{})
	}

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// A later burst emits again.
	n.Notify(struct{}{})
	assert.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestZeroSubscribersIsFine(t *testing.T) {
	n := New[string]()
	assert.NotPanics(t, func() { n.Notify("nobody listening") })
}

package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogoutBroadcast_PublishReachesAllSubscribers(t *testing.T) {
	b := New()

	var first, second int
	b.Subscribe(func() { first++ })
	b.Subscribe(func() { second++ })

	b.Publish()
	b.Publish()

	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second)
}

func TestLogoutBroadcast_Unsubscribe(t *testing.T) {
	b := New()

	var calls int
	unsubscribe := b.Subscribe(func() { calls++ })

	b.Publish()
	unsubscribe()
	unsubscribe() // second call is a no-op
	b.Publish()

	assert.Equal(t, 1, calls)
}

func TestLogoutBroadcast_UnsubscribeDuringPublish(t *testing.T) {
	b := New()

	var selfCalls, otherCalls int
	var unsubscribeSelf func()
	unsubscribeSelf = b.Subscribe(func() {
		selfCalls++
		unsubscribeSelf()
	})
	b.Subscribe(func() { otherCalls++ })

	// Must not deadlock or skip the other subscriber.
	b.Publish()
	b.Publish()

	assert.Equal(t, 1, selfCalls)
	assert.Equal(t, 2, otherCalls)
}

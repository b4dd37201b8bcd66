package fanout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New(10)
	queue, _ := b.Subscribe("trades:BTC-USD")

	b.Publish("trades:BTC-USD", "first")
	b.Publish("trades:BTC-USD", "second")

	select {
	case msg := <-queue:
		assert.Equal(t, "first", msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	select {
	case msg := <-queue:
		assert.Equal(t, "second", msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublishIgnoresOtherTopics(t *testing.T) {
	b := New(10)
	queue, _ := b.Subscribe("trades:BTC-USD")

	b.Publish("trades:ETH-USD", "noise")

	select {
	case <-queue:
		t.Fatal("should not have received a message for another topic")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	var dropped []string
	b := New(1, WithDropHook(func(topic string) { dropped = append(dropped, topic) }))
	queue, _ := b.Subscribe("md:BTC-USD")

	b.Publish("md:BTC-USD", "one")
	b.Publish("md:BTC-USD", "two")

	require.Len(t, dropped, 1)
	assert.Equal(t, "md:BTC-USD", dropped[0])
	assert.Equal(t, "one", <-queue)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(10)
	queue, handle := b.Subscribe("trades:BTC-USD")
	b.Unsubscribe("trades:BTC-USD", handle)

	b.Publish("trades:BTC-USD", "after unsubscribe")

	select {
	case <-queue:
		t.Fatal("should not receive after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

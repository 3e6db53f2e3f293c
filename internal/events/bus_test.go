package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe(EventNowPlaying)
	defer b.Unsubscribe(EventNowPlaying, sub)

	b.Publish(EventNowPlaying, Payload{"title": "a"})

	select {
	case payload := <-sub:
		if payload["title"] != "a" {
			t.Fatalf("unexpected payload: %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("event never delivered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe(EventQueueUpdated)
	b.Unsubscribe(EventQueueUpdated, sub)

	if _, ok := <-sub; ok {
		t.Fatalf("channel should be closed after unsubscribe")
	}

	// Publishing after removal must not reach (or panic on) the old channel.
	b.Publish(EventQueueUpdated, Payload{"length": 1})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe(EventQueueUpdated)
	defer b.Unsubscribe(EventQueueUpdated, sub)

	// Overfill well past the channel buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(EventQueueUpdated, Payload{"length": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestConcurrentPublishAndUnsubscribe(t *testing.T) {
	b := NewBus()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					b.Publish(EventQueueUpdated, Payload{"length": 0})
				}
			}
		}()
	}

	// Churning subscribers under concurrent publishes must never panic
	// with a send on a closed channel.
	for i := 0; i < 500; i++ {
		sub := b.Subscribe(EventQueueUpdated)
		b.Unsubscribe(EventQueueUpdated, sub)
	}

	close(stop)
	wg.Wait()
}

package bus

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newQuietBus() *Bus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func receiveWithin(t *testing.T, sub Subscription, timeout time.Duration) (any, bool) {
	t.Helper()

	select {
	case msg, ok := <-sub:
		return msg, ok
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for message")
	}

	return nil, false
}

func TestBus_PublishReachesSubscriber(t *testing.T) {
	b := newQuietBus()
	defer b.Close()

	sub := b.Subscribe("conv.batch")
	b.Publish("conv.batch", "payload")

	msg, ok := receiveWithin(t, sub, 2*time.Second)
	if !ok {
		t.Fatalf("expected open subscription")
	}
	if msg != "payload" {
		t.Fatalf("expected payload, got %v", msg)
	}
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	b := newQuietBus()
	defer b.Close()

	batchSub := b.Subscribe("conv.batch")
	typingSub := b.Subscribe("typing.status")

	b.Publish("typing.status", "typing")

	msg, _ := receiveWithin(t, typingSub, 2*time.Second)
	if msg != "typing" {
		t.Fatalf("expected typing payload, got %v", msg)
	}

	select {
	case msg := <-batchSub:
		t.Fatalf("expected no delivery on other topic, got %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_UnsubscribeClosesSubscription(t *testing.T) {
	b := newQuietBus()
	defer b.Close()

	sub := b.Subscribe("conv.batch")
	b.Unsubscribe(sub, "conv.batch")

	if _, ok := receiveWithin(t, sub, 2*time.Second); ok {
		t.Fatalf("expected subscription to close after unsubscribe")
	}
}

func TestBus_CloseClosesSubscriptions(t *testing.T) {
	b := newQuietBus()

	sub := b.Subscribe("conv.batch")
	b.Close()

	if _, ok := receiveWithin(t, sub, 2*time.Second); ok {
		t.Fatalf("expected subscription to close after bus shutdown")
	}
}

package broker

import (
	"testing"
	"time"
)

func event(chatID, messageID, text string) *Event {
	return &Event{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// receive pops one event or fails the test.
func receive(t *testing.T, sub *Subscription) *Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		if !ok {
			t.Fatal("event stream closed unexpectedly")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestPublishFIFOPerSubscriber(t *testing.T) {
	b := New(Config{})
	sub := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "bob"})
	defer sub.Close()

	b.Publish("chat-1", event("chat-1", "m1", "first"))
	b.Publish("chat-1", event("chat-1", "m2", "second"))
	b.Publish("chat-1", event("chat-1", "m3", "third"))

	for _, want := range []string{"m1", "m2", "m3"} {
		if got := receive(t, sub).MessageID; got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestSlowSubscriberDoesNotBlockPeers(t *testing.T) {
	// Queue of 1: the stalled subscriber saturates immediately.
	b := New(Config{QueueSize: 1})
	stalled := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "slow"})
	defer stalled.Close()
	healthy := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "fast"})
	defer healthy.Close()

	// Nobody reads from stalled; its queue fills after one event.
	for i, id := range []string{"m1", "m2", "m3"} {
		b.Publish("chat-1", event("chat-1", id, "payload"))
		_ = i
	}

	// The healthy subscriber received everything, in order.
	for _, want := range []string{"m1", "m2", "m3"} {
		if got := receive(t, healthy).MessageID; got != want {
			t.Fatalf("healthy subscriber expected %s, got %s", want, got)
		}
	}

	if got := stalled.Dropped(); got != 2 {
		t.Errorf("stalled subscriber should have dropped 2 events, dropped %d", got)
	}
}

func TestUnregisterThenPublish(t *testing.T) {
	b := New(Config{})
	sub := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "bob"})

	sub.Close()

	b.Publish("chat-1", event("chat-1", "m1", "late"))

	// The stream is closed and drained: no event may arrive.
	select {
	case e, ok := <-sub.Events():
		if ok {
			t.Fatalf("received event %s after unregister", e.MessageID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("stream should be closed after unregister")
	}

	if n := b.Registry().Len("chat-1"); n != 0 {
		t.Errorf("registry should be empty, has %d", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := New(Config{})
	sub := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1"})
	sub.Close()
	sub.Close() // must not panic
}

func TestFilterScopesDelivery(t *testing.T) {
	b := New(Config{})
	inRoom := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "bob"})
	defer inRoom.Close()
	elsewhere := b.Subscribe("chat-2", FilterContext{ChatID: "chat-2", UserID: "carol"})
	defer elsewhere.Close()

	b.Publish("chat-1", event("chat-1", "m1", "hi"))

	if got := receive(t, inRoom); got.Text != "hi" {
		t.Fatalf("expected text %q, got %q", "hi", got.Text)
	}

	select {
	case e := <-elsewhere.Events():
		t.Fatalf("subscriber on another chat received %s", e.MessageID)
	default:
	}
}

func TestCustomFilterDropsSilently(t *testing.T) {
	b := New(Config{})
	none := b.SubscribeFunc("chat-1", FilterContext{ChatID: "chat-1"}, func(*Event, FilterContext) bool {
		return false
	})
	defer none.Close()
	all := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1"})
	defer all.Close()

	b.Publish("chat-1", event("chat-1", "m1", "hi"))

	if got := receive(t, all).MessageID; got != "m1" {
		t.Fatalf("unfiltered subscriber expected m1, got %s", got)
	}
	select {
	case <-none.Events():
		t.Fatal("filtered subscriber should receive nothing")
	default:
	}
}

func TestGroupChatFanOut(t *testing.T) {
	// A creates a group with B and C; A sends "hi"; B and C each get exactly
	// one event; a subscriber on a different chat gets nothing.
	b := New(Config{})
	subB := b.Subscribe("group-1", FilterContext{ChatID: "group-1", UserID: "B"})
	defer subB.Close()
	subC := b.Subscribe("group-1", FilterContext{ChatID: "group-1", UserID: "C"})
	defer subC.Close()
	subOther := b.Subscribe("group-2", FilterContext{ChatID: "group-2", UserID: "D"})
	defer subOther.Close()

	e := event("group-1", "m1", "hi")
	e.SenderID = "A"
	b.Publish("group-1", e)

	for _, sub := range []*Subscription{subB, subC} {
		got := receive(t, sub)
		if got.Text != "hi" || got.SenderID != "A" {
			t.Fatalf("expected hi from A, got %q from %q", got.Text, got.SenderID)
		}
		select {
		case extra := <-sub.Events():
			t.Fatalf("subscriber received extra event %s", extra.MessageID)
		default:
		}
	}

	select {
	case e := <-subOther.Events():
		t.Fatalf("subscriber on another chat received %s", e.MessageID)
	default:
	}
}

func TestMultiDeviceSameUserSameTopic(t *testing.T) {
	b := New(Config{})
	phone := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "bob"})
	defer phone.Close()
	laptop := b.Subscribe("chat-1", FilterContext{ChatID: "chat-1", UserID: "bob"})
	defer laptop.Close()

	b.Publish("chat-1", event("chat-1", "m1", "hi"))

	if receive(t, phone).MessageID != "m1" {
		t.Error("phone should receive the event")
	}
	if receive(t, laptop).MessageID != "m1" {
		t.Error("laptop should receive the event")
	}
}

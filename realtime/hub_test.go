package realtime

import (
	"testing"
	"time"
)

func TestHubSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("course-1")

	hub.Broadcast("course-1", 7)

	select {
	case update := <-sub.Channel:
		if update.Type != "attendance_update" || update.PresentCount != 7 {
			t.Errorf("got %+v, want attendance_update/7", update)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for broadcast")
	}
}

func TestHubBroadcastIsolatedByCourse(t *testing.T) {
	hub := NewHub(nil)
	subA := hub.Subscribe("course-a")
	subB := hub.Subscribe("course-b")

	hub.Broadcast("course-a", 3)

	select {
	case <-subA.Channel:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("course-a subscriber should have received the update")
	}

	select {
	case <-subB.Channel:
		t.Fatal("course-b subscriber should not receive course-a's update")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestHubBroadcastNoSubscribers(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("course-nonexistent", 0) // must not panic or block
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("course-1")

	hub.Unsubscribe(sub)

	if _, ok := <-sub.Channel; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
	if got := hub.SubscriberCount("course-1"); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}

func TestHubUnsubscribeIdempotent(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("course-1")

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub) // must not panic on double-close
}

func TestHubUnsubscribeUnknownHandle(t *testing.T) {
	hub := NewHub(nil)
	sub := &Subscriber{Channel: make(chan Update, 1), CourseID: "course-1"}

	hub.Unsubscribe(sub) // never registered; must be a no-op
}

func TestHubMultipleSubscribersSameCourse(t *testing.T) {
	hub := NewHub(nil)
	subs := make([]*Subscriber, 3)
	for i := range subs {
		subs[i] = hub.Subscribe("course-1")
	}

	if got := hub.SubscriberCount("course-1"); got != 3 {
		t.Fatalf("SubscriberCount() = %d, want 3", got)
	}

	hub.Broadcast("course-1", 5)
	for i, sub := range subs {
		select {
		case update := <-sub.Channel:
			if update.PresentCount != 5 {
				t.Errorf("subscriber %d: PresentCount = %d, want 5", i, update.PresentCount)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for broadcast", i)
		}
	}
}

func TestHubBroadcastSkipsFullChannel(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("course-1")

	hub.Broadcast("course-1", 1)
	hub.Broadcast("course-1", 2)
	hub.Broadcast("course-1", 3)
	hub.Broadcast("course-1", 4)
	hub.Broadcast("course-1", 5) // channel buffer is 4; this one is dropped

	// must not block or panic; draining never errors
	for i := 0; i < 4; i++ {
		<-sub.Channel
	}
}

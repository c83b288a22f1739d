package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewEventBus(16)
	defer bus.Stop()

	var mu sync.Mutex
	var got []Event
	done := make(chan struct{}, 1)

	bus.Subscribe(EventTypeDetectionSample, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Publish(NewDetectionSampleEvent("main_menu", "join_button", 0.91, true))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscriber never received the event")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got[0].Data["menu"] != "main_menu" || got[0].Data["matched"] != true {
		t.Errorf("Unexpected event data: %+v", got[0].Data)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Timestamp should be set on publish")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(16)
	defer bus.Stop()

	received := make(chan Event, 4)
	id := bus.Subscribe(EventTypeWindowLost, func(e Event) { received <- e })

	if bus.GetSubscriberCount(EventTypeWindowLost) != 1 {
		t.Fatal("Expected 1 subscriber after Subscribe")
	}

	bus.Unsubscribe(id)
	if bus.GetSubscriberCount(EventTypeWindowLost) != 0 {
		t.Fatal("Expected 0 subscribers after Unsubscribe")
	}

	bus.Publish(NewWindowLostEvent("shootergame.exe"))
	select {
	case e := <-received:
		t.Fatalf("Unsubscribed handler still received %v", e.Type)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHandlerPanicDoesNotKillBus(t *testing.T) {
	bus := NewEventBus(16)
	defer bus.Stop()

	done := make(chan struct{}, 1)
	bus.Subscribe(EventTypeError, func(Event) { panic("handler blew up") })
	bus.Subscribe(EventTypeMenuChanged, func(Event) { done <- struct{}{} })

	bus.Publish(Event{Type: EventTypeError, Data: map[string]interface{}{}})
	bus.Publish(NewMenuChangedEvent("main_menu", "server_browser"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Bus stopped dispatching after a handler panic")
	}
}

package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	// Detection events
	EventTypeDetectionSample EventType = "detection.sample"
	EventTypeMenuChanged     EventType = "menu.changed"

	// Window events
	EventTypeWindowFound EventType = "window.found"
	EventTypeWindowLost  EventType = "window.lost"

	// Task events
	EventTypeTaskQueued    EventType = "task.queued"
	EventTypeTaskCompleted EventType = "task.completed"
	EventTypeTaskFailed    EventType = "task.failed"

	// Error events
	EventTypeError EventType = "error"
)

// Event represents a system event with metadata
type Event struct {
	Type      EventType              // Type of event
	Source    string                 // Component that emitted event (e.g., "loop", "worker")
	Timestamp time.Time              // When the event occurred
	Data      map[string]interface{} // Event-specific data
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// EventBus defines the interface for event pub/sub
type EventBus interface {
	// Subscribe registers a handler for a specific event type
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID

	// Unsubscribe removes a subscription by ID
	Unsubscribe(id SubscriptionID)

	// Publish sends an event to all subscribers (blocking)
	Publish(event Event)

	// PublishAsync sends an event asynchronously (non-blocking)
	PublishAsync(event Event)

	// Stop stops the event bus and drains remaining events
	Stop()
}

// Helper functions to create common events

// NewDetectionSampleEvent creates an event for one emitted classification.
func NewDetectionSampleEvent(menu, anchor string, score float64, matched bool) Event {
	return Event{
		Type:      EventTypeDetectionSample,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"menu":    menu,
			"anchor":  anchor,
			"score":   score,
			"matched": matched,
		},
	}
}

// NewMenuChangedEvent creates an event for a committed menu transition.
func NewMenuChangedEvent(fromMenu, toMenu string) Event {
	return Event{
		Type:      EventTypeMenuChanged,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"from": fromMenu,
			"to":   toMenu,
		},
	}
}

// NewWindowFoundEvent creates an event for a resolved target window.
func NewWindowFoundEvent(processName, region string) Event {
	return Event{
		Type:      EventTypeWindowFound,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"process": processName,
			"region":  region,
		},
	}
}

// NewWindowLostEvent creates an event for a target window that disappeared.
func NewWindowLostEvent(processName string) Event {
	return Event{
		Type:      EventTypeWindowLost,
		Source:    "loop",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"process": processName,
		},
	}
}

// NewTaskCompletedEvent creates an event for a finished task.
func NewTaskCompletedEvent(label string, duration time.Duration) Event {
	return Event{
		Type:      EventTypeTaskCompleted,
		Source:    "worker",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"label":       label,
			"duration_ms": duration.Milliseconds(),
		},
	}
}

// NewTaskFailedEvent creates an event for a task that returned an error.
func NewTaskFailedEvent(label string, err error) Event {
	return Event{
		Type:      EventTypeTaskFailed,
		Source:    "worker",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"label": label,
			"error": err.Error(),
		},
	}
}

// NewErrorEvent creates an error event
func NewErrorEvent(source, component string, err error, metadata map[string]interface{}) Event {
	data := map[string]interface{}{
		"source":    source,
		"component": component,
		"error":     err.Error(),
	}

	// Merge metadata
	for k, v := range metadata {
		data[k] = v
	}

	return Event{
		Type:      EventTypeError,
		Source:    source,
		Timestamp: time.Now(),
		Data:      data,
	}
}

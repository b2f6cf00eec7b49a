// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Scene event types
const (
	ModeChanged         Type = "mode_changed"
	PhaseChanged        Type = "phase_changed"
	TransitionStarted   Type = "transition_started"
	TransitionCompleted Type = "transition_completed"
	ResetRequested      Type = "reset_requested"
	ViewportFlipped     Type = "viewport_flipped"
	ViewportResized     Type = "viewport_resized"
	LoadingFadeStarted  Type = "loading_fade_started"
	LoadingFinished     Type = "loading_finished"
	FrameDropped        Type = "frame_dropped"
	BodyHovered         Type = "body_hovered"
	BodySelected        Type = "body_selected"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// SubscriptionID identifies a registered handler so it can be removed
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine, i.e. inside the frame tick.
type Bus struct {
	handlers map[Type][]subscription
	nextID   SubscriptionID
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a handler for a specific event type
func (b *Bus) Unsubscribe(eventType Type, id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.handlers[eventType]
	if !ok {
		return
	}

	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Specific event implementations

// ModeEvent reports a layout mode or phase change
type ModeEvent struct {
	BaseEvent
	From      string
	To        string
	FromPhase string
	ToPhase   string
}

// NewModeEvent creates a new mode event
func NewModeEvent(eventType Type, source interface{}, from, to, fromPhase, toPhase string) *ModeEvent {
	return &ModeEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		From:      from,
		To:        to,
		FromPhase: fromPhase,
		ToPhase:   toPhase,
	}
}

// ViewportEvent reports a viewport change
type ViewportEvent struct {
	BaseEvent
	Width       float64
	Height      float64
	Scale       float64
	Constrained bool
}

// NewViewportEvent creates a new viewport event
func NewViewportEvent(eventType Type, source interface{}, width, height, scale float64, constrained bool) *ViewportEvent {
	return &ViewportEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Width:       width,
		Height:      height,
		Scale:       scale,
		Constrained: constrained,
	}
}

// BodyEvent reports an interaction with one body
type BodyEvent struct {
	BaseEvent
	BodyID int
	Active bool
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, bodyID int, active bool) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		BodyID: bodyID,
		Active: active,
	}
}

// FrameEvent reports a tick that failed and kept the previous frame
type FrameEvent struct {
	BaseEvent
	Tick  uint64
	Cause string
}

// NewFrameEvent creates a new frame event
func NewFrameEvent(source interface{}, tick uint64, cause string) *FrameEvent {
	return &FrameEvent{
		BaseEvent: BaseEvent{
			EventType: FrameDropped,
			Source:    source,
		},
		Tick:  tick,
		Cause: cause,
	}
}

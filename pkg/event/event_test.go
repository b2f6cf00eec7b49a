// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"
)

func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	if bus == nil {
		t.Fatal("NewEventBus() returned nil")
	}
	if bus.handlers == nil {
		t.Error("handlers map not initialized")
	}
	if bus.nextID != 1 {
		t.Errorf("expected nextID to be 1, got %d", bus.nextID)
	}
}

func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
	}{
		{"ModeChanged event", ModeChanged, "test_source"},
		{"ViewportFlipped event", ViewportFlipped, 123},
		{"Empty source", LoadingFinished, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &BaseEvent{EventType: tt.eventType, Source: tt.source}

			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}
			if event.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", event.GetSource(), tt.source)
			}
		})
	}
}

func TestBusSubscribe_MultipleHandlers_UniqueIDs(t *testing.T) {
	bus := NewEventBus()
	a := bus.Subscribe(ModeChanged, func(Event) {})
	b := bus.Subscribe(ModeChanged, func(Event) {})
	if a == b {
		t.Errorf("expected unique subscription ids, got %d twice", a)
	}
	if len(bus.handlers[ModeChanged]) != 2 {
		t.Errorf("expected 2 handlers, got %d", len(bus.handlers[ModeChanged]))
	}
}

func TestBusPublish_WithSubscribers_CallsAllHandlers(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(TransitionStarted, func(Event) { calls++ })
	}

	bus.Publish(&BaseEvent{EventType: TransitionStarted})

	if calls != 3 {
		t.Errorf("expected 3 handler calls, got %d", calls)
	}
}

func TestBusPublish_WrongEventType_HandlersNotCalled(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(ResetRequested, func(Event) { called = true })

	bus.Publish(&BaseEvent{EventType: FrameDropped})

	if called {
		t.Error("handler called for a different event type")
	}
}

func TestBusPublish_NilBus_NoPanic(t *testing.T) {
	var bus *Bus
	bus.Publish(&BaseEvent{EventType: ModeChanged})
}

func TestBusUnsubscribe_RemovesOnlyTarget(t *testing.T) {
	bus := NewEventBus()
	var got []string
	first := bus.Subscribe(PhaseChanged, func(Event) { got = append(got, "first") })
	bus.Subscribe(PhaseChanged, func(Event) { got = append(got, "second") })
	bus.Subscribe(ModeChanged, func(Event) { got = append(got, "other") })

	bus.Unsubscribe(PhaseChanged, first)
	bus.Unsubscribe(LoadingFinished, first) // unknown type is a no-op
	bus.Publish(&BaseEvent{EventType: PhaseChanged})
	bus.Publish(&BaseEvent{EventType: ModeChanged})

	if len(got) != 2 || got[0] != "second" || got[1] != "other" {
		t.Errorf("unexpected handler calls: %v", got)
	}
}

func TestBusSubscribe_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(ViewportResized, func(Event) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			bus.Publish(&BaseEvent{EventType: BodyHovered})
		}()
	}
	wg.Wait()

	bus.Publish(&BaseEvent{EventType: ViewportResized})
	if count != 20 {
		t.Errorf("expected 20 handler calls, got %d", count)
	}
}

func TestNewModeEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	e := NewModeEvent(ModeChanged, "ctl", "orbiting", "resetting", "none", "none")
	if e.GetType() != ModeChanged || e.From != "orbiting" || e.To != "resetting" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestNewViewportEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	e := NewViewportEvent(ViewportFlipped, nil, 600, 800, 0.7, true)
	if e.Width != 600 || e.Height != 800 || e.Scale != 0.7 || !e.Constrained {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestNewBodyAndFrameEvents(t *testing.T) {
	b := NewBodyEvent(BodySelected, nil, 3, true)
	if b.BodyID != 3 || !b.Active || b.GetType() != BodySelected {
		t.Errorf("unexpected body event: %+v", b)
	}
	f := NewFrameEvent(nil, 42, "boom")
	if f.Tick != 42 || f.Cause != "boom" || f.GetType() != FrameDropped {
		t.Errorf("unexpected frame event: %+v", f)
	}
}

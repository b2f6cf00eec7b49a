// pkg/engine/race_condition_test.go
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/event"
)

// TestControllerRaceCondition drives ticks while input, viewport and reset
// requests arrive from other goroutines. Run with -race.
func TestControllerRaceCondition(t *testing.T) {
	c, bus, _ := newTestController(t, 71)

	// handlers that call back into the controller must not deadlock
	bus.Subscribe(event.ModeChanged, func(event.Event) { _ = c.Mode() })
	bus.Subscribe(event.BodyHovered, func(event.Event) { _ = c.Frame() })

	var wg sync.WaitGroup
	done := make(chan struct{})
	var clock sync.Mutex
	now := time.Duration(0)
	at := func() time.Duration {
		clock.Lock()
		defer clock.Unlock()
		return now
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				clock.Lock()
				now += tick
				clock.Unlock()
				c.Advance(at())
				time.Sleep(time.Millisecond)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			id := body.ID(i%c.Registry().Len() + 1)
			if err := c.SetHover(id, i%2 == 0); err != nil {
				t.Errorf("SetHover failed: %v", err)
				return
			}
			if err := c.SetFocus(id, i%3 == 0); err != nil {
				t.Errorf("SetFocus failed: %v", err)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			c.RequestModeSwitch(i%2 == 0, at())
			c.SetScale(0.5 + float64(i%3)*0.25)
			if i%5 == 0 {
				c.RequestReset(at())
			}
			c.SetSwarm(i%4 == 0)
			time.Sleep(2 * time.Millisecond)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.SetRotationPaused(i%2 == 0)
			c.SetPanel(i%3 == 0, 1)
			_, _ = c.BodyPosition(1)
			_ = c.Phase()
			_ = c.Constrained()
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	close(done)
	wg.Wait()

	frame := c.Frame()
	if len(frame.Transforms) != c.Registry().Len() {
		t.Errorf("frame lost bodies: %d transforms", len(frame.Transforms))
	}
}

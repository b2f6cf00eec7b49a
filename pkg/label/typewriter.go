// Package label drives the hover tooltip: the body name is typed out one
// character at a time next to the hovered body.
package label

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultInterval is the pause between two typed characters
const DefaultInterval = 80 * time.Millisecond

// Offset places the tooltip relative to the body's projected centre, in
// screen pixels
var Offset = r2.Vec{X: 10, Y: -30}

// Typewriter reveals a text at a fixed pace. It is driven from the frame
// loop and is not safe for concurrent use.
type Typewriter struct {
	interval time.Duration
	full     []rune
	shown    int
	last     time.Duration
	visible  bool
	anchor   r2.Vec
}

// NewTypewriter returns a hidden typewriter. A non-positive interval selects
// DefaultInterval.
func NewTypewriter(interval time.Duration) *Typewriter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Typewriter{interval: interval}
}

// Start begins typing text at now. Starting the text already being shown is
// a no-op, so hovering the same body every frame does not restart it.
func (t *Typewriter) Start(text string, now time.Duration) {
	t.visible = true
	if string(t.full) == text {
		return
	}
	t.full = []rune(text)
	t.shown = 0
	t.last = now
}

// Hide clears the tooltip
func (t *Typewriter) Hide() {
	t.visible = false
	t.full = nil
	t.shown = 0
}

// Update types at most one character once the interval has elapsed and
// returns the visible text
func (t *Typewriter) Update(now time.Duration) string {
	if t.shown < len(t.full) && now-t.last > t.interval {
		t.shown++
		t.last = now
	}
	return t.Text()
}

// Text is the part typed so far
func (t *Typewriter) Text() string {
	return string(t.full[:t.shown])
}

// Done reports whether the whole text has been typed
func (t *Typewriter) Done() bool {
	return t.shown == len(t.full)
}

// Visible reports whether the tooltip is showing
func (t *Typewriter) Visible() bool {
	return t.visible
}

// MoveTo anchors the tooltip next to a projected screen point
func (t *Typewriter) MoveTo(screen r2.Vec) {
	t.anchor = r2.Add(screen, Offset)
}

// Anchor is the tooltip's top-left corner in screen pixels
func (t *Typewriter) Anchor() r2.Vec {
	return t.anchor
}

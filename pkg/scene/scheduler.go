package scene

import (
	"context"
	"time"
)

// Scheduler delivers frame and resize callbacks. Callbacks are invoked from
// a single goroutine, never concurrently.
type Scheduler interface {
	OnFrame(fn func())
	OnResize(fn func(width, height float64))
	// Start blocks, dispatching callbacks until ctx is done
	Start(ctx context.Context) error
}

type size struct {
	w, h float64
}

// TickerScheduler fires frames from a time.Ticker. Resizes reported through
// Resize are coalesced and dispatched between frames.
type TickerScheduler struct {
	interval time.Duration
	frame    func()
	resize   func(width, height float64)
	resizes  chan size
}

// NewTickerScheduler creates a scheduler running at interval
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerScheduler{
		interval: interval,
		resizes:  make(chan size, 1),
	}
}

// OnFrame implements Scheduler
func (s *TickerScheduler) OnFrame(fn func()) { s.frame = fn }

// OnResize implements Scheduler
func (s *TickerScheduler) OnResize(fn func(width, height float64)) { s.resize = fn }

// Resize queues a viewport measurement. Only the latest pending one is kept.
func (s *TickerScheduler) Resize(width, height float64) {
	for {
		select {
		case s.resizes <- size{width, height}:
			return
		default:
		}
		select {
		case <-s.resizes:
		default:
		}
	}
}

// Start implements Scheduler. It returns nil when ctx is cancelled.
func (s *TickerScheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case sz := <-s.resizes:
			if s.resize != nil {
				s.resize(sz.w, sz.h)
			}
		case <-ticker.C:
			if s.frame != nil {
				s.frame()
			}
		}
	}
}

package scene

import (
	"time"

	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/easing"
)

// LoadingState is the stage of the loading overlay
type LoadingState int

const (
	LoadingWaiting LoadingState = iota
	LoadingFading
	LoadingDone
)

func (s LoadingState) String() string {
	switch s {
	case LoadingWaiting:
		return "waiting"
	case LoadingFading:
		return "fading"
	case LoadingDone:
		return "done"
	default:
		return "unknown"
	}
}

// Loading times the overlay shown while the emblem model loads. The fade
// starts a fixed delay after the model arrives or fails; if neither happens
// the fallback deadline starts it anyway.
type Loading struct {
	cfg     config.LoadingConfig
	created time.Duration

	state     LoadingState
	modelOK   bool
	scheduled time.Duration
	hasSched  bool
	fadeStart time.Duration
}

// NewLoading starts the overlay at now
func NewLoading(cfg config.LoadingConfig, now time.Duration) *Loading {
	return &Loading{cfg: cfg, created: now}
}

// ModelLoaded records the model's arrival
func (l *Loading) ModelLoaded(now time.Duration) {
	if l.modelOK {
		return
	}
	l.modelOK = true
	l.schedule(now + l.cfg.FadeDelay.Duration)
}

// ModelFailed records a load error. The scene goes on without the emblem.
func (l *Loading) ModelFailed(now time.Duration) {
	l.schedule(now + l.cfg.ErrorDelay.Duration)
}

func (l *Loading) schedule(at time.Duration) {
	if !l.hasSched || at < l.scheduled {
		l.scheduled = at
		l.hasSched = true
	}
}

// Update moves the overlay along and reports whether the fade started or
// finished during this call
func (l *Loading) Update(now time.Duration) (started, finished bool) {
	if l.state == LoadingWaiting {
		due := l.hasSched && now >= l.scheduled
		// the fallback only applies while the model has not arrived
		fallback := !l.modelOK && now-l.created >= l.cfg.Fallback.Duration
		if due || fallback {
			l.state = LoadingFading
			l.fadeStart = now
			started = true
		}
	}
	if l.state == LoadingFading && l.progress(now) >= 1 {
		l.state = LoadingDone
		finished = true
	}
	return started, finished
}

func (l *Loading) progress(now time.Duration) float64 {
	switch l.state {
	case LoadingWaiting:
		return 0
	case LoadingDone:
		return 1
	}
	return easing.Progress(now, l.fadeStart, l.cfg.FadeDuration.Duration)
}

// State returns the current stage
func (l *Loading) State() LoadingState {
	return l.state
}

// OverlayOpacity is 1 while waiting and falls to 0 over the fade
func (l *Loading) OverlayOpacity(now time.Duration) float64 {
	return 1 - l.progress(now)
}

// EmblemOpacity mirrors the overlay: the emblem fades in as it fades out
func (l *Loading) EmblemOpacity(now time.Duration) float64 {
	return l.progress(now)
}

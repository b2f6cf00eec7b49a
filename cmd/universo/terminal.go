package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/render"
	"github.com/opd-ai/go-universo/pkg/scene"
	"github.com/opd-ai/go-universo/pkg/viewport"
)

// zoomStep is the zoom factor per + or - key press
const zoomStep = 1.1

// controls is what terminal input drives on the scene
type controls interface {
	Resize(width, height float64, now time.Duration) viewport.Update
	PointerMove(x, y float64)
	PointerLeave()
	Click(x, y float64) (body.ID, bool)
	ClosePanel()
	Reset(now time.Duration)
	ToggleSwarm() bool
	SetRotationPaused(paused bool)
	ZoomBy(factor float64) float64
}

// terminalInput turns tcell events into scene calls
type terminalInput struct {
	scene   controls
	paused  bool
	pressed bool
}

// handle applies one event and reports whether the program should keep
// running
func (in *terminalInput) handle(ev tcell.Event, now time.Duration) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'r':
			in.scene.Reset(now)
		case 's':
			in.scene.ToggleSwarm()
		case 'p':
			in.paused = !in.paused
			in.scene.SetRotationPaused(in.paused)
		case 'c':
			in.scene.ClosePanel()
		case '+', '=':
			in.scene.ZoomBy(zoomStep)
		case '-':
			in.scene.ZoomBy(1 / zoomStep)
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := render.CellCenter(col, row)
		in.scene.PointerMove(x, y)
		// a click fires on press; holding the button does not repeat it
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !in.pressed {
			if _, ok := in.scene.Click(x, y); !ok {
				in.scene.ClosePanel()
			}
		}
		in.pressed = down
		switch {
		case ev.Buttons()&tcell.WheelUp != 0:
			in.scene.ZoomBy(zoomStep)
		case ev.Buttons()&tcell.WheelDown != 0:
			in.scene.ZoomBy(1 / zoomStep)
		}

	case *tcell.EventFocus:
		if !ev.Focused {
			in.scene.PointerLeave()
		}

	case *tcell.EventResize:
		cols, rows := ev.Size()
		w, h := render.PixelSize(cols, rows)
		in.scene.Resize(w, h, now)
	}
	return true
}

// runTerminal draws the scene on the terminal until the user quits
func runTerminal(ctx context.Context, cfg *config.SceneConfig, loader assets.Loader, bus *event.Bus, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnableFocus()
	screen.HideCursor()

	clock := scene.NewSystemClock()
	d, err := scene.New(cfg, scene.Options{
		Clock:    clock,
		Renderer: render.NewTerminalRenderer(screen),
		Bus:      bus,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	cols, rows := screen.Size()
	w, h := render.PixelSize(cols, rows)
	d.Resize(w, h, clock.Now())

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.LoadAssets(loadCtx, loader)

	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// screen finalised
				return
			}
			eventChan <- ev
		}
	}()

	input := &terminalInput{scene: d}
	log := logger.WithComponent("terminal")
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !input.handle(ev, clock.Now()) {
				log.Info(ctx, "Quit requested", "frames", d.Frame().Tick, "dropped", d.Dropped())
				return nil
			}

		case <-ticker.C:
			if err := d.Tick(clock.Now()); err != nil {
				return err
			}
		}
	}
}

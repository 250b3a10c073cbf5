package colorbar

import (
	"image"
	"sync"
	"time"

	"medrender/internal/debounce"
	"medrender/pkg/imagedata"
)

// Updater keeps a colorbar in sync with a viewport whose window/level state
// changes in bursts, typically while the user drags. Each Notify records the
// latest state and re-arms a debounce timer; once the state has been quiet
// for the configured delay, the bar is rendered once and handed to the
// callback.
type Updater struct {
	bar     *Colorbar
	onFrame func(*image.RGBA, error)

	mu   sync.Mutex
	last *imagedata.Viewport

	debouncer *debounce.Debouncer
}

// NewUpdater creates an Updater around the colorbar. onFrame receives every
// rendered frame, or the render error, on the debounce timer's goroutine.
func NewUpdater(bar *Colorbar, delay time.Duration, onFrame func(*image.RGBA, error)) *Updater {
	u := &Updater{
		bar:     bar,
		onFrame: onFrame,
	}
	u.debouncer = debounce.New(delay, u.render)
	return u
}

// Notify records the viewport's current state and schedules a render once
// the state stops changing. The viewport's window and flags are copied, so
// later mutations do not leak into the pending render.
func (u *Updater) Notify(vp *imagedata.Viewport) {
	if vp == nil {
		return
	}

	snapshot := &imagedata.Viewport{
		Invert:      vp.Invert,
		ModalityLUT: vp.ModalityLUT,
		VOILUT:      vp.VOILUT,
	}
	if vp.VOI != nil {
		w := *vp.VOI
		snapshot.VOI = &w
	}

	u.mu.Lock()
	u.last = snapshot
	u.mu.Unlock()

	u.debouncer.Trigger()
}

// Flush renders immediately with the last notified state instead of waiting
// out the quiet period.
func (u *Updater) Flush() {
	u.debouncer.Flush()
}

// Close stops the updater; a pending render is dropped and further Notify
// calls are ignored.
func (u *Updater) Close() {
	u.debouncer.Stop()
}

// render runs on the debounce timer with the most recent state
func (u *Updater) render() {
	u.mu.Lock()
	vp := u.last
	u.mu.Unlock()

	if vp == nil {
		return
	}

	u.onFrame(u.bar.Render(vp))
}

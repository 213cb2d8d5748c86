package page

import (
	"sync"
	"time"
)

// ButtonState is the visual state of the "Download Report" control.
type ButtonState int

const (
	ButtonReady ButtonState = iota
	ButtonBusy
	ButtonError
)

// DefaultErrorRevert is how long a failed download shows its error state.
const DefaultErrorRevert = 3 * time.Second

// DownloadButton tracks report generation feedback. A failed generation
// shows an error for a while and then reverts; it is never retried.
type DownloadButton struct {
	mu          sync.Mutex
	state       ButtonState
	revertAfter time.Duration
	timer       *time.Timer
	afterFunc   func(time.Duration, func()) *time.Timer
}

// NewDownloadButton returns a ready button.
func NewDownloadButton(revertAfter time.Duration) *DownloadButton {
	if revertAfter <= 0 {
		revertAfter = DefaultErrorRevert
	}
	return &DownloadButton{revertAfter: revertAfter, afterFunc: time.AfterFunc}
}

// Begin marks the button busy. It fails while a generation is running.
func (b *DownloadButton) Begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == ButtonBusy {
		return false
	}
	b.stopTimer()
	b.state = ButtonBusy
	return true
}

// Finish ends a generation started with Begin.
func (b *DownloadButton) Finish(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.state = ButtonReady
		return
	}
	b.state = ButtonError
	b.timer = b.afterFunc(b.revertAfter, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.state == ButtonError {
			b.state = ButtonReady
		}
	})
}

// Reset returns the button to ready immediately.
func (b *DownloadButton) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimer()
	b.state = ButtonReady
}

func (b *DownloadButton) State() ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Disabled reports whether the control accepts clicks.
func (b *DownloadButton) Disabled() bool {
	return b.State() == ButtonBusy
}

// Label is the text shown on the control.
func (b *DownloadButton) Label() string {
	switch b.State() {
	case ButtonBusy:
		return "Generating PDF..."
	case ButtonError:
		return "Error"
	default:
		return "Download Report"
	}
}

func (b *DownloadButton) stopTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

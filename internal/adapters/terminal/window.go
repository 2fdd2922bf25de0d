package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/minik/internal/app"
)

// resizeTextAreaOp is the XTWINOPS operation that resizes the text area in cells.
const resizeTextAreaOp = 8

// Logger receives window diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// Window resizes the hosting terminal with xterm window-manipulation sequences.
// Sequences go to the attached emitter, which owns the terminal output.
type Window struct {
	mu      sync.Mutex
	emit    func(seq string)
	enabled bool
	logger  Logger
	last    app.Size
}

// NewWindow constructs a window port. Nothing is written until Attach.
func NewWindow(enabled bool, logger Logger) *Window {
	return &Window{enabled: enabled, logger: logger}
}

// Attach sets the emitter that delivers escape sequences to the terminal.
func (w *Window) Attach(emit func(seq string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.emit = emit
	w.last = app.Size{}
}

// ResizeSequence returns the escape sequence that resizes the text area to size.
func ResizeSequence(size app.Size) string {
	return ansi.WindowOp(resizeTextAreaOp, size.Height, size.Width)
}

// Resize asks the terminal emulator to resize its text area to size cells.
func (w *Window) Resize(ctx context.Context, size app.Size) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", size.Width, size.Height)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled || w.emit == nil {
		return nil
	}
	if size == w.last {
		return nil
	}
	w.emit(ResizeSequence(size))
	w.last = size
	if w.logger != nil {
		w.logger.Debug("terminal resize requested", "cols", size.Width, "rows", size.Height)
	}
	return nil
}

// BeginDrag is a no-op: terminal emulators own window movement.
func (w *Window) BeginDrag(context.Context) error {
	if w.logger != nil {
		w.logger.Debug("window drag ignored in terminal host")
	}
	return nil
}

// LastSize returns the most recent size emitted.
func (w *Window) LastSize() app.Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

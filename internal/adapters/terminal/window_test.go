package terminal

import (
	"context"
	"testing"

	"github.com/evanschultz/minik/internal/app"
)

// TestResizeSequence verifies the XTWINOPS text-area resize encoding.
func TestResizeSequence(t *testing.T) {
	if got := ResizeSequence(app.Size{Width: 120, Height: 30}); got != "\x1b[8;30;120t" {
		t.Fatalf("unexpected sequence %q", got)
	}
}

// TestWindowResizeEmitsSequence verifies sequences reach the emitter once per size.
func TestWindowResizeEmitsSequence(t *testing.T) {
	var emitted []string
	w := NewWindow(true, nil)
	w.Attach(func(seq string) { emitted = append(emitted, seq) })

	if err := w.Resize(context.Background(), app.Size{Width: 120, Height: 30}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if err := w.Resize(context.Background(), app.Size{Width: 120, Height: 30}); err != nil {
		t.Fatalf("Resize() repeat error = %v", err)
	}
	if len(emitted) != 1 || emitted[0] != "\x1b[8;30;120t" {
		t.Fatalf("expected one resize sequence, got %q", emitted)
	}
	if w.LastSize() != (app.Size{Width: 120, Height: 30}) {
		t.Fatalf("unexpected last size %#v", w.LastSize())
	}
	if err := w.Resize(context.Background(), app.Size{Width: 80, Height: 12}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if len(emitted) != 2 || emitted[1] != "\x1b[8;12;80t" {
		t.Fatalf("expected second resize sequence, got %q", emitted)
	}
}

// TestWindowResizeWithoutEmitter verifies nothing is recorded before Attach.
func TestWindowResizeWithoutEmitter(t *testing.T) {
	w := NewWindow(true, nil)
	if err := w.Resize(context.Background(), app.Size{Width: 40, Height: 6}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if w.LastSize() != (app.Size{}) {
		t.Fatalf("expected no recorded size before attach, got %#v", w.LastSize())
	}
}

// TestWindowResizeDisabledAndInvalid verifies disabled hosts and bad sizes.
func TestWindowResizeDisabledAndInvalid(t *testing.T) {
	var emitted []string
	w := NewWindow(false, nil)
	w.Attach(func(seq string) { emitted = append(emitted, seq) })
	if err := w.Resize(context.Background(), app.Size{Width: 10, Height: 5}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("expected nothing emitted when disabled, got %q", emitted)
	}
	if err := w.Resize(context.Background(), app.Size{Width: 0, Height: 5}); err == nil {
		t.Fatal("expected error for zero width")
	}
	if err := w.BeginDrag(context.Background()); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
}

// Package deckdev is the boundary to the physical button display. The
// engine only ever talks to the Driver interface; implementations cover
// real hardware, a framebuffer preview and a no-op stub.
package deckdev

import (
	"context"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

// KeyEvent is one raw press or release on a device slot.
type KeyEvent struct {
	Slot    int
	Pressed bool
}

// SlotContent is what one slot displays: an optional label and the
// generated icon file name (stable path inside the cache).
type SlotContent struct {
	Name     string
	IconFile string
}

// Driver is the device session boundary.
type Driver interface {
	Start(ctx context.Context) error
	Close() error

	// SetSlots updates slot contents. With updateOnly, untouched slots keep
	// their current bitmap; otherwise the whole surface is replaced.
	SetSlots(slots map[int]SlotContent, updateOnly bool) error
	// SetBrightness sets the backlight, 0-100.
	SetBrightness(level int) error
	// Events streams raw key events until the driver closes.
	Events() <-chan KeyEvent

	SlotCount() int
	IconSize() (width int, height int)
}

// NoopDriver logs slot updates and produces no input. Default when no
// hardware is attached.
type NoopDriver struct {
	ch chan KeyEvent
}

func NewNoopDriver() *NoopDriver {
	return &NoopDriver{ch: make(chan KeyEvent)}
}

func (d *NoopDriver) Start(ctx context.Context) error { return nil }

func (d *NoopDriver) Close() error {
	close(d.ch)
	return nil
}

func (d *NoopDriver) SetSlots(slots map[int]SlotContent, updateOnly bool) error {
	logging.Debug("noop driver set slots",
		zap.Int("count", len(slots)),
		zap.Bool("update_only", updateOnly),
	)
	return nil
}

func (d *NoopDriver) SetBrightness(level int) error {
	logging.Debug("noop driver brightness", zap.Int("level", level))
	return nil
}

func (d *NoopDriver) Events() <-chan KeyEvent { return d.ch }

func (d *NoopDriver) SlotCount() int { return 15 }

func (d *NoopDriver) IconSize() (int, int) { return 100, 100 }

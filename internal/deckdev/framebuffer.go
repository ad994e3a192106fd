package deckdev

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"sync"

	fb "github.com/gonutz/framebuffer"
	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

// FramebufferDriver previews the deck surface on /dev/fb0 so the engine can
// run against a monitor when no deck hardware is present. It renders the
// slot grid into an offscreen canvas and blits it scaled to the
// framebuffer. There is no input hardware, so Events never fires.
type FramebufferDriver struct {
	iconDir string

	dev    *fb.Device
	canvas *image.RGBA
	ch     chan KeyEvent

	mu         sync.Mutex
	slots      map[int]SlotContent
	brightness int
}

const (
	fbSlotCount = 15
	fbColumns   = 5
	fbIconSize  = 100
	fbGutter    = 12
)

// NewFramebufferDriver creates a preview driver reading generated icons
// from iconDir.
func NewFramebufferDriver(iconDir string) *FramebufferDriver {
	return &FramebufferDriver{
		iconDir:    iconDir,
		ch:         make(chan KeyEvent),
		slots:      map[int]SlotContent{},
		brightness: 100,
	}
}

func (d *FramebufferDriver) Start(ctx context.Context) error {
	dev, err := fb.Open("/dev/fb0")
	if err != nil {
		return fmt.Errorf("open framebuffer: %w", err)
	}
	d.dev = dev

	bounds := dev.Bounds()
	d.canvas = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	logging.Info("framebuffer open",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)

	if err := setGraphicsMode(); err != nil {
		logging.Warn("console graphics mode failed", zap.Error(err))
	}
	return nil
}

func (d *FramebufferDriver) Close() error {
	if err := restoreTextMode(); err != nil {
		logging.Warn("console text mode restore failed", zap.Error(err))
	}
	close(d.ch)
	if d.dev != nil {
		d.dev.Close()
	}
	return nil
}

func (d *FramebufferDriver) SetSlots(slots map[int]SlotContent, updateOnly bool) error {
	d.mu.Lock()
	if !updateOnly {
		d.slots = map[int]SlotContent{}
	}
	for index, content := range slots {
		d.slots[index] = content
	}
	d.mu.Unlock()
	return d.redraw()
}

func (d *FramebufferDriver) SetBrightness(level int) error {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	d.mu.Lock()
	d.brightness = level
	d.mu.Unlock()
	return d.redraw()
}

func (d *FramebufferDriver) Events() <-chan KeyEvent { return d.ch }

func (d *FramebufferDriver) SlotCount() int { return fbSlotCount }

func (d *FramebufferDriver) IconSize() (int, int) { return fbIconSize, fbIconSize }

func (d *FramebufferDriver) redraw() error {
	if d.dev == nil {
		return nil
	}

	d.mu.Lock()
	slots := make(map[int]SlotContent, len(d.slots))
	for k, v := range d.slots {
		slots[k] = v
	}
	brightness := d.brightness
	d.mu.Unlock()

	draw.Draw(d.canvas, d.canvas.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	cell := fbIconSize + fbGutter
	for index := 0; index < fbSlotCount; index++ {
		content, ok := slots[index]
		if !ok || content.IconFile == "" {
			continue
		}
		img, err := d.loadIcon(content.IconFile)
		if err != nil {
			logging.Debug("preview icon load failed",
				zap.String("file", content.IconFile),
				zap.Error(err),
			)
			continue
		}
		x := fbGutter + (index%fbColumns)*cell
		y := fbGutter + (index/fbColumns)*cell
		dest := image.Rect(x, y, x+fbIconSize, y+fbIconSize)
		draw.Draw(d.canvas, dest, img, img.Bounds().Min, draw.Over)
	}

	d.blit(brightness)
	return nil
}

func (d *FramebufferDriver) loadIcon(name string) (image.Image, error) {
	f, err := os.Open(d.iconDir + "/" + name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// blit copies the canvas to the framebuffer, scaling pixel values by the
// simulated backlight level.
func (d *FramebufferDriver) blit(brightness int) {
	bounds := d.dev.Bounds()
	factor := uint32(brightness)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := d.canvas.RGBAAt(x-bounds.Min.X, y-bounds.Min.Y)
			d.dev.Set(x, y, color.RGBA{
				R: uint8(uint32(pixel.R) * factor / 100),
				G: uint8(uint32(pixel.G) * factor / 100),
				B: uint8(uint32(pixel.B) * factor / 100),
				A: 0xFF,
			})
		}
	}
}

package icon

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/homedeck/homedeck/internal/style"
)

// DrawText renders a single string onto a copy of the canvas. Horizontal
// position is always centered; vertical position follows the alignment and
// is then shifted by the pixel offset. Missing text, color or size returns
// the canvas unchanged.
func DrawText(canvas *image.RGBA, l *style.Layer, fonts *FontCache) *image.RGBA {
	if l.Text == "" || l.TextColor == "" || l.TextSize <= 0 {
		return canvas
	}

	face := fonts.Face(l.TextFont, l.TextSize)
	out := image.NewRGBA(canvas.Bounds())
	copy(out.Pix, canvas.Pix)

	drawer := &font.Drawer{
		Dst:  out,
		Src:  &image.Uniform{C: style.ParseHexColor(l.TextColor, 255)},
		Face: face,
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	textWidth := drawer.MeasureString(l.Text).Ceil()
	textHeight := ascent + metrics.Descent.Ceil()

	width := out.Bounds().Dx()
	height := out.Bounds().Dy()

	x := (width - textWidth) / 2
	var y int
	switch l.TextAlign {
	case style.AlignTop:
		y = 0
	case style.AlignCenter:
		y = (height - textHeight) / 2
	default: // bottom
		y = height - textHeight
	}

	x += l.TextOffset.X
	y += l.TextOffset.Y

	drawer.Dot = fixed.P(x, y+ascent)
	drawer.DrawString(l.Text)
	return out
}

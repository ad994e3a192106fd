package icon

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/homedeck/homedeck/internal/style"
)

// Editor primitives. Every operation returns a new bitmap; inputs are never
// mutated, which keeps cached bitmaps safe to share.

// Recolor sets every non-transparent pixel to the given color, preserving
// the alpha channel. Used for vector sources.
func Recolor(img *image.RGBA, hex string) *image.RGBA {
	if hex == "" {
		return img
	}
	target := style.ParseHexColor(hex, 0)
	out := image.NewRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		alpha := img.Pix[i+3]
		if alpha == 0 {
			continue
		}
		out.Pix[i] = target.R
		out.Pix[i+1] = target.G
		out.Pix[i+2] = target.B
		out.Pix[i+3] = alpha
	}
	return out
}

// ApplyBackground fills an opaque color behind the image's transparent
// pixels. An empty color is a no-op.
func ApplyBackground(img *image.RGBA, hex string) *image.RGBA {
	if hex == "" {
		return img
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), &image.Uniform{C: style.ParseHexColor(hex, 255)}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// ApplyPadding expands the canvas by padding on all sides, centering the
// original.
func ApplyPadding(img *image.RGBA, padding int) *image.RGBA {
	if padding <= 0 {
		return img
	}
	width := img.Bounds().Dx() + 2*padding
	height := img.Bounds().Dy() + 2*padding
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	dest := image.Rect(padding, padding, padding+img.Bounds().Dx(), padding+img.Bounds().Dy())
	draw.Draw(out, dest, img, img.Bounds().Min, draw.Over)
	return out
}

// Move expands the canvas by the absolute offset and shifts the placement,
// so an offset never clips the image.
func Move(img *image.RGBA, offset style.Offset) *image.RGBA {
	if offset.X == 0 && offset.Y == 0 {
		return img
	}
	width := img.Bounds().Dx() + abs(offset.X)
	height := img.Bounds().Dy() + abs(offset.Y)
	x := 0
	if offset.X > 0 {
		x = offset.X
	}
	y := 0
	if offset.Y > 0 {
		y = offset.Y
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	dest := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
	draw.Draw(out, dest, img, img.Bounds().Min, draw.Over)
	return out
}

// ApplyBorder draws an outer ring of the given width/color/corner radius
// around the image. The inner edge uses radius-width so the ring has even
// thickness. A zero width with a positive radius just clips the image to the
// rounded rectangle.
func ApplyBorder(img *image.RGBA, width int, hex string, radius int) *image.RGBA {
	if width > 0 && hex != "" {
		img = ApplyPadding(img, width)
		bounds := img.Bounds()
		w, h := bounds.Dx(), bounds.Dy()

		outerMask := roundedRectMask(w, h, radius)
		innerRadius := radius - width
		if innerRadius < 0 {
			innerRadius = 0
		}
		innerMask := insetMask(w, h, width, innerRadius)

		out := image.NewRGBA(bounds)
		borderFill := &image.Uniform{C: style.ParseHexColor(hex, 255)}
		draw.DrawMask(out, bounds, borderFill, image.Point{}, outerMask, bounds.Min, draw.Over)
		draw.DrawMask(out, bounds, img, bounds.Min, innerMask, bounds.Min, draw.Over)
		return out
	}
	if radius > 0 {
		return clipRounded(img, radius)
	}
	return img
}

// ApplyBrightness scales pixel values by brightness/100. Values of 0 or
// outside 1..100 are a no-op.
func ApplyBrightness(img *image.RGBA, brightness int) *image.RGBA {
	if brightness <= 0 || brightness > 100 {
		return img
	}
	out := image.NewRGBA(img.Bounds())
	factor := uint32(brightness)
	for i := 0; i < len(img.Pix); i += 4 {
		out.Pix[i] = uint8(uint32(img.Pix[i]) * factor / 100)
		out.Pix[i+1] = uint8(uint32(img.Pix[i+1]) * factor / 100)
		out.Pix[i+2] = uint8(uint32(img.Pix[i+2]) * factor / 100)
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// CropTo centers the image on a width x height canvas, cropping or padding
// as needed.
func CropTo(img *image.RGBA, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	x := (width - img.Bounds().Dx()) / 2
	y := (height - img.Bounds().Dy()) / 2
	dest := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
	draw.Draw(out, dest, img, img.Bounds().Min, draw.Over)
	return out
}

// Resize scales the image into size using one of the three modes: cover
// (scale + center crop, aspect preserved), contain (scale to fit, letterbox)
// or stretch (non-uniform).
func Resize(img *image.RGBA, mode string, size style.Size) *image.RGBA {
	srcW, srcH := img.Bounds().Dx(), img.Bounds().Dy()
	if srcW == 0 || srcH == 0 || size.W <= 0 || size.H <= 0 {
		return img
	}

	switch mode {
	case style.SizeModeContain:
		scale := min(float64(size.W)/float64(srcW), float64(size.H)/float64(srcH))
		w, h := scaled(srcW, srcH, scale)
		return CropTo(scaleTo(img, w, h), size.W, size.H)
	case style.SizeModeStretch:
		return scaleTo(img, size.W, size.H)
	default: // cover
		scale := max(float64(size.W)/float64(srcW), float64(size.H)/float64(srcH))
		w, h := scaled(srcW, srcH, scale)
		return CropTo(scaleTo(img, w, h), size.W, size.H)
	}
}

func scaleTo(img *image.RGBA, width, height int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return out
}

func scaled(w, h int, scale float64) (int, int) {
	return int(float64(w)*scale + 0.5), int(float64(h)*scale + 0.5)
}

// clipRounded zeroes everything outside the rounded rectangle.
func clipRounded(img *image.RGBA, radius int) *image.RGBA {
	bounds := img.Bounds()
	mask := roundedRectMask(bounds.Dx(), bounds.Dy(), radius)
	out := image.NewRGBA(bounds)
	draw.DrawMask(out, bounds, img, bounds.Min, mask, bounds.Min, draw.Src)
	return out
}

// roundedRectMask rasterizes an opaque rounded rectangle alpha mask.
func roundedRectMask(width, height, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	if radius < 0 {
		radius = 0
	}
	maxRadius := min(width, height) / 2
	if radius > maxRadius {
		radius = maxRadius
	}
	rr := float64(radius)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if radius > 0 {
				cx, cy := 0.0, 0.0
				inCorner := false
				switch {
				case x < radius && y < radius:
					cx, cy, inCorner = rr, rr, true
				case x >= width-radius && y < radius:
					cx, cy, inCorner = float64(width)-rr, rr, true
				case x < radius && y >= height-radius:
					cx, cy, inCorner = rr, float64(height)-rr, true
				case x >= width-radius && y >= height-radius:
					cx, cy, inCorner = float64(width)-rr, float64(height)-rr, true
				}
				if inCorner {
					dx := float64(x) + 0.5 - cx
					dy := float64(y) + 0.5 - cy
					if dx*dx+dy*dy > rr*rr {
						continue
					}
				}
			}
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return mask
}

// insetMask is a rounded rectangle mask shrunk by inset on all sides.
func insetMask(width, height, inset, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	innerW := width - 2*inset
	innerH := height - 2*inset
	if innerW <= 0 || innerH <= 0 {
		return mask
	}
	inner := roundedRectMask(innerW, innerH, radius)
	draw.Draw(mask, image.Rect(inset, inset, inset+innerW, inset+innerH), inner, image.Point{}, draw.Src)
	return mask
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

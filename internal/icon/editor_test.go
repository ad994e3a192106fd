package icon

import (
	"image"
	"image/color"
	"testing"

	"github.com/homedeck/homedeck/internal/style"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func dims(img *image.RGBA) (int, int) {
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestRecolorPreservesAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 128})
	// pixel (1,0) stays fully transparent

	out := Recolor(img, "FF0000")

	got := out.RGBAAt(0, 0)
	if got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("recolored pixel = %v", got)
	}
	if got.A != 128 {
		t.Errorf("alpha changed: %d", got.A)
	}
	if out.RGBAAt(1, 0).A != 0 {
		t.Error("transparent pixel gained coverage")
	}
	if img.RGBAAt(0, 0).R != 10 {
		t.Error("recolor mutated its input")
	}
}

func TestRecolorEmptyColorIsNoop(t *testing.T) {
	img := solid(2, 2, color.RGBA{R: 9, G: 9, B: 9, A: 255})
	if out := Recolor(img, ""); out != img {
		t.Error("empty color should return the input unchanged")
	}
}

func TestApplyBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	out := ApplyBackground(img, "00FF00")
	if got := out.RGBAAt(1, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("transparent pixel = %v, want the background", got)
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("opaque pixel = %v, want the foreground", got)
	}
}

func TestApplyPadding(t *testing.T) {
	img := solid(10, 6, color.RGBA{A: 255})
	out := ApplyPadding(img, 4)
	if w, h := dims(out); w != 18 || h != 14 {
		t.Errorf("dims = %dx%d, want 18x14", w, h)
	}
	if out.RGBAAt(0, 0).A != 0 {
		t.Error("padding should be transparent")
	}
	if out.RGBAAt(4, 4).A != 255 {
		t.Error("original content not centered")
	}
	if out2 := ApplyPadding(img, 0); out2 != img {
		t.Error("zero padding should be a no-op")
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name   string
		offset style.Offset
		wantW  int
		wantH  int
		probe  image.Point // a point that must be opaque after the move
	}{
		{"right down", style.Offset{X: 3, Y: 2}, 13, 8, image.Point{X: 3, Y: 2}},
		{"left up", style.Offset{X: -3, Y: -2}, 13, 8, image.Point{X: 0, Y: 0}},
		{"zero is noop", style.Offset{}, 10, 6, image.Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := solid(10, 6, color.RGBA{A: 255})
			out := Move(img, tt.offset)
			if w, h := dims(out); w != tt.wantW || h != tt.wantH {
				t.Errorf("dims = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if out.RGBAAt(tt.probe.X, tt.probe.Y).A != 255 {
				t.Errorf("pixel at %v should be opaque", tt.probe)
			}
		})
	}
}

func TestApplyBorder(t *testing.T) {
	t.Run("ring expands the canvas", func(t *testing.T) {
		img := solid(10, 10, color.RGBA{B: 255, A: 255})
		out := ApplyBorder(img, 2, "FF0000", 0)
		if w, h := dims(out); w != 14 || h != 14 {
			t.Errorf("dims = %dx%d, want 14x14", w, h)
		}
		if got := out.RGBAAt(0, 0); got.R != 255 || got.A != 255 {
			t.Errorf("corner = %v, want the border color", got)
		}
		if got := out.RGBAAt(7, 7); got.B != 255 {
			t.Errorf("center = %v, want the original content", got)
		}
	})

	t.Run("radius without width clips corners", func(t *testing.T) {
		img := solid(20, 20, color.RGBA{A: 255})
		out := ApplyBorder(img, 0, "", 8)
		if w, h := dims(out); w != 20 || h != 20 {
			t.Errorf("dims = %dx%d, clipping must not resize", w, h)
		}
		if out.RGBAAt(0, 0).A != 0 {
			t.Error("corner should be clipped transparent")
		}
		if out.RGBAAt(10, 10).A != 255 {
			t.Error("center should survive the clip")
		}
	})

	t.Run("no width no radius is a noop", func(t *testing.T) {
		img := solid(5, 5, color.RGBA{A: 255})
		if out := ApplyBorder(img, 0, "", 0); out != img {
			t.Error("want the input back")
		}
	})
}

func TestApplyBrightness(t *testing.T) {
	img := solid(1, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	out := ApplyBrightness(img, 50)
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 100, G: 50, B: 25, A: 255}) {
		t.Errorf("half brightness = %v", got)
	}

	for _, v := range []int{0, -1, 101} {
		if out := ApplyBrightness(img, v); out != img {
			t.Errorf("brightness %d should be a no-op", v)
		}
	}
}

func TestCropTo(t *testing.T) {
	img := solid(10, 10, color.RGBA{A: 255})

	larger := CropTo(img, 20, 20)
	if w, h := dims(larger); w != 20 || h != 20 {
		t.Errorf("dims = %dx%d", w, h)
	}
	if larger.RGBAAt(0, 0).A != 0 || larger.RGBAAt(10, 10).A != 255 {
		t.Error("content not centered on the larger canvas")
	}

	smaller := CropTo(img, 4, 4)
	if w, h := dims(smaller); w != 4 || h != 4 {
		t.Errorf("dims = %dx%d", w, h)
	}
	if smaller.RGBAAt(2, 2).A != 255 {
		t.Error("center crop lost the content")
	}
}

func TestResize(t *testing.T) {
	// 20x10 source into a 10x10 target.
	src := solid(20, 10, color.RGBA{R: 255, A: 255})

	tests := []struct {
		mode  string
		wantW int
		wantH int
	}{
		{style.SizeModeCover, 10, 10},
		{style.SizeModeContain, 10, 10},
		{style.SizeModeStretch, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			out := Resize(src, tt.mode, style.Size{W: tt.wantW, H: tt.wantH})
			if w, h := dims(out); w != tt.wantW || h != tt.wantH {
				t.Errorf("dims = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}

	t.Run("contain letterboxes", func(t *testing.T) {
		out := Resize(src, style.SizeModeContain, style.Size{W: 10, H: 10})
		if out.RGBAAt(5, 0).A != 0 {
			t.Error("top band should be transparent")
		}
		if out.RGBAAt(5, 5).A == 0 {
			t.Error("scaled content missing in the middle")
		}
	})

	t.Run("cover fills", func(t *testing.T) {
		out := Resize(src, style.SizeModeCover, style.Size{W: 10, H: 10})
		if out.RGBAAt(5, 0).A == 0 {
			t.Error("cover must fill the full target")
		}
	})
}

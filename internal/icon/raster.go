package icon

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/homedeck/homedeck/internal/style"
)

// decodeSource loads a layer's source file as RGBA. SVG sources are
// rasterized at the layer's icon size; raster sources decode at their
// native size and are resized later.
func decodeSource(path string, l *style.Layer) (*image.RGBA, error) {
	if strings.HasSuffix(strings.ToLower(path), ".svg") {
		return rasterizeSVG(path, l.Size.W, l.Size.H)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode source %s: %w", path, err)
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

func rasterizeSVG(path string, width, height int) (*image.RGBA, error) {
	svg, err := oksvg.ReadIcon(path, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg %s: %w", path, err)
	}
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	svg.SetTarget(0, 0, float64(width), float64(height))

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, out, out.Bounds())
	svg.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return out, nil
}

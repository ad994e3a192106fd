package icon

import (
	"image"
	"image/draw"

	"github.com/skip2/go-qrcode"
)

// drawQR rasterizes a QR code for the payload at the given square size.
// An empty payload yields nil (the layer renders blank).
func drawQR(payload string, sizePx int) (*image.RGBA, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = 256
	}

	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	img := code.Image(sizePx)
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

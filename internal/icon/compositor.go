// Package icon rasterizes style layers and composites them into button
// bitmaps. Every rendered layer and every composite is persisted to the
// asset cache under its fingerprint, so identical styling is rendered once.
package icon

import (
	"errors"
	"image"
	"image/draw"
	"sort"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/logging"
	"github.com/homedeck/homedeck/internal/style"
)

// Compositor owns the per-layer rasterizers and the shared caches.
type Compositor struct {
	store   *cache.Store
	fetcher *cache.Fetcher
	fonts   *FontCache
}

func NewCompositor(store *cache.Store, fetcher *cache.Fetcher, fonts *FontCache) *Compositor {
	return &Compositor{store: store, fetcher: fetcher, fonts: fonts}
}

// Composite rasterizes the layer stack onto a transparent maxWidth x
// maxHeight canvas, later layers over earlier ones. It returns the bitmap
// and the generated file name external callers reference it by. Layers
// whose assets are missing or broken render blank; they never abort the
// composite.
func (c *Compositor) Composite(maxWidth, maxHeight int, layers []style.Layer) (*image.RGBA, string, error) {
	sorted := make([]style.Layer, len(layers))
	copy(sorted, layers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ZIndex < sorted[j].ZIndex })

	prints := make([]style.Fingerprint, len(sorted))
	for i := range sorted {
		prints[i] = sorted[i].Fingerprint(c.store.HasAsset(&sorted[i]))
	}
	compositeFP := style.CompositeFingerprint(prints)
	compositePath := c.store.GeneratedPath("composite", "icon", compositeFP)

	img, err := c.store.GetOrCreate(compositeFP, compositePath, func() (*image.RGBA, error) {
		canvas := image.NewRGBA(image.Rect(0, 0, maxWidth, maxHeight))
		for i := range sorted {
			layerImg, err := c.renderLayer(&sorted[i], prints[i])
			if err != nil {
				if !errors.Is(err, cache.ErrAssetUnavailable) {
					logging.Warn("layer rasterize failed",
						zap.String("source", string(sorted[i].Source)),
						zap.String("name", sorted[i].Name),
						zap.Error(err),
					)
				}
				continue
			}
			draw.Draw(canvas, canvas.Bounds(), layerImg, layerImg.Bounds().Min, draw.Over)
		}
		return canvas, nil
	})
	if err != nil {
		return nil, "", err
	}
	return img, cache.GeneratedFilename("composite", "icon", compositeFP), nil
}

// renderLayer returns the layer's bitmap, from cache when possible. A
// remote layer whose asset is missing schedules a fetch and reports
// ErrAssetUnavailable.
func (c *Compositor) renderLayer(l *style.Layer, fp style.Fingerprint) (*image.RGBA, error) {
	if l.IsRemote() && !c.store.HasAsset(l) {
		c.fetcher.Request(l.RemoteURL(), c.store.AssetPath(l))
		return nil, cache.ErrAssetUnavailable
	}

	path := c.store.GeneratedPath(l.Source, l.Name, fp)
	return c.store.GetOrCreate(fp, path, func() (*image.RGBA, error) {
		return c.rasterize(l)
	})
}

func (c *Compositor) rasterize(l *style.Layer) (*image.RGBA, error) {
	if l.Source == style.SourceText {
		canvas := image.NewRGBA(image.Rect(0, 0, l.MaxWidth, l.MaxHeight))
		return DrawText(canvas, l, c.fonts), nil
	}

	var img *image.RGBA
	switch l.Source {
	case style.SourceBlank:
		img = image.NewRGBA(image.Rect(0, 0, l.Size.W, l.Size.H))
	case style.SourceQR:
		code, err := drawQR(l.Name, min(l.Size.W, l.Size.H))
		if err != nil {
			return nil, err
		}
		if code == nil {
			img = image.NewRGBA(image.Rect(0, 0, l.Size.W, l.Size.H))
		} else {
			img = code
		}
	default:
		decoded, err := decodeSource(c.store.AssetPath(l), l)
		if err != nil {
			return nil, err
		}
		img = decoded
		if l.IsVector() {
			// Vector art rasterizes at icon size already; only recolor.
			img = Recolor(img, l.Color)
		} else {
			img = Resize(img, l.SizeMode, l.Size)
		}
	}

	img = ApplyPadding(img, l.Padding)
	img = ApplyBackground(img, l.BackgroundColor)
	img = ApplyBorder(img, l.BorderWidth, l.BorderColor, l.BorderRadius)
	img = Move(img, l.Offset)
	img = ApplyBrightness(img, l.Brightness)
	img = CropTo(img, l.MaxWidth, l.MaxHeight)
	return img, nil
}

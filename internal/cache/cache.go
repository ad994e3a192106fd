// Package cache is the content-addressable bitmap store shared by the
// compositor and the remote asset fetcher. Source assets (downloaded files)
// persist across runs; composited output lives in a _generated partition
// that is wiped at startup so stale composites from a previous styling never
// leak forward.
package cache

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
	"github.com/homedeck/homedeck/internal/style"
)

// ErrAssetUnavailable marks a layer whose source asset has not been fetched
// yet. It is an expected condition, not a failure: the layer renders blank
// and the fetch is scheduled.
var ErrAssetUnavailable = errors.New("asset not yet available")

const generatedDirName = "_generated"

// Store is the on-disk icon cache rooted at <dir>/icons. When read caching
// is disabled every lookup re-renders, but results are still written so
// that generated files stay referenceable by path.
type Store struct {
	iconsDir    string
	readEnabled bool

	mu     sync.Mutex
	bitmap map[style.Fingerprint]*image.RGBA
}

// NewStore opens (and prunes) the cache under root. The generated partition
// is removed wholesale; source assets are kept.
func NewStore(root string, readEnabled bool) (*Store, error) {
	iconsDir := filepath.Join(root, "icons")
	if err := os.RemoveAll(filepath.Join(iconsDir, generatedDirName)); err != nil {
		return nil, fmt.Errorf("failed to reset generated icon cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(iconsDir, generatedDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}
	return &Store{
		iconsDir:    iconsDir,
		readEnabled: readEnabled,
		bitmap:      map[style.Fingerprint]*image.RGBA{},
	}, nil
}

// GeneratedDir is where composited bitmaps land; slot contents reference
// files inside it by name.
func (s *Store) GeneratedDir() string {
	return GeneratedDirFor(filepath.Dir(s.iconsDir))
}

// GeneratedDirFor locates the generated partition under a cache root
// without opening a store.
func GeneratedDirFor(root string) string {
	return filepath.Join(root, "icons", generatedDirName)
}

// GeneratedPath is the deterministic file name of a rendered bitmap, derived
// from source kind, name and fingerprint so external callers can reference
// it by stable path.
func (s *Store) GeneratedPath(kind style.SourceKind, name string, fp style.Fingerprint) string {
	return filepath.Join(s.iconsDir, generatedDirName, GeneratedFilename(kind, name, fp))
}

// GeneratedFilename returns just the file name component of GeneratedPath.
func GeneratedFilename(kind style.SourceKind, name string, fp style.Fingerprint) string {
	return fmt.Sprintf("%s-%s-%s.png", kind, sanitize(name), fp)
}

// AssetPath is where a layer's source asset lives (or will live once
// fetched).
func (s *Store) AssetPath(l *style.Layer) string {
	if l.Source == style.SourceLocal {
		return l.LocalPath
	}
	return filepath.Join(s.iconsDir, string(l.Source), sanitize(l.Name)+"."+l.AssetExt())
}

// HasAsset reports whether the layer's source asset is present on disk.
// Layers without a backing file (blank, text, qr) are always available.
func (s *Store) HasAsset(l *style.Layer) bool {
	if !l.IsRemote() && l.Source != style.SourceLocal {
		return true
	}
	path := s.AssetPath(l)
	if path == "" {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// GetOrCreate returns the cached bitmap for fp, invoking produce only when
// no usable entry exists. The produced bitmap is persisted under path before
// it is returned. With read caching disabled produce always runs, but the
// write still happens.
func (s *Store) GetOrCreate(fp style.Fingerprint, path string, produce func() (*image.RGBA, error)) (*image.RGBA, error) {
	if s.readEnabled {
		s.mu.Lock()
		img, ok := s.bitmap[fp]
		s.mu.Unlock()
		if ok {
			return img, nil
		}
		if img, err := loadPNG(path); err == nil {
			s.remember(fp, img)
			return img, nil
		}
	}

	img, err := produce()
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrAssetUnavailable
	}
	if err := writePNG(path, img); err != nil {
		// A failed write degrades to an uncached render, nothing worse.
		logging.Warn("failed to write cached bitmap",
			zap.String("path", path),
			zap.Error(err),
		)
	}
	s.remember(fp, img)
	return img, nil
}

func (s *Store) remember(fp style.Fingerprint, img *image.RGBA) {
	s.mu.Lock()
	s.bitmap[fp] = img
	s.mu.Unlock()
}

func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sanitize(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return replacer.Replace(name)
}

package icon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/homedeck/homedeck/internal/logging"
)

// DefaultFont is used when a text layer names no font face.
const DefaultFont = "Roboto-SemiBold"

// FontCache loads TrueType faces from a fonts directory and caches one face
// per font+size. A missing or unparsable font degrades to the builtin
// bitmap face rather than failing the layer.
type FontCache struct {
	dir string

	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[string]font.Face
}

func NewFontCache(dir string) *FontCache {
	return &FontCache{
		dir:   dir,
		fonts: map[string]*truetype.Font{},
		faces: map[string]font.Face{},
	}
}

// Face returns a cached face for the named font at the given point size.
func (c *FontCache) Face(name string, size int) font.Face {
	if name == "" {
		name = DefaultFont
	}
	if size <= 0 {
		size = 20
	}

	key := fmt.Sprintf("%s-%d", name, size)
	c.mu.Lock()
	defer c.mu.Unlock()
	if face, ok := c.faces[key]; ok {
		return face
	}

	fnt, ok := c.fonts[name]
	if !ok {
		parsed, err := c.parse(name)
		if err != nil {
			logging.Warn("font load failed, using builtin face",
				zap.String("font", name),
				zap.Error(err),
			)
			c.faces[key] = basicfont.Face7x13
			return basicfont.Face7x13
		}
		fnt = parsed
		c.fonts[name] = fnt
	}

	face := truetype.NewFace(fnt, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[key] = face
	return face
}

func (c *FontCache) parse(name string) (*truetype.Font, error) {
	path := filepath.Join(c.dir, name+".ttf")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	fnt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return fnt, nil
}

package style

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resize modes for raster layers.
const (
	SizeModeCover   = "cover"
	SizeModeContain = "contain"
	SizeModeStretch = "stretch"
)

// Text vertical alignments.
const (
	AlignTop    = "top"
	AlignCenter = "center"
	AlignBottom = "bottom"
)

// Layer is one fully resolved drawable unit of a button bitmap. It is a
// closed record: defaulting happens exactly once, in newLayer, so identical
// inputs always fingerprint identically. Extra carries provider-specific
// attributes that have no declared field.
type Layer struct {
	Source  SourceKind
	Name    string
	Variant string

	Color           string
	BackgroundColor string
	BorderColor     string

	Size         Size
	SizeMode     string
	Padding      int
	Offset       Offset
	BorderRadius int
	BorderWidth  int
	Brightness   int // 1..100 dims; 0 or out of range is a no-op

	Text       string
	TextColor  string
	TextAlign  string
	TextFont   string
	TextSize   int
	TextOffset Offset

	MaxWidth  int
	MaxHeight int
	ZIndex    int

	Extra map[string]string

	// LocalPath is set for local-file sources only; remote sources resolve
	// their path through the asset cache.
	LocalPath string
}

// IsRemote reports whether the layer's pixels must be fetched before the
// layer can rasterize.
func (l *Layer) IsRemote() bool {
	switch l.Source {
	case SourceURL, SourceMaterialDesign, SourcePhosphor:
		return true
	default:
		return false
	}
}

// RemoteURL returns the download URL for a remote layer, or "".
func (l *Layer) RemoteURL() string {
	switch l.Source {
	case SourceURL:
		return l.Extra["url"]
	case SourceMaterialDesign:
		return fmt.Sprintf("https://raw.githubusercontent.com/Templarian/MaterialDesign/refs/heads/master/svg/%s.svg", l.Name)
	case SourcePhosphor:
		variant := l.Variant
		if variant == "" {
			variant = PhosphorRegular
		}
		return fmt.Sprintf("https://raw.githubusercontent.com/phosphor-icons/core/refs/heads/main/raw/%s/%s.svg", variant, l.Name)
	default:
		return ""
	}
}

// AssetExt is the file extension the fetched source asset is stored under.
func (l *Layer) AssetExt() string {
	switch l.Source {
	case SourceMaterialDesign, SourcePhosphor:
		return "svg"
	default:
		return "png"
	}
}

// IsVector reports whether the source is recolorable vector art.
func (l *Layer) IsVector() bool {
	switch l.Source {
	case SourceMaterialDesign, SourcePhosphor:
		return true
	case SourceLocal:
		return strings.HasSuffix(strings.ToLower(l.LocalPath), ".svg")
	default:
		return false
	}
}

// newLayer builds a normalized layer from a button record's style fields.
// Defaults are applied here and nowhere else.
func newLayer(b *Button, maxW, maxH int) Layer {
	l := Layer{
		Source:    SourceBlank,
		SizeMode:  SizeModeCover,
		MaxWidth:  maxW,
		MaxHeight: maxH,
		ZIndex:    intValue(b.ZIndex),
	}
	if b.Extra != nil {
		l.Extra = make(map[string]string, len(b.Extra))
		for k, v := range b.Extra {
			l.Extra[k] = v
		}
	}

	switch {
	case b.Icon != nil && *b.Icon != "":
		source, name, found := strings.Cut(*b.Icon, ":")
		if found {
			l.Source = ParseSourceKind(source)
			l.Name = name
		}
	case b.Text != nil && *b.Text != "":
		l.Source = SourceText
	}

	if l.Source == SourceText {
		l.Text = strValue(b.Text)
		l.TextAlign = strOr(b.TextAlign, AlignCenter)
		l.TextFont = strValue(b.TextFont)
		l.TextSize = intOr(b.TextSize, 20)
		if b.TextOffset != nil {
			l.TextOffset = *b.TextOffset
		}
		l.TextColor = NormalizeHexColor(strOr(b.TextColor, "FFFFFF"))
		return l
	}

	switch l.Source {
	case SourceLocal:
		l.LocalPath = l.Name
		l.Name = filepath.Base(l.Name)
	case SourceURL:
		if l.Extra == nil {
			l.Extra = map[string]string{}
		}
		l.Extra["url"] = l.Name
		l.Name = fmt.Sprintf("%x", hashString(l.Name))
	case SourcePhosphor:
		l.Variant = strOr(b.IconVariant, PhosphorRegular)
		if l.Variant != PhosphorRegular {
			l.Name = l.Name + "-" + l.Variant
		}
	}

	if b.IconSizeMode != nil {
		l.SizeMode = *b.IconSizeMode
	}
	l.Padding = intValue(b.IconPadding)
	if b.IconOffset != nil {
		l.Offset = *b.IconOffset
	}
	l.BorderRadius = intValue(b.IconBorderRadius)
	l.BorderWidth = intValue(b.IconBorderWidth)
	l.Brightness = intValue(b.IconBrightness)

	l.Color = NormalizeHexColor(strOr(b.IconColor, "FFFFFF"))
	l.BackgroundColor = NormalizeHexColor(strValue(b.IconBackgroundColor))
	borderColor := strValue(b.IconBorderColor)
	if borderColor == "" {
		borderColor = l.Color
	}
	if borderColor == "" {
		borderColor = l.BackgroundColor
	}
	if borderColor == "" {
		borderColor = "FFFFFF"
	}
	l.BorderColor = NormalizeHexColor(borderColor)

	l.Size = Size{W: maxW, H: maxH}
	if b.IconSize != nil {
		l.Size = *b.IconSize
	}
	if l.Size.W == 0 {
		l.Size.W = maxW
	}
	if l.Size.H == 0 {
		l.Size.H = maxH
	}

	return l
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil || *p == 0 {
		return def
	}
	return *p
}

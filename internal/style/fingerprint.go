package style

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint is the content-addressable cache key of a rendered layer. Two
// layers with the same attribute values always share a fingerprint; a
// positive value means the source asset is present, a negative one means it
// is still pending, so the two states never alias a cache slot.
type Fingerprint int64

func (f Fingerprint) String() string { return strconv.FormatInt(int64(f), 10) }

// Available reports whether the fingerprint refers to a ready asset.
func (f Fingerprint) Available() bool { return f >= 0 }

// Fingerprint digests the layer's declared fields in a fixed order, plus the
// Extra map in sorted key order. Attribute insertion order never matters
// because the field walk is the struct declaration, not a map iteration.
func (l *Layer) Fingerprint(available bool) Fingerprint {
	parts := make([]string, 0, 24)
	add := func(key string, value any) {
		parts = append(parts, key+strings.ToUpper(fmt.Sprint(value)))
	}

	add("source", string(l.Source))
	add("name", l.Name)
	add("variant", l.Variant)
	add("color", l.Color)
	add("background", l.BackgroundColor)
	add("border_color", l.BorderColor)
	add("size", fmt.Sprintf("%dx%d", l.Size.W, l.Size.H))
	add("size_mode", l.SizeMode)
	add("padding", l.Padding)
	add("offset", fmt.Sprintf("%d,%d", l.Offset.X, l.Offset.Y))
	add("border_radius", l.BorderRadius)
	add("border_width", l.BorderWidth)
	add("brightness", l.Brightness)
	add("text", l.Text)
	add("text_color", l.TextColor)
	add("text_align", l.TextAlign)
	add("text_font", l.TextFont)
	add("text_size", l.TextSize)
	add("text_offset", fmt.Sprintf("%d,%d", l.TextOffset.X, l.TextOffset.Y))
	add("max", fmt.Sprintf("%dx%d", l.MaxWidth, l.MaxHeight))
	// Name holds only the basename for local files, so the full path has to
	// participate or distinct files with the same filename would collide.
	add("local_path", l.LocalPath)

	if len(l.Extra) > 0 {
		keys := make([]string, 0, len(l.Extra))
		for k := range l.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add("extra."+k, l.Extra[k])
		}
	}

	sum := hashString(string(l.Source) + "-" + l.Name + "-" + strings.Join(parts, "-"))
	fp := Fingerprint(sum & 0x7fffffffffffffff)
	if !available {
		fp = -fp
	}
	return fp
}

// CompositeFingerprint derives the cache key of a composited bitmap from the
// ordered tuple of its layer fingerprints.
func CompositeFingerprint(layerPrints []Fingerprint) Fingerprint {
	parts := make([]string, len(layerPrints))
	for i, p := range layerPrints {
		parts[i] = p.String()
	}
	sum := hashString(strings.Join(parts, "|"))
	return Fingerprint(sum & 0x7fffffffffffffff)
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

package style

import (
	"fmt"
	"image/color"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind identifies where a layer's pixels come from.
type SourceKind string

const (
	SourceBlank          SourceKind = "blank"
	SourceLocal          SourceKind = "local"
	SourceURL            SourceKind = "url"
	SourceText           SourceKind = "text"
	SourceMaterialDesign SourceKind = "mdi"
	SourcePhosphor       SourceKind = "pi"
	SourceQR             SourceKind = "qr"
)

// ParseSourceKind maps the prefix of an "source:name" icon reference to a
// SourceKind. Unknown prefixes resolve to blank.
func ParseSourceKind(s string) SourceKind {
	switch SourceKind(s) {
	case SourceLocal, SourceURL, SourceText, SourceMaterialDesign, SourcePhosphor, SourceQR:
		return SourceKind(s)
	default:
		return SourceBlank
	}
}

// Phosphor icon variants. Regular is the default and carries no name suffix.
const (
	PhosphorThin    = "thin"
	PhosphorLight   = "light"
	PhosphorRegular = "regular"
	PhosphorBold    = "bold"
	PhosphorFill    = "fill"
	PhosphorDuotone = "duotone"
)

// Visibility is the normalized three-state visibility of a button. The raw
// configuration forms (booleans and their string literals) are folded into
// this enum before anything downstream sees them.
type Visibility int

const (
	// Visible renders the button normally.
	Visible Visibility = iota
	// Hidden keeps the slot reserved but renders it empty.
	Hidden
	// Gone removes the slot entirely; following buttons shift up.
	Gone
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Gone:
		return "gone"
	default:
		return "visible"
	}
}

// NormalizeVisibility folds a raw visibility value (bool, string or nil) into
// the three-state enum. A missing value should be passed as true by callers.
func NormalizeVisibility(raw any) Visibility {
	switch val := raw.(type) {
	case nil:
		return Gone
	case bool:
		if !val {
			return Hidden
		}
		return Visible
	case string:
		switch strings.ToLower(val) {
		case "false", "hidden":
			return Hidden
		case "none", "null", "gone", "~":
			return Gone
		default:
			return Visible
		}
	default:
		return Visible
	}
}

// VisibilityValue carries a button's visibility through YAML decoding. A
// field that is absent decodes to a nil pointer (Visible); an explicit null
// means Gone, matching the raw form the configuration language allows.
type VisibilityValue struct {
	State Visibility
}

func (v *VisibilityValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		v.State = Gone
		return nil
	}
	var b bool
	if err := node.Decode(&b); err == nil {
		v.State = NormalizeVisibility(b)
		return nil
	}
	var s string
	if err := node.Decode(&s); err == nil {
		v.State = NormalizeVisibility(s)
		return nil
	}
	return fmt.Errorf("invalid visibility value on line %d", node.Line)
}

// Offset is a signed pixel displacement.
type Offset struct {
	X int
	Y int
}

func (o *Offset) UnmarshalYAML(node *yaml.Node) error {
	var pair []int
	if err := node.Decode(&pair); err != nil {
		return fmt.Errorf("invalid offset on line %d: %w", node.Line, err)
	}
	if len(pair) > 0 {
		o.X = pair[0]
	}
	if len(pair) > 1 {
		o.Y = pair[1]
	}
	return nil
}

// Size is a width/height pair. A zero component means "inherit the canvas
// dimension" and is filled in during layer normalization.
type Size struct {
	W int
	H int
}

func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	var pair []int
	if err := node.Decode(&pair); err == nil {
		if len(pair) > 0 {
			s.W = pair[0]
		}
		if len(pair) > 1 {
			s.H = pair[1]
		}
		return nil
	}
	var single int
	if err := node.Decode(&single); err != nil {
		return fmt.Errorf("invalid size on line %d: %w", node.Line, err)
	}
	s.W = single
	s.H = single
	return nil
}

// NormalizeHexColor canonicalizes a hex color string: optional leading '#',
// 3-digit shorthand expanded, uppercased. Returns "" for anything invalid so
// missing and unusable colors behave the same downstream.
func NormalizeHexColor(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return ""
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return ""
		}
	}
	return strings.ToUpper(s)
}

// ParseHexColor converts a normalized hex color to RGBA with the given alpha.
// An empty or invalid string yields transparent black.
func ParseHexColor(s string, alpha uint8) color.RGBA {
	s = NormalizeHexColor(s)
	if s == "" {
		return color.RGBA{}
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02X%02X%02X", &r, &g, &b); err != nil {
		return color.RGBA{}
	}
	return color.RGBA{R: r, G: g, B: b, A: alpha}
}

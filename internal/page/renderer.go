// Package page expands a page's logical button list into the concrete
// per-slot frame shown on the device: label-style defaults, live-state
// merges, visibility, system navigation buttons, pagination and the minimal
// diff against the previously rendered frame.
package page

import (
	"reflect"
	"sort"

	"github.com/homedeck/homedeck/internal/style"
)

// StateSource provides live entity state to the renderer. Implemented by
// the Home Assistant state store.
type StateSource interface {
	State(entityID string) (state string, attributes map[string]any, ok bool)
}

// Frame maps slot indices (0-based within a page) to resolved button
// records; nil means an empty slot.
type Frame map[int]*style.Button

// LabelStyle is the page-level default styling for button labels; it fills
// only fields the button leaves unset.
type LabelStyle struct {
	Align string
	Color string
	Font  string
	Size  int
}

// SystemButton is an engine-inserted navigation control. Position is the
// 1-based slot offset within a page; 0 disables insertion.
type SystemButton struct {
	Button   *style.Button
	Position int
}

// SystemButtons holds the three navigation controls.
type SystemButtons struct {
	Back     SystemButton
	Previous SystemButton
	Next     SystemButton
}

// Renderer computes frames and diffs them against the previous render call.
type Renderer struct {
	prev Frame
}

func NewRenderer() *Renderer {
	return &Renderer{prev: Frame{}}
}

// Reset drops the retained frame so the next render reports every occupied
// slot as changed. Used when the device's buffer can no longer be trusted.
func (r *Renderer) Reset() {
	r.prev = Frame{}
}

// Render expands buttons into the frame for pageNumber and returns the set
// of slots that differ from the previous render call. Rendering identical
// inputs twice yields no changed slots on the second call.
func (r *Renderer) Render(
	buttons []*style.Button,
	system SystemButtons,
	labels LabelStyle,
	pageNumber int,
	isSubPage bool,
	slotsPerPage int,
	states StateSource,
) (Frame, []int, bool) {
	if slotsPerPage <= 0 {
		return Frame{}, nil, false
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	prepared := prepare(buttons, labels, states)
	paged := insertSystemButtons(prepared, system, isSubPage, slotsPerPage)

	frame := Frame{}
	base := (pageNumber - 1) * slotsPerPage
	for i := 0; i < slotsPerPage; i++ {
		if base+i < len(paged) {
			frame[i] = paged[base+i]
		}
	}

	var changed []int
	for i := 0; i < slotsPerPage; i++ {
		if !reflect.DeepEqual(r.prev[i], frame[i]) {
			changed = append(changed, i)
		}
	}
	sort.Ints(changed)

	r.prev = frame
	return frame, changed, len(changed) > 0
}

// prepare applies label defaults and live-state merges, evaluates
// visibility and re-indexes around removed buttons. The returned slice is
// the contiguous logical sequence; nil entries are reserved empty slots.
func prepare(buttons []*style.Button, labels LabelStyle, states StateSource) []*style.Button {
	out := make([]*style.Button, 0, len(buttons))
	for _, declared := range buttons {
		if declared == nil {
			out = append(out, nil)
			continue
		}

		// Top-level visibility decides slot removal before any state
		// override runs; overrides are display-only.
		topVisibility := declared.VisibilityState()
		if topVisibility == style.Gone {
			continue
		}

		b := declared.Clone()
		applyLabelStyle(b, labels)

		if b.EntityID != "" && states != nil {
			if state, attributes, ok := states.State(b.EntityID); ok {
				if b.Icon == nil {
					if icon, ok := attributes["icon"].(string); ok && icon != "" {
						b.Icon = &icon
					}
				}
				if override, ok := b.States[state]; ok {
					b = b.Merge(override)
				}
				if b.Name == nil {
					if name, ok := attributes["friendly_name"].(string); ok && name != "" {
						b.Name = &name
					}
				}
			}
		}

		if b.VisibilityState() != style.Visible {
			// Hidden, or a state override asked for gone: the slot stays
			// reserved and renders empty either way.
			out = append(out, nil)
			continue
		}
		out = append(out, b)
	}
	return out
}

func applyLabelStyle(b *style.Button, labels LabelStyle) {
	if labels.Align != "" && b.TextAlign == nil {
		align := labels.Align
		b.TextAlign = &align
	}
	if labels.Color != "" && b.TextColor == nil {
		color := labels.Color
		b.TextColor = &color
	}
	if labels.Size > 0 && b.TextSize == nil {
		size := labels.Size
		b.TextSize = &size
	}
	if labels.Font != "" && b.TextFont == nil {
		font := labels.Font
		b.TextFont = &font
	}
}

// insertSystemButtons walks the logical sequence page by page, inserting
// back/previous/next controls. Every insertion shifts subsequent buttons
// one slot right, so no declared button is ever overwritten.
func insertSystemButtons(list []*style.Button, system SystemButtons, isSubPage bool, slotsPerPage int) []*style.Button {
	start := 0
	pageNumber := 1
	for start < len(list) {
		if isSubPage && pageNumber == 1 && system.Back.Position > 0 {
			list = insertAt(list, start+system.Back.Position-1, system.Back.Button)
		}
		if pageNumber > 1 && system.Previous.Position > 0 {
			list = insertAt(list, start+system.Previous.Position-1, system.Previous.Button)
		}
		if start+slotsPerPage < len(list) {
			position := system.Next.Position
			if position <= 0 {
				position = slotsPerPage
			}
			list = insertAt(list, start+position-1, system.Next.Button)
		}
		start += slotsPerPage
		pageNumber++
	}
	return list
}

func insertAt(list []*style.Button, index int, b *style.Button) []*style.Button {
	if index < 0 {
		index = 0
	}
	if index >= len(list) {
		// Pad with empty slots so the control lands on its configured slot.
		for len(list) < index {
			list = append(list, nil)
		}
		return append(list, b)
	}
	list = append(list, nil)
	copy(list[index+1:], list[index:])
	list[index] = b
	return list
}

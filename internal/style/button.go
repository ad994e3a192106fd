package style

// Action is one tap or hold binding on a button. Engine-handled actions use
// the "$page."/"$system." namespaces; anything else is a Home Assistant
// "domain.service" call.
type Action struct {
	Action string         `yaml:"action"`
	Data   map[string]any `yaml:"data"`
}

// Engine action names.
const (
	ActionPageBack     = "$page.back"
	ActionPagePrevious = "$page.previous"
	ActionPageNext     = "$page.next"
	ActionPageGoTo     = "$page.go_to"
	ActionSystemExec   = "$system.exec"
)

// Button is one fully declared button record after configuration merging.
// Optional fields are pointers so that "unset" survives merging and label
// style defaults apply only where the user left a gap.
type Button struct {
	EntityID   string             `yaml:"entity_id"`
	Name       *string            `yaml:"name"`
	Domain     string             `yaml:"domain"`
	Visibility *VisibilityValue   `yaml:"visibility"`
	TapAction  *Action            `yaml:"tap_action"`
	HoldAction *Action            `yaml:"hold_action"`
	States     map[string]*Button `yaml:"states"`

	Icon                *string `yaml:"icon"`
	IconVariant         *string `yaml:"icon_variant"`
	IconSize            *Size   `yaml:"icon_size"`
	IconSizeMode        *string `yaml:"icon_size_mode"`
	IconPadding         *int    `yaml:"icon_padding"`
	IconColor           *string `yaml:"icon_color"`
	IconBackgroundColor *string `yaml:"icon_background_color"`
	IconOffset          *Offset `yaml:"icon_offset"`
	IconBorderRadius    *int    `yaml:"icon_border_radius"`
	IconBorderWidth     *int    `yaml:"icon_border_width"`
	IconBorderColor     *string `yaml:"icon_border_color"`
	IconBrightness      *int    `yaml:"icon_brightness"`

	Text       *string `yaml:"text"`
	TextColor  *string `yaml:"text_color"`
	TextAlign  *string `yaml:"text_align"`
	TextFont   *string `yaml:"text_font"`
	TextSize   *int    `yaml:"text_size"`
	TextOffset *Offset `yaml:"text_offset"`

	AdditionalIcons []*Button `yaml:"additional_icons"`

	ZIndex *int              `yaml:"z_index"`
	Extra  map[string]string `yaml:"extra"`
}

// VisibilityState returns the normalized visibility; an absent field means
// visible.
func (b *Button) VisibilityState() Visibility {
	if b == nil {
		return Visible
	}
	if b.Visibility == nil {
		return Visible
	}
	return b.Visibility.State
}

// DisplayName returns the trimmed label for the device, or "".
func (b *Button) DisplayName() string {
	if b == nil || b.Name == nil {
		return ""
	}
	return *b.Name
}

// ActionFor returns the binding for a gesture, or nil.
func (b *Button) ActionFor(hold bool) *Action {
	if b == nil {
		return nil
	}
	if hold {
		return b.HoldAction
	}
	return b.TapAction
}

// HasIconFields reports whether any icon-affecting field is set, which is
// what decides if the record contributes a main icon layer.
func (b *Button) HasIconFields() bool {
	return b.Icon != nil || b.IconVariant != nil || b.IconSize != nil ||
		b.IconSizeMode != nil || b.IconPadding != nil || b.IconColor != nil ||
		b.IconBackgroundColor != nil || b.IconOffset != nil ||
		b.IconBorderRadius != nil || b.IconBorderWidth != nil ||
		b.IconBorderColor != nil || b.IconBrightness != nil
}

// HasTextFields reports whether the record contributes a text layer.
func (b *Button) HasTextFields() bool {
	return b.Text != nil
}

// Clone returns a deep copy, so per-state overrides never mutate the
// declared configuration.
func (b *Button) Clone() *Button {
	if b == nil {
		return nil
	}
	out := *b
	out.Name = clonePtr(b.Name)
	out.Visibility = clonePtr(b.Visibility)
	out.TapAction = cloneAction(b.TapAction)
	out.HoldAction = cloneAction(b.HoldAction)
	out.Icon = clonePtr(b.Icon)
	out.IconVariant = clonePtr(b.IconVariant)
	out.IconSize = clonePtr(b.IconSize)
	out.IconSizeMode = clonePtr(b.IconSizeMode)
	out.IconPadding = clonePtr(b.IconPadding)
	out.IconColor = clonePtr(b.IconColor)
	out.IconBackgroundColor = clonePtr(b.IconBackgroundColor)
	out.IconOffset = clonePtr(b.IconOffset)
	out.IconBorderRadius = clonePtr(b.IconBorderRadius)
	out.IconBorderWidth = clonePtr(b.IconBorderWidth)
	out.IconBorderColor = clonePtr(b.IconBorderColor)
	out.IconBrightness = clonePtr(b.IconBrightness)
	out.Text = clonePtr(b.Text)
	out.TextColor = clonePtr(b.TextColor)
	out.TextAlign = clonePtr(b.TextAlign)
	out.TextFont = clonePtr(b.TextFont)
	out.TextSize = clonePtr(b.TextSize)
	out.TextOffset = clonePtr(b.TextOffset)
	out.ZIndex = clonePtr(b.ZIndex)
	if b.States != nil {
		out.States = make(map[string]*Button, len(b.States))
		for k, v := range b.States {
			out.States[k] = v.Clone()
		}
	}
	if b.AdditionalIcons != nil {
		out.AdditionalIcons = make([]*Button, len(b.AdditionalIcons))
		for i, v := range b.AdditionalIcons {
			out.AdditionalIcons[i] = v.Clone()
		}
	}
	if b.Extra != nil {
		out.Extra = make(map[string]string, len(b.Extra))
		for k, v := range b.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// Merge overlays a partial override (a per-state variant) onto a copy of the
// receiver. Set fields in the override win; everything else is inherited.
func (b *Button) Merge(override *Button) *Button {
	out := b.Clone()
	if override == nil {
		return out
	}
	if override.EntityID != "" {
		out.EntityID = override.EntityID
	}
	if override.Domain != "" {
		out.Domain = override.Domain
	}
	mergePtr(&out.Name, override.Name)
	mergePtr(&out.Visibility, override.Visibility)
	if override.TapAction != nil {
		out.TapAction = cloneAction(override.TapAction)
	}
	if override.HoldAction != nil {
		out.HoldAction = cloneAction(override.HoldAction)
	}
	mergePtr(&out.Icon, override.Icon)
	mergePtr(&out.IconVariant, override.IconVariant)
	mergePtr(&out.IconSize, override.IconSize)
	mergePtr(&out.IconSizeMode, override.IconSizeMode)
	mergePtr(&out.IconPadding, override.IconPadding)
	mergePtr(&out.IconColor, override.IconColor)
	mergePtr(&out.IconBackgroundColor, override.IconBackgroundColor)
	mergePtr(&out.IconOffset, override.IconOffset)
	mergePtr(&out.IconBorderRadius, override.IconBorderRadius)
	mergePtr(&out.IconBorderWidth, override.IconBorderWidth)
	mergePtr(&out.IconBorderColor, override.IconBorderColor)
	mergePtr(&out.IconBrightness, override.IconBrightness)
	mergePtr(&out.Text, override.Text)
	mergePtr(&out.TextColor, override.TextColor)
	mergePtr(&out.TextAlign, override.TextAlign)
	mergePtr(&out.TextFont, override.TextFont)
	mergePtr(&out.TextSize, override.TextSize)
	mergePtr(&out.TextOffset, override.TextOffset)
	mergePtr(&out.ZIndex, override.ZIndex)
	if override.AdditionalIcons != nil {
		out.AdditionalIcons = make([]*Button, len(override.AdditionalIcons))
		for i, v := range override.AdditionalIcons {
			out.AdditionalIcons[i] = v.Clone()
		}
	}
	for k, v := range override.Extra {
		if out.Extra == nil {
			out.Extra = map[string]string{}
		}
		out.Extra[k] = v
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = clonePtr(src)
	}
}

func cloneAction(a *Action) *Action {
	if a == nil {
		return nil
	}
	out := &Action{Action: a.Action}
	if a.Data != nil {
		out.Data = make(map[string]any, len(a.Data))
		for k, v := range a.Data {
			out.Data[k] = v
		}
	}
	return out
}

// ServiceData returns the action payload with entity_id defaulted in from
// the owning button, the way service calls expect it.
func (a *Action) ServiceData(entityID string) map[string]any {
	data := make(map[string]any, len(a.Data)+1)
	for k, v := range a.Data {
		data[k] = v
	}
	if entityID != "" {
		if _, ok := data["entity_id"]; !ok {
			data["entity_id"] = entityID
		}
	}
	return data
}

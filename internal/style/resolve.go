package style

import "sort"

// Resolver turns a prepared button record into the flat, ordered stack of
// style layers the compositor draws. Implementations must be pure: the same
// record always yields the same layers.
type Resolver interface {
	Resolve(button *Button, maxWidth, maxHeight int) []Layer
}

// FlatResolver is the default resolver. The button's own icon fields become
// one layer, its text fields a second, and each additional_icons entry one
// more; layers are normalized once and then sorted by stacking key. Equal
// stacking keys keep declaration order (the sort is stable, ties are fine).
type FlatResolver struct{}

func (FlatResolver) Resolve(button *Button, maxWidth, maxHeight int) []Layer {
	if button == nil {
		return nil
	}

	var layers []Layer
	if button.HasIconFields() || (button.Icon != nil && *button.Icon != "") {
		main := button.Clone()
		main.Text = nil // the text fields belong to the label layer
		layers = append(layers, newLayer(main, maxWidth, maxHeight))
	}
	if button.HasTextFields() {
		label := button.Clone()
		label.Icon = nil
		layers = append(layers, newLayer(label, maxWidth, maxHeight))
	}
	for _, extra := range button.AdditionalIcons {
		if extra == nil {
			continue
		}
		layers = append(layers, newLayer(extra, maxWidth, maxHeight))
	}

	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].ZIndex < layers[j].ZIndex
	})
	return layers
}

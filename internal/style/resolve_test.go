package style

import "testing"

func TestResolveLayerStack(t *testing.T) {
	b := &Button{
		Icon: strp("mdi:lightbulb"),
		Text: strp("Kitchen"),
		AdditionalIcons: []*Button{
			{Icon: strp("mdi:star"), ZIndex: intp(-1)},
		},
	}
	layers := FlatResolver{}.Resolve(b, 100, 100)
	if len(layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(layers))
	}
	// The z -1 badge sorts below the main icon and the label.
	if layers[0].Name != "star" {
		t.Errorf("lowest layer = %q, want the badge", layers[0].Name)
	}
	if layers[1].Source != SourceMaterialDesign || layers[1].Name != "lightbulb" {
		t.Errorf("middle layer = %v %q", layers[1].Source, layers[1].Name)
	}
	if layers[2].Source != SourceText || layers[2].Text != "Kitchen" {
		t.Errorf("top layer = %v %q", layers[2].Source, layers[2].Text)
	}
}

func TestResolveNormalization(t *testing.T) {
	t.Run("url source hashes its name", func(t *testing.T) {
		b := &Button{Icon: strp("url:http://example.com/a.png")}
		layers := FlatResolver{}.Resolve(b, 100, 100)
		if len(layers) != 1 {
			t.Fatalf("got %d layers", len(layers))
		}
		l := layers[0]
		if l.Source != SourceURL {
			t.Errorf("source = %v", l.Source)
		}
		if l.Extra["url"] != "http://example.com/a.png" {
			t.Errorf("url not preserved: %q", l.Extra["url"])
		}
		if l.Name == "http://example.com/a.png" {
			t.Error("name should be the hashed form, not the raw url")
		}
	})

	t.Run("phosphor variant suffixes the name", func(t *testing.T) {
		b := &Button{Icon: strp("pi:sun"), IconVariant: strp(PhosphorBold)}
		l := FlatResolver{}.Resolve(b, 100, 100)[0]
		if l.Name != "sun-bold" {
			t.Errorf("name = %q, want sun-bold", l.Name)
		}
		if l.RemoteURL() != "https://raw.githubusercontent.com/phosphor-icons/core/refs/heads/main/raw/bold/sun-bold.svg" {
			t.Errorf("url = %q", l.RemoteURL())
		}
	})

	t.Run("regular phosphor keeps bare name", func(t *testing.T) {
		b := &Button{Icon: strp("pi:sun")}
		l := FlatResolver{}.Resolve(b, 100, 100)[0]
		if l.Name != "sun" {
			t.Errorf("name = %q, want sun", l.Name)
		}
	})

	t.Run("zero size component inherits canvas", func(t *testing.T) {
		b := &Button{Icon: strp("mdi:lightbulb"), IconSize: &Size{W: 40}}
		l := FlatResolver{}.Resolve(b, 100, 80)[0]
		if l.Size != (Size{W: 40, H: 80}) {
			t.Errorf("size = %+v", l.Size)
		}
	})

	t.Run("border color fallback chain", func(t *testing.T) {
		b := &Button{Icon: strp("mdi:lightbulb"), IconColor: strp("112233")}
		l := FlatResolver{}.Resolve(b, 100, 100)[0]
		if l.BorderColor != "112233" {
			t.Errorf("border color = %q, want the icon color", l.BorderColor)
		}
	})

	t.Run("text defaults", func(t *testing.T) {
		b := &Button{Text: strp("hi")}
		l := FlatResolver{}.Resolve(b, 100, 100)[0]
		if l.TextAlign != AlignCenter || l.TextSize != 20 || l.TextColor != "FFFFFF" {
			t.Errorf("defaults not applied: %+v", l)
		}
	})

	t.Run("nil button", func(t *testing.T) {
		if layers := (FlatResolver{}).Resolve(nil, 100, 100); layers != nil {
			t.Errorf("got %v, want nil", layers)
		}
	})
}

func TestResolveIsPure(t *testing.T) {
	b := &Button{Icon: strp("mdi:lightbulb"), Text: strp("x")}
	a := FlatResolver{}.Resolve(b, 100, 100)
	c := FlatResolver{}.Resolve(b, 100, 100)
	if len(a) != len(c) {
		t.Fatal("layer counts differ between identical resolves")
	}
	for i := range a {
		if a[i].Fingerprint(true) != c[i].Fingerprint(true) {
			t.Errorf("layer %d fingerprints differ between identical resolves", i)
		}
	}
}

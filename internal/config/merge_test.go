package config

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		want     map[string]any
	}{
		{
			"scalar replaces",
			map[string]any{"brightness": 100},
			map[string]any{"brightness": 40},
			map[string]any{"brightness": 40},
		},
		{
			"maps merge recursively",
			map[string]any{"sleep": map[string]any{"dim_timeout": 0, "sleep_timeout": 0}},
			map[string]any{"sleep": map[string]any{"dim_timeout": 10}},
			map[string]any{"sleep": map[string]any{"dim_timeout": 10, "sleep_timeout": 0}},
		},
		{
			"sequences replace, never append",
			map[string]any{"buttons": []any{"a", "b"}},
			map[string]any{"buttons": []any{"c"}},
			map[string]any{"buttons": []any{"c"}},
		},
		{
			"map replaced by scalar",
			map[string]any{"x": map[string]any{"y": 1}},
			map[string]any{"x": "flat"},
			map[string]any{"x": "flat"},
		},
		{
			"override-only keys survive",
			map[string]any{},
			map[string]any{"pages": map[string]any{"$root": nil}},
			map[string]any{"pages": map[string]any{"$root": nil}},
		},
		{
			"explicit null replaces",
			map[string]any{"label_style": map[string]any{"align": "bottom"}},
			map[string]any{"label_style": nil},
			map[string]any{"label_style": nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeepMerge(tt.base, tt.override); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"sleep": map[string]any{"dim_timeout": 0}}
	override := map[string]any{"sleep": map[string]any{"dim_timeout": 10}}
	DeepMerge(base, override)
	if base["sleep"].(map[string]any)["dim_timeout"] != 0 {
		t.Error("merge wrote into the base map")
	}
}

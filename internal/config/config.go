// Package config loads the declarative deck configuration: an embedded
// base document deep-merged with the user's YAML file.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/homedeck/homedeck/internal/style"
)

//go:embed base.yml
var baseYAML []byte

// RootPage is the page every configuration must declare.
const RootPage = "$root"

// fontsMap translates the numeric font selector the device configuration
// uses into a font face name.
var fontsMap = map[int]string{
	1: "Roboto-SemiBold",
	2: "FZShuSong-Z01",
	3: "DejaVu Sans",
	4: "Bareona",
	5: "Crimson Text",
	6: "Magiera",
	7: "Syke",
	8: "Roboto",
}

// Config is the fully merged deck configuration.
type Config struct {
	Brightness    int                     `yaml:"brightness"`
	LabelStyle    LabelStyle              `yaml:"label_style"`
	Sleep         Sleep                   `yaml:"sleep"`
	SystemButtons map[string]SystemButton `yaml:"system_buttons"`
	Pages         map[string]Page         `yaml:"pages"`

	// Presets are passed through untouched; preset cascade resolution
	// happens in the style resolver, not here.
	Presets map[string]any `yaml:"presets"`
}

type LabelStyle struct {
	Align     string `yaml:"align"`
	Color     string `yaml:"color"`
	Font      int    `yaml:"font"`
	Size      int    `yaml:"size"`
	ShowTitle bool   `yaml:"show_title"`
}

// FontName resolves the numeric font selector; unknown values fall back to
// the default face.
func (l LabelStyle) FontName() string {
	if name, ok := fontsMap[l.Font]; ok {
		return name
	}
	return fontsMap[1]
}

type Sleep struct {
	DimBrightness int `yaml:"dim_brightness"`
	DimTimeout    int `yaml:"dim_timeout"`
	SleepTimeout  int `yaml:"sleep_timeout"`
}

type SystemButton struct {
	Position int           `yaml:"position"`
	Button   *style.Button `yaml:"button"`
}

type Page struct {
	Buttons []*style.Button `yaml:"buttons"`
}

// Load merges the user configuration file over the embedded base and
// decodes it.
func Load(path string) (*Config, error) {
	userData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configuration %s: %w", path, err)
	}
	return Parse(userData)
}

// Parse merges a raw user document over the base and validates the result.
func Parse(userData []byte) (*Config, error) {
	var base map[string]any
	if err := yaml.Unmarshal(baseYAML, &base); err != nil {
		return nil, fmt.Errorf("parse base configuration: %w", err)
	}
	var user map[string]any
	if err := yaml.Unmarshal(userData, &user); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	merged := DeepMerge(base, user)
	remarshaled, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("remarshal configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(remarshaled, &cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("configuration declares no pages")
	}
	if _, ok := c.Pages[RootPage]; !ok {
		return fmt.Errorf("configuration has no %q page", RootPage)
	}
	if c.Brightness < 0 || c.Brightness > 100 {
		return fmt.Errorf("brightness %d out of range 0-100", c.Brightness)
	}
	// The dimmed level can never exceed the awake level.
	if c.Sleep.DimBrightness > c.Brightness {
		c.Sleep.DimBrightness = c.Brightness
	}
	return nil
}

// HasPage reports whether a page id is declared.
func (c *Config) HasPage(id string) bool {
	_, ok := c.Pages[id]
	return ok
}

// SystemButton returns the named navigation control configuration.
func (c *Config) SystemButton(action string) SystemButton {
	return c.SystemButtons[action]
}

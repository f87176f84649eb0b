// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	SiteDir       string         `yaml:"site_dir,omitempty"`
	Regions       []Region       `yaml:"regions"`
	Palette       []PaletteEntry `yaml:"palette,omitempty"`
	Translate     Translate      `yaml:"translate,omitempty"`
	ImageMaxWidth int            `yaml:"image_max_width,omitempty"`
}

// Region represents a single freguesia and its map source.
type Region struct {
	Name     string `yaml:"name"`
	MapID    string `yaml:"map_id,omitempty"`    // Google My Maps identifier
	KMLCache string `yaml:"kml_cache,omitempty"` // optional local KML file used instead of fetching
}

// PaletteEntry maps an eixo (category) substring to a color and CSS class.
type PaletteEntry struct {
	Match string `yaml:"match"`
	Color string `yaml:"color"`
	Class string `yaml:"class"`
}

// Translate holds machine-translation settings.
type Translate struct {
	APIURL     string `yaml:"api_url,omitempty"`
	KeyEnv     string `yaml:"key_env,omitempty"`
	TargetLang string `yaml:"target_lang,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.SiteDir == "" {
		cfg.SiteDir = "."
	}
	if cfg.ImageMaxWidth <= 0 {
		cfg.ImageMaxWidth = 1600
	}

	return &cfg, nil
}

// FindRegion returns the region with the given name.
func (c *Config) FindRegion(name string) (Region, error) {
	for _, r := range c.Regions {
		if r.Name == name {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("region %q not found in configuration", name)
}

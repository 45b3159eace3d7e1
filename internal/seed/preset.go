package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset describes the shape of a seeded dataset.
type Preset struct {
	Name        string            `yaml:"name"`
	Users       int               `yaml:"users"`
	Communities []CommunityPreset `yaml:"communities"`
}

// CommunityPreset describes one seeded community and its children.
type CommunityPreset struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	AgeRestricted bool     `yaml:"age_restricted"`
	Members       int      `yaml:"members"`
	Marketplaces  []string `yaml:"marketplaces"`
	Chatrooms     []string `yaml:"chatrooms"`
	// per marketplace
	Products int `yaml:"products"`
	// per chatroom
	Messages int `yaml:"messages"`
	// share of products left sitting in a member's cart, 0..1
	CartRatio float64 `yaml:"cart_ratio"`
}

// DefaultPreset is used when no preset file is configured.
func DefaultPreset() Preset {
	return Preset{
		Name:  "default",
		Users: 25,
		Communities: []CommunityPreset{
			{
				Name:         "Riverside Makers",
				Description:  "Tools, parts and projects from the riverside workshop.",
				Members:      12,
				Marketplaces: []string{"Tools", "Electronics"},
				Chatrooms:    []string{"General", "Show and Tell"},
				Products:     8,
				Messages:     20,
				CartRatio:    0.2,
			},
			{
				Name:         "Northside Book Club",
				Description:  "Monthly reads and a shelf swap.",
				Members:      8,
				Marketplaces: []string{"Book Swap"},
				Chatrooms:    []string{"This Month"},
				Products:     6,
				Messages:     15,
			},
			{
				Name:          "Late Night Tasting",
				Description:   "Wine and spirits tasting notes.",
				AgeRestricted: true,
				Members:       6,
				Marketplaces:  []string{"Cellar"},
				Chatrooms:     []string{"Notes"},
				Products:      4,
				Messages:      10,
			},
		},
	}
}

// LoadPreset reads a YAML preset from path.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path) // #nosec G304: operator-supplied path
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset decodes and validates a YAML preset.
func ParsePreset(data []byte) (Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Validate checks counts are usable.
func (p Preset) Validate() error {
	if p.Users < 1 {
		return fmt.Errorf("preset %q: users must be at least 1", p.Name)
	}
	for i, c := range p.Communities {
		if c.Name == "" {
			return fmt.Errorf("preset %q: community %d has no name", p.Name, i)
		}
		if c.Members < 0 || c.Products < 0 || c.Messages < 0 {
			return fmt.Errorf("preset %q: community %q has negative counts", p.Name, c.Name)
		}
		if c.CartRatio < 0 || c.CartRatio > 1 {
			return fmt.Errorf("preset %q: community %q cart_ratio must be within 0..1", p.Name, c.Name)
		}
	}
	return nil
}

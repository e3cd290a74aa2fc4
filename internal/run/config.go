// Package run provides the annotation run configuration and its persistence.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"flickertag/internal/pairing"
	"flickertag/internal/session"
	"flickertag/pkg/colorutil"
)

// Mode selects how image pairs are chosen.
type Mode string

const (
	ModeAutomatic Mode = "automatic"
	ModeManual    Mode = "manual"
)

// ClassDef is the serializable form of a change class; Color is a palette
// color name.
type ClassDef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Config describes one annotation run (a .fltag file).
type Config struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Mode Mode `json:"mode"`

	ReferenceDir string `json:"reference_dir"`
	TargetDir    string `json:"target_dir"`
	OutputDir    string `json:"output_dir"`

	ReferenceTag string `json:"reference_tag"`
	TargetTag    string `json:"target_tag"`
	OutputTag    string `json:"output_tag"`

	Classes []ClassDef `json:"classes"`
}

// New creates a run configuration with default settings.
func New() *Config {
	now := time.Now()
	return &Config{
		Version:  1,
		Created:  now,
		Modified: now,
		Mode:     ModeManual,
	}
}

// Load reads a run configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed run configuration: %w", err)
	}
	return &cfg, nil
}

// Save writes the run configuration to a file.
func (c *Config) Save(path string) error {
	c.Modified = time.Now()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Pairing returns the pairing view of the configuration.
func (c *Config) Pairing() pairing.Config {
	return pairing.Config{
		ReferenceDir: c.ReferenceDir,
		TargetDir:    c.TargetDir,
		OutputDir:    c.OutputDir,
		ReferenceTag: c.ReferenceTag,
		TargetTag:    c.TargetTag,
		OutputTag:    c.OutputTag,
	}
}

// ClassSet resolves the class definitions against the color palette and
// freezes them for a session run.
func (c *Config) ClassSet() (*session.ClassSet, error) {
	classes := make([]session.ChangeClass, 0, len(c.Classes))
	for _, def := range c.Classes {
		col, ok := colorutil.Lookup(def.Color)
		if !ok {
			return nil, fmt.Errorf("class %q uses unknown color %q", def.Name, def.Color)
		}
		classes = append(classes, session.ChangeClass{Name: def.Name, Color: col})
	}
	return session.NewClassSet(classes)
}

// Validate checks the configuration is complete enough to start a run.
// Automatic mode additionally requires valid pairing directories and tags.
func (c *Config) Validate() error {
	if len(c.Classes) == 0 {
		return fmt.Errorf("no change classes defined")
	}
	if _, err := c.ClassSet(); err != nil {
		return err
	}

	switch c.Mode {
	case ModeAutomatic:
		return c.Pairing().Validate()
	case ModeManual:
		if c.OutputDir == "" {
			return fmt.Errorf("output directory must be set")
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
}

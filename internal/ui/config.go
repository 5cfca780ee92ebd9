package ui

import (
	"encoding/json"
	"os"
)

// Config contains window and input settings, loadable from a JSON file
// so players can rebind keys without a recompile.
type Config struct {
	Title string            // window title
	Scale int               // integer upscaling factor
	Keys  map[string]string // logical button name -> ebiten key name
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.Keys == nil {
		c.Keys = make(map[string]string)
	}
	for name, key := range defaultKeyBindings() {
		if _, ok := c.Keys[name]; !ok {
			c.Keys[name] = key
		}
	}
}

func defaultKeyBindings() map[string]string {
	return map[string]string{
		"Up":     "ArrowUp",
		"Down":   "ArrowDown",
		"Left":   "ArrowLeft",
		"Right":  "ArrowRight",
		"A":      "KeyZ",
		"B":      "KeyX",
		"Start":  "Enter",
		"Select": "ShiftRight",
	}
}

// LoadConfig reads a JSON config from path, falling back to defaults
// for any field missing or if the file can't be read.
func LoadConfig(path string) Config {
	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}
	cfg.Defaults()
	return cfg
}

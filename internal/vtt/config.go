package vtt

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional application configuration, read from a yaml
// file next to the binary. Every field has a hard default so the tool
// runs with no config at all.
type Config struct {
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	MapsDir      string `yaml:"maps_dir"`
	TokensDir    string `yaml:"tokens_dir"`
	SavesDir     string `yaml:"saves_dir"`
	LogFile      string `yaml:"log_file"`
}

// DefaultConfig mirrors the tool's historical fixed paths.
func DefaultConfig() Config {
	return Config{
		WindowWidth:  1600,
		WindowHeight: 720,
		MapsDir:      "assets/maps",
		TokensDir:    "assets/tokens",
		SavesDir:     "saves",
		LogFile:      "vtt.log",
	}
}

// LoadConfig reads a yaml config file, falling back to defaults when the
// file is absent or malformed and for any field left unset.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	var in Config
	if err := yaml.Unmarshal(data, &in); err != nil {
		return cfg
	}
	if in.WindowWidth > 0 {
		cfg.WindowWidth = in.WindowWidth
	}
	if in.WindowHeight > 0 {
		cfg.WindowHeight = in.WindowHeight
	}
	if in.MapsDir != "" {
		cfg.MapsDir = in.MapsDir
	}
	if in.TokensDir != "" {
		cfg.TokensDir = in.TokensDir
	}
	if in.SavesDir != "" {
		cfg.SavesDir = in.SavesDir
	}
	if in.LogFile != "" {
		cfg.LogFile = in.LogFile
	}
	return cfg
}

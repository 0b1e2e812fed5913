package handlers

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PrintConfig writes the fully resolved configuration as YAML, after
// the same validation every pipeline run performs.
func PrintConfig(configPath string, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

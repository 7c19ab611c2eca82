package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk pipeline configuration
type File struct {
	Phases   []PhaseConfig  `yaml:"phases"`
	Classify ClassifyConfig `yaml:"classify"`
	Hazard   HazardConfig   `yaml:"hazard"`
}

// PhaseConfig declares one control phase and its exemplar words.
// Declaration order is cycle order.
type PhaseConfig struct {
	Name      string   `yaml:"name"`
	Exemplars []string `yaml:"exemplars"`
}

// ClassifyConfig holds classification thresholds
type ClassifyConfig struct {
	MaxMatchDist *int `yaml:"max_match_dist"`
}

// HazardConfig holds hazard detection thresholds
type HazardConfig struct {
	MaxStall         *int  `yaml:"max_stall"`
	FlagUnknownEntry *bool `yaml:"flag_unknown_entry"`
}

// Load reads a pipeline configuration from a YAML file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &f, nil
}

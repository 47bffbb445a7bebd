package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional per-run file accepted by bill-compare -config.
type FileConfig struct {
	Dir       string   `yaml:"dir" json:"dir"`
	Output    string   `yaml:"output" json:"output"`
	Exclude   []string `yaml:"exclude" json:"exclude"`
	Recursive bool     `yaml:"recursive" json:"recursive"`
	OCR       *bool    `yaml:"ocr" json:"ocr"`
	Summarize bool     `yaml:"summarize" json:"summarize"`
	Hash      bool     `yaml:"hash" json:"hash"`
}

// LoadFileConfig reads YAML or JSON into FileConfig.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return fc, nil
}

// Settings are the effective batch settings after flags, file and env are merged.
type Settings struct {
	Dir       string
	Output    string
	Exclude   []string
	Recursive bool
	OCR       bool
	Summarize bool
	Hash      bool
}

// Apply overlays the fields set in the file onto s. Commands re-apply the
// flags given explicitly on the command line afterwards.
func (fc FileConfig) Apply(s *Settings) {
	if s == nil {
		return
	}
	if fc.Dir != "" {
		s.Dir = fc.Dir
	}
	if fc.Output != "" {
		s.Output = fc.Output
	}
	if fc.Exclude != nil {
		s.Exclude = append([]string{}, fc.Exclude...)
	}
	if fc.Recursive {
		s.Recursive = true
	}
	if fc.OCR != nil {
		s.OCR = *fc.OCR
	}
	if fc.Summarize {
		s.Summarize = true
	}
	if fc.Hash {
		s.Hash = true
	}
}

package normalizer

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/abbreviations.yaml
var abbreviationsYAML []byte

// RulesConfig chứa cấu hình rules được load từ YAML
type RulesConfig struct {
	StreetTypes     map[string][]string `yaml:"street_types"`
	GenericPrefixes []string            `yaml:"generic_prefixes"`
}

// LoadRulesConfig load cấu hình rules từ embedded YAML
func LoadRulesConfig() (*RulesConfig, error) {
	return ParseRulesConfig(abbreviationsYAML)
}

// ParseRulesConfig parse rules từ YAML bất kỳ (dùng cho test và override)
func ParseRulesConfig(data []byte) (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("lỗi parse abbreviation rules: %w", err)
	}
	if len(config.StreetTypes) == 0 {
		return nil, fmt.Errorf("abbreviation rules không có street_types")
	}
	return config, nil
}

package policykit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clearledger/policykit/model"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; the zero value is useful - all nested
// fields inherit their package defaults.
type Config struct {
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	Store    StoreConfig    `json:"store" yaml:"store"`
}

// ApprovalConfig holds approval workflow defaults.
type ApprovalConfig struct {
	// DefaultThreshold applies to policies submitted without an explicit
	// threshold
	DefaultThreshold model.Threshold `json:"defaultThreshold" yaml:"defaultThreshold"`
}

// StoreConfig selects the policy store backend.
type StoreConfig struct {
	// Vendor is either "memory" or "fs"
	Vendor string `json:"vendor" yaml:"vendor"`
	// BasePath roots the fs vendor; ignored for memory
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors previously hard-coded.
func DefaultConfig() *Config {
	return &Config{
		Approval: ApprovalConfig{DefaultThreshold: model.ThresholdAll},
		Store:    StoreConfig{Vendor: "memory"},
	}
}

// LoadConfig reads a YAML configuration file and merges it over the
// defaults.
func LoadConfig(location string) (*Config, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", location, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", location, err)
	}
	return ret, nil
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Approval.DefaultThreshold {
	case model.ThresholdAll, model.ThresholdMajority, model.ThresholdAny, "":
	default:
		return fmt.Errorf("approval.defaultThreshold must be all, majority or any")
	}
	switch c.Store.Vendor {
	case "", "memory":
	case "fs":
		if c.Store.BasePath == "" {
			return fmt.Errorf("store.basePath is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported store vendor: %s", c.Store.Vendor)
	}
	return nil
}

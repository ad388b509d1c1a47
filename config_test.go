package policykit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearledger/policykit/model"
)

func TestLoadConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "policykit.yaml")
	data := []byte(`
approval:
  defaultThreshold: majority
store:
  vendor: fs
  basePath: /var/lib/policykit
`)
	assert.NoError(t, os.WriteFile(location, data, 0o644))

	config, err := LoadConfig(location)
	assert.NoError(t, err)
	assert.Equal(t, model.ThresholdMajority, config.Approval.DefaultThreshold)
	assert.Equal(t, "fs", config.Store.Vendor)
	assert.Equal(t, "/var/lib/policykit", config.Store.BasePath)
	assert.NoError(t, config.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Approval.DefaultThreshold = "most"
	assert.Error(t, bad.Validate())

	fsMissingPath := DefaultConfig()
	fsMissingPath.Store.Vendor = "fs"
	assert.Error(t, fsMissingPath.Validate())

	unknown := DefaultConfig()
	unknown.Store.Vendor = "redis"
	assert.Error(t, unknown.Validate())
}

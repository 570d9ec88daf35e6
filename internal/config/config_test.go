package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad_MinimalConfigGetsDefaults(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
`)

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "itba", config.Repository)
	assert.Equal(t, "2.6.1", config.SchemaVersion)
	assert.Equal(t, "201215/dcee", config.BuildNumber)
	require.NotNil(t, config.PKSeed)
	assert.Equal(t, int64(230), *config.PKSeed)
	assert.Equal(t, "RF Import", config.Project.Name)
	assert.Equal(t, "active", config.Project.State)
	assert.Equal(t, "RF", config.Groups.Library.Name)
	assert.Equal(t, "RF Resources", config.Groups.Resource.Name)
	assert.Equal(t, "project-dump.zip", config.Output.Path)
	assert.Len(t, config.Settings, len(projectdump.DefaultSettings()))
	assert.Nil(t, config.Ledger)
}

func TestLoad_FullConfig(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
repository: "acme"
pk_seed: 0
project:
  name: "Acme Keywords"
  state: "planned"
testobject_version:
  id: "Sprint 7"
settings:
  - key: "optional-checkin"
    value: "true"
  - key: "filter-sync-interval"
    value: "60"
groups:
  library:
    name: "Libraries"
  resource:
    name: "Resources"
attachments:
  attach_resources: true
output:
  path: "out/acme.xml"
ledger:
  redis_url: "redis://localhost:6379/0"
`)

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "acme", config.Repository)
	assert.Equal(t, int64(0), *config.PKSeed)
	assert.Equal(t, "Acme Keywords", config.Project.Name)
	assert.Equal(t, "Acme Keywords", config.Project.TestObjectName, "testobject name follows project name")
	assert.Equal(t, "Sprint 7", config.TestObject.ID)
	assert.Equal(t, []Setting{
		{Key: "optional-checkin", Value: "true"},
		{Key: "filter-sync-interval", Value: "60"},
	}, config.Settings)
	assert.True(t, config.Attachments.AttachResources)
	assert.Equal(t, projectdump.FormatXML, config.OutputFormat())
	require.NotNil(t, config.Ledger)
	assert.Equal(t, "redis://localhost:6379/0", config.Ledger.RedisURL)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/libdoc2tb.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
settings: [unclosed
`)

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing implicit file yields defaults", func(t *testing.T) {
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultFile), false)
		require.NoError(t, err)
		assert.Equal(t, Default(), config)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadOrDefault(filepath.Join(t.TempDir(), "custom.yml"), true)
		assert.Error(t, err)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		configPath := writeConfig(t, "version: \"1.0\"\nrepository: \"other\"\n")
		config, err := LoadOrDefault(configPath, false)
		require.NoError(t, err)
		assert.Equal(t, "other", config.Repository)
	})
}

func TestValidate(t *testing.T) {
	seed := int64(-5)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unsupported version", func(c *Config) { c.Version = "2.0" }, "unsupported version: 2.0"},
		{"invalid repository", func(c *Config) { c.Repository = "has space" }, "invalid repository id"},
		{"negative seed", func(c *Config) { c.PKSeed = &seed }, "pk_seed must be >= 0"},
		{"invalid state", func(c *Config) { c.Project.State = "paused" }, "invalid project.state: paused"},
		{"duplicate setting", func(c *Config) {
			c.Settings = []Setting{{Key: "a", Value: "1"}, {Key: "a", Value: "2"}}
		}, "duplicate setting key 'a'"},
		{"empty setting key", func(c *Config) { c.Settings = []Setting{{Value: "1"}} }, "settings[0]: key is required"},
		{"setting key with space", func(c *Config) {
			c.Settings = []Setting{{Key: "ok-key", Value: "1"}, {Key: "a b", Value: "2"}}
		}, "settings[1]: invalid key 'a b'"},
		{"setting key with markup", func(c *Config) { c.Settings = []Setting{{Key: "x><y", Value: "1"}} }, "invalid key 'x><y'"},
		{"invalid format", func(c *Config) { c.Output.Format = "tar" }, "invalid output.format: tar"},
		{"empty ledger", func(c *Config) { c.Ledger = &LedgerConfig{} }, "ledger.redis_url is required"},
		{"same group names", func(c *Config) { c.Groups.Resource.Name = "RF" }, "different names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path     string
		format   string
		expected projectdump.Format
	}{
		{"dump.zip", "", projectdump.FormatZip},
		{"dump.xml", "", projectdump.FormatXML},
		{"dump.xml", "zip", projectdump.FormatZip},
		{"dump.out", "xml", projectdump.FormatXML},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			config := Default()
			config.Output = OutputConfig{Path: tt.path, Format: tt.format}
			assert.Equal(t, tt.expected, config.OutputFormat())
		})
	}
}

func TestAssemblerOptions(t *testing.T) {
	config := Default()
	config.Attachments.AttachResources = true
	created := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

	opts := config.AssemblerOptions(created)

	expected := projectdump.DefaultOptions()
	expected.AttachResources = true
	expected.CreatedTime = created
	assert.Equal(t, expected, opts)
}

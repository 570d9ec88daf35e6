package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/dyluth/libdoc2tb/pkg/projectdump/markup"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file name looked up in the working directory.
const DefaultFile = "libdoc2tb.yml"

// Config represents the top-level libdoc2tb.yml configuration
type Config struct {
	Version       string            `yaml:"version"`
	Repository    string            `yaml:"repository"`
	SchemaVersion string            `yaml:"schema_version"`
	BuildNumber   string            `yaml:"build_number"`
	PKSeed        *int64            `yaml:"pk_seed,omitempty"` // First key issued is pk_seed+1 (default 230)
	Project       ProjectConfig     `yaml:"project"`
	TestObject    TestObjectConfig  `yaml:"testobject_version"`
	Settings      []Setting         `yaml:"settings,omitempty"` // Ordered; replaces the built-in table when set
	Groups        GroupsConfig      `yaml:"groups"`
	Attachments   AttachmentsConfig `yaml:"attachments"`
	Output        OutputConfig      `yaml:"output"`
	Ledger        *LedgerConfig     `yaml:"ledger,omitempty"`
}

// ProjectConfig holds the project details of the dump header
type ProjectConfig struct {
	Name           string `yaml:"name"`
	TestObjectName string `yaml:"testobject_name"`
	State          string `yaml:"state"` // planned, active, finished or closed
	Description    string `yaml:"description"`
}

// TestObjectConfig holds the version container fields
type TestObjectConfig struct {
	ID          string `yaml:"id"`
	StartDate   string `yaml:"start_date"`
	Description string `yaml:"description"`
}

// Setting is one entry of the ordered settings table
type Setting struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// GroupsConfig names the two root subdivisions
type GroupsConfig struct {
	Library  GroupConfig `yaml:"library"`
	Resource GroupConfig `yaml:"resource"`
}

// GroupConfig is one root subdivision
type GroupConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// AttachmentsConfig controls resource file attachments
type AttachmentsConfig struct {
	AttachResources bool `yaml:"attach_resources"`
}

// OutputConfig controls where and how the project-dump is written
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format,omitempty"` // "zip" or "xml"; empty picks by extension
}

// LedgerConfig enables the Redis export history
type LedgerConfig struct {
	RedisURL string `yaml:"redis_url"`
}

var validStates = map[string]bool{
	"planned":  true,
	"active":   true,
	"finished": true,
	"closed":   true,
}

// Default returns the built-in configuration of a plain Robot Framework import.
func Default() *Config {
	opts := projectdump.DefaultOptions()
	seed := opts.Seed

	settings := make([]Setting, 0, len(opts.Settings))
	for _, s := range opts.Settings {
		settings = append(settings, Setting{Key: s.Key, Value: s.Value})
	}

	return &Config{
		Version:       "1.0",
		Repository:    opts.Repository,
		SchemaVersion: opts.SchemaVersion,
		BuildNumber:   opts.BuildNumber,
		PKSeed:        &seed,
		Project: ProjectConfig{
			Name:           opts.Project.Name,
			TestObjectName: opts.Project.TestObjectName,
			State:          opts.Project.State,
			Description:    opts.Project.Description,
		},
		TestObject: TestObjectConfig{
			ID:          opts.Version.ID,
			StartDate:   opts.Version.StartDate,
			Description: opts.Version.Description,
		},
		Settings: settings,
		Groups: GroupsConfig{
			Library:  GroupConfig{Name: opts.LibraryGroup.Name, Description: opts.LibraryGroup.Description},
			Resource: GroupConfig{Name: opts.ResourceGroup.Name, Description: opts.ResourceGroup.Description},
		},
		Output: OutputConfig{Path: "project-dump.zip"},
	}
}

// Validate applies defaults for omitted fields and checks the configuration
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	def := Default()
	applyString(&c.Repository, def.Repository)
	applyString(&c.SchemaVersion, def.SchemaVersion)
	applyString(&c.BuildNumber, def.BuildNumber)
	applyString(&c.Project.Name, def.Project.Name)
	applyString(&c.Project.TestObjectName, c.Project.Name)
	applyString(&c.Project.State, def.Project.State)
	applyString(&c.Project.Description, def.Project.Description)
	applyString(&c.TestObject.ID, def.TestObject.ID)
	applyString(&c.TestObject.StartDate, def.TestObject.StartDate)
	applyString(&c.TestObject.Description, def.TestObject.Description)
	applyString(&c.Groups.Library.Name, def.Groups.Library.Name)
	applyString(&c.Groups.Library.Description, def.Groups.Library.Description)
	applyString(&c.Groups.Resource.Name, def.Groups.Resource.Name)
	applyString(&c.Groups.Resource.Description, def.Groups.Resource.Description)
	applyString(&c.Output.Path, def.Output.Path)
	if c.PKSeed == nil {
		c.PKSeed = def.PKSeed
	}
	if len(c.Settings) == 0 {
		c.Settings = def.Settings
	}

	if *c.PKSeed < 0 {
		return fmt.Errorf("pk_seed must be >= 0, got %d", *c.PKSeed)
	}

	if !validStates[c.Project.State] {
		return fmt.Errorf("invalid project.state: %s (must be 'planned', 'active', 'finished', or 'closed')", c.Project.State)
	}

	keysSeen := make(map[string]bool)
	for i, s := range c.Settings {
		if s.Key == "" {
			return fmt.Errorf("settings[%d]: key is required", i)
		}
		if !markup.ValidName(s.Key) {
			return fmt.Errorf("settings[%d]: invalid key '%s' (must be an XML element name: a letter or '_' followed by letters, digits, '-', '_' or '.')", i, s.Key)
		}
		if keysSeen[s.Key] {
			return fmt.Errorf("duplicate setting key '%s'", s.Key)
		}
		keysSeen[s.Key] = true
	}

	switch projectdump.Format(c.Output.Format) {
	case "", projectdump.FormatZip, projectdump.FormatXML:
	default:
		return fmt.Errorf("invalid output.format: %s (must be 'zip' or 'xml')", c.Output.Format)
	}

	if c.Ledger != nil && c.Ledger.RedisURL == "" {
		return fmt.Errorf("ledger.redis_url is required when the ledger section is present")
	}

	// Repository, seed and group checks are shared with the assembler
	opts := c.AssemblerOptions(time.Time{})
	if err := opts.Validate(); err != nil {
		return err
	}

	return nil
}

// OutputFormat returns the configured format, or the one implied by the output path.
func (c *Config) OutputFormat() projectdump.Format {
	if c.Output.Format != "" {
		return projectdump.Format(c.Output.Format)
	}
	return projectdump.FormatForPath(c.Output.Path)
}

// AssemblerOptions converts the configuration into assembler options stamped with created.
func (c *Config) AssemblerOptions(created time.Time) projectdump.Options {
	opts := projectdump.Options{
		Repository:    c.Repository,
		SchemaVersion: c.SchemaVersion,
		BuildNumber:   c.BuildNumber,
		Project: projectdump.Project{
			Name:           c.Project.Name,
			TestObjectName: c.Project.TestObjectName,
			State:          c.Project.State,
			Description:    c.Project.Description,
		},
		Version: projectdump.TestObjectVersion{
			ID:          c.TestObject.ID,
			StartDate:   c.TestObject.StartDate,
			Description: c.TestObject.Description,
		},
		LibraryGroup:    projectdump.Group{Name: c.Groups.Library.Name, Description: c.Groups.Library.Description},
		ResourceGroup:   projectdump.Group{Name: c.Groups.Resource.Name, Description: c.Groups.Resource.Description},
		AttachResources: c.Attachments.AttachResources,
		CreatedTime:     created,
	}
	if c.PKSeed != nil {
		opts.Seed = *c.PKSeed
	}
	for _, s := range c.Settings {
		opts.Settings = append(opts.Settings, projectdump.Setting{Key: s.Key, Value: s.Value})
	}
	return opts
}

func applyString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// Load reads and validates libdoc2tb.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path when it exists. A missing file yields Default() unless
// the caller asked for that file explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	return Load(path)
}

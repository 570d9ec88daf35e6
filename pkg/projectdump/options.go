package projectdump

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/projectdump/markup"
)

// CreatedTimeLayout is the createdTime format of the project-dump.
const CreatedTimeLayout = "2006-01-02 15:04:05 -0700"

var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Project holds the static project details of the dump header.
type Project struct {
	Name           string
	TestObjectName string
	State          string
	Description    string
}

// TestObjectVersion holds the static fields of the version container.
type TestObjectVersion struct {
	ID          string
	StartDate   string
	Description string
}

// Setting is one key/value pair of the project settings block.
type Setting struct {
	Key   string
	Value string
}

// Group names and describes one root subdivision.
type Group struct {
	Name        string
	Description string
}

// DescribeFunc renders documentation into the plain description and the
// HTML description of an element.
type DescribeFunc func(doc, docFormat string) (text, html string)

// Options configures an Assembler.
type Options struct {
	Repository    string
	SchemaVersion string
	BuildNumber   string
	Seed          int64

	Project  Project
	Version  TestObjectVersion
	Settings []Setting

	LibraryGroup  Group
	ResourceGroup Group

	// AttachResources links every interaction of a resource to the resource file.
	AttachResources bool

	// CreatedTime is stamped into the header; zero means time.Now().
	CreatedTime time.Time

	Describe DescribeFunc
	Logger   *slog.Logger
}

// DefaultSettings returns the project settings block in emission order.
func DefaultSettings() []Setting {
	return []Setting{
		{Key: "overwrite-exec-responsible", Value: "false"},
		{Key: "optional-checkin", Value: "false"},
		{Key: "filter-sync-interval", Value: "30"},
		{Key: "ignore-not-edited", Value: "false"},
		{Key: "ignore-not-planned", Value: "true"},
		{Key: "designers-may-manage-baselines", Value: "false"},
		{Key: "designers-may-import-baselines", Value: "false"},
		{Key: "only-admins-manage-udfs", Value: "false"},
		{Key: "variants-management-enabled", Value: "false"},
	}
}

// DefaultOptions returns the options of a plain Robot Framework import.
func DefaultOptions() Options {
	return Options{
		Repository:    "itba",
		SchemaVersion: "2.6.1",
		BuildNumber:   "201215/dcee",
		Seed:          DefaultSeed,
		Project: Project{
			Name:           "RF Import",
			TestObjectName: "RF Import",
			State:          "active",
			Description:    "RF import generated via libdoc2tb",
		},
		Version: TestObjectVersion{
			ID:          "RF Import",
			StartDate:   "2021-03-01",
			Description: "Robot Framework import",
		},
		Settings:      DefaultSettings(),
		LibraryGroup:  Group{Name: "RF", Description: "Robot Framework test elements import"},
		ResourceGroup: Group{Name: "RF Resources", Description: "Robot Framework resource import"},
	}
}

// Validate checks options that would produce an unusable document.
func (o *Options) Validate() error {
	if !repositoryPattern.MatchString(o.Repository) {
		return fmt.Errorf("invalid repository id '%s': must match %s", o.Repository, repositoryPattern)
	}
	if o.Seed < 0 {
		return fmt.Errorf("key seed must be >= 0, got %d", o.Seed)
	}
	if o.LibraryGroup.Name == "" || o.ResourceGroup.Name == "" {
		return fmt.Errorf("group names must not be empty")
	}
	if o.LibraryGroup.Name == o.ResourceGroup.Name {
		return fmt.Errorf("library and resource groups must have different names, both are '%s'", o.LibraryGroup.Name)
	}
	for _, s := range o.Settings {
		if !markup.ValidName(s.Key) {
			return fmt.Errorf("invalid setting key '%s': must be an XML element name", s.Key)
		}
	}
	return nil
}

package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/libdoc2tb/internal/config"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*
var templatesFS embed.FS

// SpecsDir is the directory created for libdoc spec files.
const SpecsDir = "specs"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string // Relative to the project directory
	Template    string
	Permissions os.FileMode
}

var projectFiles = []FileInfo{
	{Path: config.DefaultFile, Template: "templates/libdoc2tb.yml.tmpl", Permissions: 0644},
	{Path: filepath.Join(SpecsDir, "README.md"), Template: "templates/README.md.tmpl", Permissions: 0644},
}

// Initialize writes the project skeleton into dir and returns the created paths.
// Existing files are only replaced when force is set.
func Initialize(dir string, force bool) ([]string, error) {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Join(dir, SpecsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", SpecsDir, err)
	}

	created := make([]string, 0, len(projectFiles))
	for _, file := range projectFiles {
		content, err := templatesFS.ReadFile(file.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", file.Path, err)
		}
		if err := os.WriteFile(filepath.Join(dir, file.Path), content, file.Permissions); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
		created = append(created, file.Path)
	}

	if err := validateConfig(filepath.Join(dir, config.DefaultFile)); err != nil {
		return nil, err
	}

	return created, nil
}

// validateConfig checks that the written configuration loads cleanly
func validateConfig(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", config.DefaultFile, err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return fmt.Errorf("created %s is not valid YAML: %w", config.DefaultFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultFile, err)
	}

	return nil
}

// CheckExisting returns an error listing the skeleton files already present in dir.
func CheckExisting(dir string) error {
	var existing []string
	for _, file := range projectFiles {
		if _, err := os.Stat(filepath.Join(dir, file.Path)); err == nil {
			existing = append(existing, file.Path)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	errMsg := "project already initialized\n\nFound existing"
	if len(existing) == 1 {
		errMsg += fmt.Sprintf(": %s\n", existing[0])
	} else {
		errMsg += " files:\n"
		for _, file := range existing {
			errMsg += fmt.Sprintf("  - %s\n", file)
		}
	}
	errMsg += "\nUse 'libdoc2tb init --force' to overwrite them"

	return fmt.Errorf("%s", errMsg)
}

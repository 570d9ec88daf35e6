package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/libdoc2tb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(t *testing.T, dir string)
		wantErr   string
	}{
		{
			name:      "fresh initialization",
			setupFunc: func(t *testing.T, dir string) {},
		},
		{
			name:  "existing config without force",
			force: false,
			setupFunc: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("old"), 0644))
			},
			wantErr: "project already initialized",
		},
		{
			name:  "force overwrites existing files",
			force: true,
			setupFunc: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("old"), 0644))
				require.NoError(t, os.MkdirAll(filepath.Join(dir, SpecsDir), 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, SpecsDir, "Calc.json"), []byte("{}"), 0644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(t, dir)

			created, err := Initialize(dir, tt.force)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, []string{config.DefaultFile, filepath.Join(SpecsDir, "README.md")}, created)

			cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
			require.NoError(t, err)
			assert.Equal(t, config.Default(), cfg, "template must match the built-in defaults")

			info, err := os.Stat(filepath.Join(dir, config.DefaultFile))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
		})
	}
}

func TestInitialize_KeepsUnrelatedSpecs(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, SpecsDir, "Calc.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(spec), 0755))
	require.NoError(t, os.WriteFile(spec, []byte("{}"), 0644))

	_, err := Initialize(dir, true)
	require.NoError(t, err)

	content, err := os.ReadFile(spec)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

func TestCheckExisting(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		assert.NoError(t, CheckExisting(t.TempDir()))
	})

	t.Run("one existing file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("version: '1.0'"), 0644))

		err := CheckExisting(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Found existing: libdoc2tb.yml")
		assert.Contains(t, err.Error(), "libdoc2tb init --force")
	})

	t.Run("several existing files", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Initialize(dir, false)
		require.NoError(t, err)

		err = CheckExisting(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Found existing files:")
		assert.Contains(t, err.Error(), "  - libdoc2tb.yml\n")
	})
}

func TestTemplatesAreEmbedded(t *testing.T) {
	for _, file := range projectFiles {
		content, err := templatesFS.ReadFile(file.Template)
		require.NoError(t, err, file.Template)
		assert.NotEmpty(t, content)
	}
}

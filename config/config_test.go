package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	yaml := `
generator_version: "2.3.1"
compress: false
read_only: true
`
	cfg, err := Load(strings.NewReader(yaml), "/repo")
	require.NoError(t, err)
	assert.Equal(t, "2.3.1", cfg.GeneratorVersion)
	assert.False(t, cfg.Compress)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, "/repo", cfg.ArtifactRoot)
}

func TestLoadRejectsInvalidGeneratorVersion(t *testing.T) {
	yaml := `generator_version: "not-a-semver!!"`
	_, err := Load(strings.NewReader(yaml), "/repo")
	assert.Error(t, err)
}

func TestLoadEmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""), "/repo")
	require.NoError(t, err)
	assert.Equal(t, Default("/repo"), cfg)
}

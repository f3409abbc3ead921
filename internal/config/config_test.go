package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "words.pickle", cfg.Vocab.Path)
	assert.Equal(t, "lexical", cfg.Provider.Type)
	require.NotNil(t, cfg.Provider.Lexical)
	assert.Equal(t, "es_core_news_md", cfg.Provider.Lexical.ModelName)
	assert.Equal(t, "es_core_news_sm", cfg.Provider.Lexical.FallbackModelName)
	assert.Equal(t, 1000, cfg.Build.ProgressEvery)
	assert.Equal(t, 1, cfg.Build.Workers)
	assert.Equal(t, []string{"$UNK$", "$NUM$"}, cfg.Build.ReservedTokens)
	assert.Equal(t, "vocab_embeddings_lexical.npz", cfg.OutputPath())
}

func TestLoad_ContextualDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
provider:
  type: contextual
  contextual:
    directions: [forward]
    base_url: http://flair:9000/v1
build:
  workers: 4
`
	require.NoError(t, os.WriteFile(p, []byte(yml), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	c := cfg.Provider.Contextual
	require.NotNil(t, c)
	assert.Equal(t, []string{"forward"}, c.Directions)
	assert.Equal(t, "es-forward", c.Models["forward"])
	assert.Equal(t, "http://flair:9000/v1", c.BaseURL)
	assert.Equal(t, 60, c.TimeoutSecs)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.Equal(t, "vocab_embeddings_contextual.npz", cfg.OutputPath())
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("provider: [oops"), 0o644))

	_, err := Load(p)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Output.Path = "out.npz"

	require.NoError(t, Save(p, cfg))
	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "vocabemb", "config.yaml"), path)
	assert.Equal(t, "lexical", cfg.Provider.Type)
	assert.FileExists(t, path)
}

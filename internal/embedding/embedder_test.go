package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabemb/internal/config"
	"vocabemb/internal/domain"
	"vocabemb/internal/embedding/lexical"
)

// Compile-time interface checks.
var (
	_ domain.Provider = (*MockProvider)(nil)
	_ domain.Provider = (*lexical.Provider)(nil)
)

func TestNew_Lexical(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "es_core_news_md.vec"), []byte("casa 1 2\n"), 0o644))

	p, degraded, err := New(context.Background(), config.ProviderConfig{
		Type:    "lexical",
		Lexical: &config.LexicalConfig{ModelDir: dir, ModelName: "es_core_news_md", FallbackModelName: "es_core_news_sm"},
	})
	require.NoError(t, err)
	assert.Nil(t, degraded)
	assert.Equal(t, "lexical", p.Name())
}

func TestNew_LexicalDegraded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "es_core_news_sm.vec"), []byte("casa 1 2\n"), 0o644))

	p, degraded, err := New(context.Background(), config.ProviderConfig{
		Type:    "lexical",
		Lexical: &config.LexicalConfig{ModelDir: dir, ModelName: "es_core_news_md", FallbackModelName: "es_core_news_sm"},
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, degraded)
	assert.Equal(t, "es_core_news_sm", degraded.Secondary)
}

func TestNew_InitFailures(t *testing.T) {
	cases := map[string]config.ProviderConfig{
		"unknown type":      {Type: "glove"},
		"missing lexical":   {Type: "lexical"},
		"missing tables":    {Type: "lexical", Lexical: &config.LexicalConfig{ModelDir: t.TempDir(), ModelName: "x"}},
		"contextual no cfg": {Type: "contextual"},
		"contextual unreachable": {Type: "contextual", Contextual: &config.ContextualConfig{
			BaseURL:     "http://127.0.0.1:1",
			Directions:  []string{"forward"},
			Models:      map[string]string{"forward": "es-forward"},
			TimeoutSecs: 1,
		}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			p, _, err := New(context.Background(), cfg)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, domain.ErrProviderInit)
		})
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider(map[string][]float32{"casa": {1, 0}})

	v, err := m.Embed(context.Background(), "casa")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)

	_, err = m.Embed(context.Background(), "rareword")
	assert.ErrorIs(t, err, domain.ErrTokenAbsent)
	assert.Equal(t, []string{"casa", "rareword"}, m.Calls())
}

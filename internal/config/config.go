package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ContextualConfig configures the stacked forward/backward language-model embedder.
type ContextualConfig struct {
	Directions  []string          `yaml:"directions"`
	Models      map[string]string `yaml:"models"`
	BaseURL     string            `yaml:"base_url"`
	APIKeyEnv   string            `yaml:"api_key_env"`
	TimeoutSecs int               `yaml:"timeout_secs"`
}

// LexicalConfig configures the static lexical vector table.
type LexicalConfig struct {
	ModelName         string `yaml:"model_name"`
	FallbackModelName string `yaml:"fallback_model_name"`
	ModelDir          string `yaml:"model_dir"`
}

// ProviderConfig selects and configures the embedding provider.
type ProviderConfig struct {
	Type       string            `yaml:"type"`
	Contextual *ContextualConfig `yaml:"contextual,omitempty"`
	Lexical    *LexicalConfig    `yaml:"lexical,omitempty"`
}

// VocabConfig locates the vocabulary source.
type VocabConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig locates the output archive. An empty path means vocab_embeddings_<provider>.npz.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// BuildConfig tunes the matrix build.
type BuildConfig struct {
	ProgressEvery  int      `yaml:"progress_every"`
	Workers        int      `yaml:"workers"`
	ReservedTokens []string `yaml:"reserved_tokens"`
	Fallback       string   `yaml:"fallback"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Vocab    VocabConfig    `yaml:"vocab"`
	Output   OutputConfig   `yaml:"output"`
	Provider ProviderConfig `yaml:"provider"`
	Build    BuildConfig    `yaml:"build"`
}

// OutputPath returns the configured output path or the per-provider default.
func (c *AppConfig) OutputPath() string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	return "vocab_embeddings_" + c.Provider.Type + ".npz"
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/vocabemb/config.yaml.
// If neither exists, it writes defaults to ~/.config/vocabemb/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vocabemb", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Vocab:    VocabConfig{Path: "words.pickle"},
		Provider: ProviderConfig{Type: "lexical"},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values. It is safe to call again after flags changed the provider type.
func ApplyDefaults(cfg *AppConfig) {
	if cfg.Vocab.Path == "" {
		cfg.Vocab.Path = "words.pickle"
	}
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "lexical"
	}
	if cfg.Build.ProgressEvery <= 0 {
		cfg.Build.ProgressEvery = 1000
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = 1
	}
	if len(cfg.Build.ReservedTokens) == 0 {
		cfg.Build.ReservedTokens = []string{"$UNK$", "$NUM$"}
	}
	if cfg.Build.Fallback == "" {
		cfg.Build.Fallback = "mean"
	}
	switch cfg.Provider.Type {
	case "contextual":
		if cfg.Provider.Contextual == nil {
			cfg.Provider.Contextual = &ContextualConfig{}
		}
		c := cfg.Provider.Contextual
		if len(c.Directions) == 0 {
			c.Directions = []string{"forward", "backward"}
		}
		if c.Models == nil {
			c.Models = map[string]string{}
		}
		if c.Models["forward"] == "" {
			c.Models["forward"] = "es-forward"
		}
		if c.Models["backward"] == "" {
			c.Models["backward"] = "es-backward"
		}
		if c.BaseURL == "" {
			c.BaseURL = "http://localhost:8080/v1"
		}
		if c.TimeoutSecs == 0 {
			c.TimeoutSecs = 60
		}
	case "lexical":
		if cfg.Provider.Lexical == nil {
			cfg.Provider.Lexical = &LexicalConfig{}
		}
		l := cfg.Provider.Lexical
		if l.ModelName == "" {
			l.ModelName = "es_core_news_md"
		}
		if l.FallbackModelName == "" {
			l.FallbackModelName = "es_core_news_sm"
		}
		if l.ModelDir == "" {
			l.ModelDir = "models"
		}
	}
}

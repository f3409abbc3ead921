package embedding

import (
	"context"
	"fmt"
	"time"

	"vocabemb/internal/config"
	"vocabemb/internal/domain"
	"vocabemb/internal/embedding/contextual"
	"vocabemb/internal/embedding/lexical"
)

// New initializes the provider selected by cfg.Type. Initialization failures are returned
// as *domain.ProviderInitError. A non-nil *domain.ProviderDegraded means the provider works
// but fell back to a secondary model.
func New(ctx context.Context, cfg config.ProviderConfig) (domain.Provider, *domain.ProviderDegraded, error) {
	switch cfg.Type {
	case "contextual":
		if cfg.Contextual == nil {
			return nil, nil, initErr(cfg.Type, fmt.Errorf("contextual provider config missing"))
		}
		c := cfg.Contextual
		p, err := contextual.New(ctx, contextual.Config{
			BaseURL:    c.BaseURL,
			APIKeyEnv:  c.APIKeyEnv,
			Directions: c.Directions,
			Models:     c.Models,
			Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, initErr(cfg.Type, err)
		}
		return p, nil, nil
	case "lexical":
		if cfg.Lexical == nil {
			return nil, nil, initErr(cfg.Type, fmt.Errorf("lexical provider config missing"))
		}
		p, degraded, err := lexical.Open(lexical.Config{
			ModelDir:          cfg.Lexical.ModelDir,
			ModelName:         cfg.Lexical.ModelName,
			FallbackModelName: cfg.Lexical.FallbackModelName,
		})
		if err != nil {
			return nil, nil, initErr(cfg.Type, err)
		}
		return p, degraded, nil
	default:
		return nil, nil, initErr(cfg.Type, fmt.Errorf("unknown provider type %q", cfg.Type))
	}
}

func initErr(name string, err error) error {
	return &domain.ProviderInitError{Provider: name, Err: err}
}

package lexical

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vocabemb/internal/domain"
)

// Table file extensions tried, in order, for a model name.
var tableExtensions = []string{".vec", ".vec.gz", ".txt"}

// Config configures the static lexical embedder.
type Config struct {
	ModelDir          string
	ModelName         string
	FallbackModelName string
}

// Provider returns static per-token vectors from a pretrained table.
// It is read-only after Open and safe for concurrent use.
type Provider struct {
	model string
	table *table
}

// Open loads the primary table. If it does not exist, the fallback table is loaded and a
// *domain.ProviderDegraded describing the substitution is returned alongside the provider.
func Open(cfg Config) (*Provider, *domain.ProviderDegraded, error) {
	if cfg.ModelName == "" {
		return nil, nil, errors.New("model name is required")
	}
	t, err := loadModel(cfg.ModelDir, cfg.ModelName)
	if err == nil {
		return &Provider{model: cfg.ModelName, table: t}, nil, nil
	}
	if !errors.Is(err, os.ErrNotExist) || cfg.FallbackModelName == "" {
		return nil, nil, err
	}
	primaryErr := err
	t, err = loadModel(cfg.ModelDir, cfg.FallbackModelName)
	if err != nil {
		return nil, nil, fmt.Errorf("fallback after %v: %w", primaryErr, err)
	}
	degraded := &domain.ProviderDegraded{
		Primary:   cfg.ModelName,
		Secondary: cfg.FallbackModelName,
		Err:       primaryErr,
	}
	return &Provider{model: cfg.FallbackModelName, table: t}, degraded, nil
}

func loadModel(dir, name string) (*table, error) {
	for _, ext := range tableExtensions {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return readTableFile(p)
	}
	return nil, fmt.Errorf("model %s: no table in %s: %w", name, dir, os.ErrNotExist)
}

// Name returns the identifier of this embedder implementation.
func (p *Provider) Name() string { return "lexical" }

// Model returns the name of the table in use.
func (p *Provider) Model() string { return p.model }

// Dimension returns the table's vector length.
func (p *Provider) Dimension() int { return p.table.dim }

// Embed returns the vector of the token's first sub-unit. A token without sub-units is absent.
func (p *Provider) Embed(_ context.Context, token string) ([]float32, error) {
	units := subUnits(token)
	if len(units) == 0 {
		return nil, domain.ErrTokenAbsent
	}
	return p.lookup(units[0]), nil
}

func (p *Provider) lookup(word string) []float32 {
	out := make([]float32, p.table.dim)
	if v, ok := p.table.vectors[word]; ok {
		copy(out, v)
		return out
	}
	lower := strings.ToLower(word)
	if v, ok := p.table.vectors[lower]; ok {
		copy(out, v)
		return out
	}
	// Compose from character n-gram entries when the table carries them.
	sum := make([]float64, p.table.dim)
	found := 0
	for _, g := range charNGrams(lower, 3, 5) {
		v, ok := p.table.vectors[g]
		if !ok {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		found++
	}
	if found > 0 {
		for i := range out {
			out[i] = float32(sum[i] / float64(found))
		}
	}
	return out
}

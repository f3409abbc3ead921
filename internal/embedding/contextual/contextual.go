package contextual

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"vocabemb/internal/domain"
)

// Known directions, in stacking order.
const (
	Forward  = "forward"
	Backward = "backward"
)

// Config configures the stacked contextual embedder.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Directions []string
	// Models maps a direction to the model name served for it.
	Models  map[string]string
	Timeout time.Duration
	Client  *http.Client
}

type direction struct {
	name  string
	model string
}

// Provider embeds a single-token sentence with every configured direction's
// character language model and concatenates the outputs.
type Provider struct {
	baseURL    string
	apiKey     string
	directions []direction
	client     *http.Client
}

// New validates the direction set and checks that every direction's model is served.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if len(cfg.Directions) == 0 {
		return nil, errors.New("no directions configured")
	}
	seen := make(map[string]bool, len(cfg.Directions))
	dirs := make([]direction, 0, len(cfg.Directions))
	for _, d := range cfg.Directions {
		if d != Forward && d != Backward {
			return nil, fmt.Errorf("unknown direction %q", d)
		}
		if seen[d] {
			return nil, fmt.Errorf("direction %q listed twice", d)
		}
		seen[d] = true
		model := cfg.Models[d]
		if model == "" {
			return nil, fmt.Errorf("no model configured for direction %q", d)
		}
		dirs = append(dirs, direction{name: d, model: model})
	}
	var key string
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
		}
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	client := cfg.Client
	if client == nil {
		t := cfg.Timeout
		if t == 0 {
			t = 60 * time.Second
		}
		client = &http.Client{Timeout: t}
	}
	p := &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     key,
		directions: dirs,
		client:     client,
	}
	if err := p.checkModels(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the identifier of this embedder implementation.
func (p *Provider) Name() string { return "contextual" }

// Embed returns the concatenation of every direction's vector for token.
func (p *Provider) Embed(ctx context.Context, token string) ([]float32, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrTokenAbsent
	}
	var out []float32
	for _, d := range p.directions {
		v, err := p.embedOne(ctx, d.model, token)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		out = append(out, v...)
	}
	return out, nil
}

func (p *Provider) embedOne(ctx context.Context, model, token string) ([]float32, error) {
	type reqBody struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}
	data, err := json.Marshal(reqBody{Input: token, Prompt: token, Model: model})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	// Try OpenAI-compatible response first
	var openaiOut struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil && openaiOut.Data != nil {
		if len(openaiOut.Data) == 0 || len(openaiOut.Data[0].Embedding) == 0 {
			return nil, domain.ErrTokenAbsent
		}
		return openaiOut.Data[0].Embedding, nil
	}
	// Fallback to Ollama-native shape: { "embedding": [...] }
	var ollamaOut struct {
		Embedding *[]float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if ollamaOut.Embedding == nil {
		return nil, errors.New("embeddings response has neither data nor embedding")
	}
	if len(*ollamaOut.Embedding) == 0 {
		return nil, domain.ErrTokenAbsent
	}
	return *ollamaOut.Embedding, nil
}

// checkModels is the one-time model load: every direction's model must be listed by GET /models.
func (p *Provider) checkModels(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	p.authorize(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("list models failed: %s", resp.Status)
	}
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode models response: %w", err)
	}
	served := make(map[string]bool, len(out.Data))
	for _, m := range out.Data {
		served[m.ID] = true
	}
	for _, d := range p.directions {
		if !served[d.model] {
			return fmt.Errorf("model %q for direction %s is not served at %s", d.model, d.name, p.baseURL)
		}
	}
	return nil
}

func (p *Provider) authorize(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}

package contextual

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabemb/internal/domain"
)

// fakeServer serves /models and /embeddings for a fixed set of models. Each model
// returns a vector derived from the input length so directions are distinguishable.
type fakeServer struct {
	models     []string
	ollama     bool
	embedCalls atomic.Int32
	authHeader atomic.Value
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /models", func(w http.ResponseWriter, r *http.Request) {
		f.authHeader.Store(r.Header.Get("Authorization"))
		type model struct {
			ID string `json:"id"`
		}
		var out struct {
			Data []model `json:"data"`
		}
		for _, m := range f.models {
			out.Data = append(out.Data, model{ID: m})
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /embeddings", func(w http.ResponseWriter, r *http.Request) {
		f.embedCalls.Add(1)
		var req struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var vec []float32
		switch {
		case req.Input == "\u200b":
			vec = []float32{}
		case req.Model == "es-forward":
			vec = []float32{float32(len(req.Input)), 1}
		default:
			vec = []float32{-1, float32(len(req.Input))}
		}
		if f.ollama {
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
			return
		}
		data := []map[string]any{}
		if len(vec) > 0 {
			data = append(data, map[string]any{"embedding": vec, "index": 0})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
	return mux
}

func newProvider(t *testing.T, f *fakeServer, dirs ...string) (*Provider, error) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return New(context.Background(), Config{
		BaseURL:    srv.URL + "/",
		Directions: dirs,
		Models:     map[string]string{Forward: "es-forward", Backward: "es-backward"},
		Client:     srv.Client(),
	})
}

func TestProvider_StacksDirectionsInOrder(t *testing.T) {
	f := &fakeServer{models: []string{"es-forward", "es-backward"}}
	p, err := newProvider(t, f, Forward, Backward)
	require.NoError(t, err)

	v, err := p.Embed(context.Background(), "casa")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1, -1, 4}, v)
	assert.Equal(t, int32(2), f.embedCalls.Load())
	assert.Equal(t, "contextual", p.Name())
}

func TestProvider_OllamaShape(t *testing.T) {
	f := &fakeServer{models: []string{"es-forward"}, ollama: true}
	p, err := newProvider(t, f, Forward)
	require.NoError(t, err)

	v, err := p.Embed(context.Background(), "perro")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1}, v)
}

func TestProvider_AbsentTokens(t *testing.T) {
	f := &fakeServer{models: []string{"es-forward", "es-backward"}}
	p, err := newProvider(t, f, Forward, Backward)
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrTokenAbsent)
	assert.Equal(t, int32(0), f.embedCalls.Load())

	_, err = p.Embed(context.Background(), "\u200b")
	assert.ErrorIs(t, err, domain.ErrTokenAbsent)
}

func TestProvider_ServerErrorIsNotAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /models", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"es-forward"}]}`))
	})
	mux.HandleFunc("POST /embeddings", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := New(context.Background(), Config{
		BaseURL:    srv.URL,
		Directions: []string{Forward},
		Models:     map[string]string{Forward: "es-forward"},
		Client:     srv.Client(),
	})
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "casa")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTokenAbsent)
}

func TestNew_ModelNotServed(t *testing.T) {
	f := &fakeServer{models: []string{"es-forward"}}
	_, err := newProvider(t, f, Forward, Backward)
	assert.ErrorContains(t, err, `"es-backward"`)
}

func TestNew_InvalidDirections(t *testing.T) {
	f := &fakeServer{models: []string{"es-forward", "es-backward"}}

	_, err := newProvider(t, f)
	assert.ErrorContains(t, err, "no directions")

	_, err = newProvider(t, f, "sideways")
	assert.ErrorContains(t, err, "unknown direction")

	_, err = newProvider(t, f, Forward, Forward)
	assert.ErrorContains(t, err, "listed twice")
}

func TestNew_APIKeyFromEnv(t *testing.T) {
	f := &fakeServer{models: []string{"es-forward"}}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()
	cfg := Config{
		BaseURL:    srv.URL,
		APIKeyEnv:  "VOCABEMB_TEST_KEY",
		Directions: []string{Forward},
		Models:     map[string]string{Forward: "es-forward"},
		Client:     srv.Client(),
	}

	t.Setenv("VOCABEMB_TEST_KEY", "")
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "missing API key")

	t.Setenv("VOCABEMB_TEST_KEY", "secret")
	_, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", f.authHeader.Load())
}

package domain

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabLoadError_IsAndUnwrap(t *testing.T) {
	err := fmt.Errorf("run: %w", &VocabLoadError{Path: "words.pickle", Err: os.ErrNotExist})

	assert.ErrorIs(t, err, ErrVocabLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrProviderInit)
	assert.Contains(t, err.Error(), "words.pickle")
}

func TestProviderInitError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ProviderInitError{Provider: "contextual", Err: cause}

	assert.ErrorIs(t, err, ErrProviderInit)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "init contextual provider: connection refused", err.Error())
}

func TestProviderDegraded_Message(t *testing.T) {
	err := &ProviderDegraded{Primary: "es_core_news_md", Secondary: "es_core_news_sm", Err: os.ErrNotExist}

	assert.Contains(t, err.Error(), "es_core_news_md")
	assert.Contains(t, err.Error(), "using es_core_news_sm")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatrix_RowView(t *testing.T) {
	m := NewMatrix(3, 2)
	m.SetRow(1, []float32{1, 2})
	m.Row(2)[0] = 5

	assert.Equal(t, []float32{0, 0, 1, 2, 5, 0}, m.Data)
	assert.Equal(t, []float32{1, 2}, m.Row(1))
}

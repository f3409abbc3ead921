package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabemb/internal/domain"
	"vocabemb/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

func TestStorage_SaveCopies(t *testing.T) {
	s := NewStorage()
	assert.Nil(t, s.Matrix())

	m := domain.NewMatrix(1, 2)
	m.SetRow(0, []float32{1, 2})
	require.NoError(t, s.Save(m))
	m.Data[0] = 9

	assert.Equal(t, []float32{1, 2}, s.Matrix().Data)
	assert.Equal(t, 1, s.Saves())
}

func TestStorage_RejectsBadMatrix(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Save(nil))
	assert.Error(t, s.Save(&domain.Matrix{Rows: 1, Cols: 2}))
	assert.Zero(t, s.Saves())
}

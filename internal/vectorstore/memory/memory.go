package memory

import (
	"errors"
	"sync"

	"vocabemb/internal/domain"
)

// Storage keeps the last saved matrix in memory. Used for dry runs.
type Storage struct {
	mu     sync.RWMutex
	matrix *domain.Matrix
	saves  int
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Save(m *domain.Matrix) error {
	if m == nil {
		return errors.New("nil matrix")
	}
	if len(m.Data) != m.Rows*m.Cols {
		return errors.New("matrix data does not match its shape")
	}
	data := make([]float32, len(m.Data))
	copy(data, m.Data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrix = &domain.Matrix{Rows: m.Rows, Cols: m.Cols, Data: data}
	s.saves++
	return nil
}

// Matrix returns the last saved matrix, or nil if nothing was saved.
func (s *Storage) Matrix() *domain.Matrix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix
}

// Saves returns how many times Save succeeded.
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

package vectorstore

import "vocabemb/internal/domain"

// Storage persists a finished embedding matrix.
type Storage interface {
	Save(m *domain.Matrix) error
}

package domain

import "context"

// Reserved markers that have no natural embedding.
const (
	UnknownToken = "$UNK$"
	NumberToken  = "$NUM$"
)

// Provider maps a single token to a fixed-dimension vector.
// Embed returns ErrTokenAbsent (possibly wrapped) when the token has no embedding.
// Repeated calls for the same token must return the same vector.
type Provider interface {
	Name() string
	Embed(ctx context.Context, token string) ([]float32, error)
}

// ProgressReporter receives coarse progress updates during a build.
type ProgressReporter interface {
	Report(done, total int)
}

// Matrix is a dense row-major float32 matrix. Row i belongs to vocabulary token i.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix allocates an all-zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// Row returns a view of row i. Writes through the slice modify the matrix.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// SetRow copies v into row i.
func (m *Matrix) SetRow(i int, v []float32) {
	copy(m.Row(i), v)
}

// BuildStats describes a finished build.
type BuildStats struct {
	Provider   string
	Tokens     int
	Dimension  int
	ProbeToken string
	Embedded   int
	Absent     int
	// Reserved lists the reserved markers that were present and filled with the fallback vector.
	Reserved []string
}

package service

import (
	"fmt"

	"vocabemb/internal/domain"
)

// FallbackFunc computes the vector written to reserved rows from the given eligible rows.
type FallbackFunc func(m *domain.Matrix, rows []int) []float32

// ReservedPolicy decides which tokens are reserved and how their rows are filled.
type ReservedPolicy struct {
	tokens   []string
	set      map[string]struct{}
	fallback FallbackFunc
}

// NewReservedPolicy creates a policy for tokens. A nil fallback means MeanFallback.
func NewReservedPolicy(tokens []string, fallback FallbackFunc) *ReservedPolicy {
	if fallback == nil {
		fallback = MeanFallback
	}
	p := &ReservedPolicy{set: make(map[string]struct{}, len(tokens)), fallback: fallback}
	for _, t := range tokens {
		if _, dup := p.set[t]; dup {
			continue
		}
		p.set[t] = struct{}{}
		p.tokens = append(p.tokens, t)
	}
	return p
}

// DefaultReservedPolicy reserves $UNK$ and $NUM$ and fills them with the mean vector.
func DefaultReservedPolicy() *ReservedPolicy {
	return NewReservedPolicy([]string{domain.UnknownToken, domain.NumberToken}, MeanFallback)
}

// IsReserved reports whether token is a reserved marker.
func (p *ReservedPolicy) IsReserved(token string) bool {
	_, ok := p.set[token]
	return ok
}

// Tokens returns the reserved markers in declaration order.
func (p *ReservedPolicy) Tokens() []string {
	out := make([]string, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Fallback computes the reserved-row vector over rows.
func (p *ReservedPolicy) Fallback(m *domain.Matrix, rows []int) []float32 {
	return p.fallback(m, rows)
}

// MeanFallback is the column-wise mean of rows, accumulated in float64 in row order.
// It is the zero vector when rows is empty.
func MeanFallback(m *domain.Matrix, rows []int) []float32 {
	out := make([]float32, m.Cols)
	if len(rows) == 0 {
		return out
	}
	sum := make([]float64, m.Cols)
	for _, r := range rows {
		for j, x := range m.Row(r) {
			sum[j] += float64(x)
		}
	}
	n := float64(len(rows))
	for j := range out {
		out[j] = float32(sum[j] / n)
	}
	return out
}

// ZeroFallback always returns the zero vector.
func ZeroFallback(m *domain.Matrix, _ []int) []float32 {
	return make([]float32, m.Cols)
}

// FallbackByName resolves the fallback names accepted in config.
func FallbackByName(name string) (FallbackFunc, error) {
	switch name {
	case "mean", "":
		return MeanFallback, nil
	case "zero":
		return ZeroFallback, nil
	default:
		return nil, fmt.Errorf("unknown fallback %q", name)
	}
}

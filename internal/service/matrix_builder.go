package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"vocabemb/internal/domain"
	"vocabemb/internal/vectorstore"
	"vocabemb/internal/vocab"
)

// Options tunes a build.
type Options struct {
	// ProgressEvery is the reporting cadence in tokens. Zero means 1000.
	ProgressEvery int
	// Workers bounds concurrent provider lookups. Zero or one means strictly sequential.
	Workers int
}

// MatrixBuilder turns a vocabulary into an index-aligned embedding matrix.
type MatrixBuilder struct {
	provider domain.Provider
	policy   *ReservedPolicy
	reporter domain.ProgressReporter
	opts     Options
}

// NewMatrixBuilder wires a builder. A nil policy means DefaultReservedPolicy; a nil reporter
// disables progress reporting.
func NewMatrixBuilder(provider domain.Provider, policy *ReservedPolicy, reporter domain.ProgressReporter, opts Options) *MatrixBuilder {
	if policy == nil {
		policy = DefaultReservedPolicy()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 1000
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &MatrixBuilder{provider: provider, policy: policy, reporter: reporter, opts: opts}
}

// Export builds the matrix and hands it to store. Nothing is saved if the build fails.
func (b *MatrixBuilder) Export(ctx context.Context, v *vocab.Vocabulary, store vectorstore.Storage) (*domain.BuildStats, error) {
	m, stats, err := b.Build(ctx, v)
	if err != nil {
		return nil, err
	}
	if err := store.Save(m); err != nil {
		return nil, fmt.Errorf("save matrix: %w", err)
	}
	return stats, nil
}

// Build queries the provider for every non-reserved token in vocabulary order and fills the
// reserved rows with the policy's fallback vector.
func (b *MatrixBuilder) Build(ctx context.Context, v *vocab.Vocabulary) (*domain.Matrix, *domain.BuildStats, error) {
	n := v.Len()

	// Probe the dimension with the first non-reserved token.
	probeIdx := -1
	for i := 0; i < n; i++ {
		if !b.policy.IsReserved(v.Token(i)) {
			probeIdx = i
			break
		}
	}
	if probeIdx < 0 {
		return nil, nil, domain.ErrEmptyVocabulary
	}
	probeTok := v.Token(probeIdx)
	probe, err := b.provider.Embed(ctx, probeTok)
	if errors.Is(err, domain.ErrTokenAbsent) || (err == nil && len(probe) == 0) {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrProbeAbsent, probeTok)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("embed probe token %q: %w", probeTok, err)
	}
	dim := len(probe)

	m := domain.NewMatrix(n, dim)
	m.SetRow(probeIdx, probe)

	var absent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i := 0; i < n; i++ {
		if i%b.opts.ProgressEvery == 0 {
			b.report(i, n)
		}
		if gctx.Err() != nil {
			break
		}
		tok := v.Token(i)
		if i == probeIdx || b.policy.IsReserved(tok) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := b.provider.Embed(gctx, tok)
			if errors.Is(err, domain.ErrTokenAbsent) || (err == nil && len(vec) == 0) {
				absent.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("embed token %q: %w", tok, err)
			}
			if len(vec) != dim {
				return &domain.DimensionMismatchError{Token: tok, Want: dim, Got: len(vec)}
			}
			m.SetRow(i, vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	b.report(n, n)

	// Every non-reserved row counts toward the fallback, including zero rows left by absent tokens.
	eligible := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !b.policy.IsReserved(v.Token(i)) {
			eligible = append(eligible, i)
		}
	}
	fallback := b.policy.Fallback(m, eligible)

	stats := &domain.BuildStats{
		Provider:   b.provider.Name(),
		Tokens:     n,
		Dimension:  dim,
		ProbeToken: probeTok,
		Absent:     int(absent.Load()),
	}
	stats.Embedded = len(eligible) - stats.Absent
	for _, tok := range b.policy.Tokens() {
		if i, ok := v.IndexOf(tok); ok {
			m.SetRow(i, fallback)
			stats.Reserved = append(stats.Reserved, tok)
		}
	}
	return m, stats, nil
}

func (b *MatrixBuilder) report(done, total int) {
	if b.reporter != nil {
		b.reporter.Report(done, total)
	}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenAbsent means a provider has no vector for a token. Non-fatal for regular tokens.
	ErrTokenAbsent = errors.New("no embedding for token")
	// ErrEmptyVocabulary means the vocabulary has no non-reserved token to probe the dimension with.
	ErrEmptyVocabulary = errors.New("vocabulary has no non-reserved token")
	// ErrProbeAbsent means the probe token itself produced no embedding.
	ErrProbeAbsent = errors.New("probe token has no embedding")
)

// ErrVocabLoad matches any *VocabLoadError with errors.Is.
var ErrVocabLoad = &VocabLoadError{}

// VocabLoadError reports a vocabulary source that is missing, empty or undeserializable.
type VocabLoadError struct {
	Path string
	Err  error
}

func (e *VocabLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load vocabulary: %v", e.Err)
	}
	return fmt.Sprintf("load vocabulary %s: %v", e.Path, e.Err)
}

func (e *VocabLoadError) Unwrap() error { return e.Err }

func (e *VocabLoadError) Is(target error) bool {
	_, ok := target.(*VocabLoadError)
	return ok
}

// ErrProviderInit matches any *ProviderInitError with errors.Is.
var ErrProviderInit = &ProviderInitError{}

// ProviderInitError reports an embedding backend that could not be initialized.
type ProviderInitError struct {
	Provider string
	Err      error
}

func (e *ProviderInitError) Error() string {
	return fmt.Sprintf("init %s provider: %v", e.Provider, e.Err)
}

func (e *ProviderInitError) Unwrap() error { return e.Err }

func (e *ProviderInitError) Is(target error) bool {
	_, ok := target.(*ProviderInitError)
	return ok
}

// ProviderDegraded is a warning, not a failure: the primary table was unavailable
// and a lower-quality secondary table is in use.
type ProviderDegraded struct {
	Primary   string
	Secondary string
	Err       error
}

func (e *ProviderDegraded) Error() string {
	return fmt.Sprintf("%s not available (%v), using %s; vectors may be of lower quality", e.Primary, e.Err, e.Secondary)
}

func (e *ProviderDegraded) Unwrap() error { return e.Err }

// DimensionMismatchError reports a provider vector whose length differs from the probed dimension.
type DimensionMismatchError struct {
	Token string
	Want  int
	Got   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding for %q has dimension %d, expected %d", e.Token, e.Got, e.Want)
}

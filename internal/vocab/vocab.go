package vocab

import (
	"errors"
	"fmt"
)

// Vocabulary is an ordered, duplicate-free token list. Token order is the row order
// of the embedding matrix built from it.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// New builds a vocabulary from tokens in the given order.
func New(tokens []string) (*Vocabulary, error) {
	if len(tokens) == 0 {
		return nil, errors.New("vocabulary is empty")
	}
	index := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if j, ok := index[tok]; ok {
			return nil, fmt.Errorf("duplicate token %q at positions %d and %d", tok, j, i)
		}
		index[tok] = i
	}
	own := make([]string, len(tokens))
	copy(own, tokens)
	return &Vocabulary{tokens: own, index: index}, nil
}

// Len returns the number of tokens.
func (v *Vocabulary) Len() int { return len(v.tokens) }

// Token returns the token at position i.
func (v *Vocabulary) Token(i int) string { return v.tokens[i] }

// Tokens returns a copy of the tokens in order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// IndexOf returns the position of token, or false if it is not in the vocabulary.
func (v *Vocabulary) IndexOf(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

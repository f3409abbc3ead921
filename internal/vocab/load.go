package vocab

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
	"gopkg.in/yaml.v3"

	"vocabemb/internal/domain"
)

// Load reads a vocabulary from path. The format is chosen by extension:
// .pickle/.pkl (Python list, tuple, set or frozenset of str), .txt (one token per line),
// .json (array of strings) and .yaml/.yml (sequence of strings).
// Every failure is returned as a *domain.VocabLoadError.
func Load(path string) (*Vocabulary, error) {
	tokens, err := readTokens(path)
	if err != nil {
		return nil, &domain.VocabLoadError{Path: path, Err: err}
	}
	v, err := New(tokens)
	if err != nil {
		return nil, &domain.VocabLoadError{Path: path, Err: err}
	}
	return v, nil
}

func readTokens(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pickle", ".pkl":
		return readPickle(path)
	case ".txt":
		return readLines(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var tokens []string
		if err := json.Unmarshal(data, &tokens); err != nil {
			return nil, err
		}
		return tokens, nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var tokens []string
		if err := yaml.Unmarshal(data, &tokens); err != nil {
			return nil, err
		}
		return tokens, nil
	default:
		return nil, fmt.Errorf("unsupported vocabulary format %q", filepath.Ext(path))
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var tokens []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens = append(tokens, line)
	}
	return tokens, sc.Err()
}

func readPickle(path string) ([]string, error) {
	obj, err := pickle.Load(path)
	if err != nil {
		return nil, err
	}
	var items []interface{}
	sorted := false
	switch c := obj.(type) {
	case *types.List:
		items = *c
	case *types.Tuple:
		items = *c
	case []interface{}:
		items = c
	case *types.Set:
		for k := range *c {
			items = append(items, k)
		}
		sorted = true
	case *types.FrozenSet:
		for k := range *c {
			items = append(items, k)
		}
		sorted = true
	default:
		return nil, fmt.Errorf("pickle holds %T, want a list, tuple or set of str", obj)
	}
	tokens := make([]string, 0, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("item %d is %T, want str", i, it)
		}
		tokens = append(tokens, s)
	}
	// Python sets carry no stable order.
	if sorted {
		sort.Strings(tokens)
	}
	if len(tokens) == 0 {
		return nil, errors.New("pickle holds an empty collection")
	}
	return tokens, nil
}

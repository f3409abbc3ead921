package lexical

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// table is a static word -> vector lookup loaded from a word2vec/fastText text file.
type table struct {
	dim     int
	vectors map[string][]float32
}

func readTableFile(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	t, err := parseTable(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// parseTable reads "word v1 ... vD" lines. An optional first line "count dim" is
// accepted and checked against the rows that follow.
func parseTable(r io.Reader) (*table, error) {
	t := &table{vectors: make(map[string][]float32)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	declared := -1
	line, parsed := 0, 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			n, errN := strconv.Atoi(fields[0])
			d, errD := strconv.Atoi(fields[1])
			if errN == nil && errD == nil {
				declared, t.dim = n, d
				continue
			}
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector values", line)
		}
		word, values := fields[0], fields[1:]
		if t.dim == 0 {
			t.dim = len(values)
		}
		if len(values) != t.dim {
			return nil, fmt.Errorf("line %d: %d values, expected %d", line, len(values), t.dim)
		}
		vec := make([]float32, t.dim)
		for i, s := range values {
			f, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = float32(f)
		}
		parsed++
		// First occurrence wins, as in word2vec loaders.
		if _, ok := t.vectors[word]; !ok {
			t.vectors[word] = vec
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(t.vectors) == 0 {
		return nil, fmt.Errorf("table has no vectors")
	}
	if declared >= 0 && declared != parsed {
		return nil, fmt.Errorf("header declares %d vectors, found %d", declared, parsed)
	}
	return t, nil
}

package npz

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"vocabemb/internal/domain"
)

// Key is the array name the downstream model loader expects. Do not change it.
const Key = "embeddings"

// Storage writes the matrix to a compressed .npz archive, the same layout as
// numpy.savez_compressed(path, embeddings=matrix).
type Storage struct {
	path string
	key  string
}

func NewStorage(path string) *Storage {
	return &Storage{path: path, key: Key}
}

// Path returns the archive path.
func (s *Storage) Path() string { return s.path }

// Save writes to a temp file next to the target and renames it into place,
// so a failed save never leaves a partial archive behind.
func (s *Storage) Save(m *domain.Matrix) error {
	if m == nil {
		return errors.New("nil matrix")
	}
	if len(m.Data) != m.Rows*m.Cols {
		return errors.New("matrix data does not match its shape")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".vocabemb-*.npz.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := writeArchive(tmp, s.key, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename archive: %w", err)
	}
	return nil
}

func writeArchive(w io.Writer, key string, m *domain.Matrix) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: key + ".npy", Method: zip.Deflate})
	if err != nil {
		return err
	}
	if err := writeNPY(fw, m); err != nil {
		return err
	}
	return zw.Close()
}

// Load reads the array stored under key from an .npz archive.
func Load(path, key string) (*domain.Matrix, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)
	for _, f := range zr.File {
		if f.Name != key+".npy" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		m, err := readNPY(rc, f.UncompressedSize64)
		if err != nil {
			return nil, fmt.Errorf("%s in %s: %w", f.Name, path, err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%s: no array named %q", path, key)
}

// Keys lists the array names in an .npz archive.
func Keys(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var keys []string
	for _, f := range zr.File {
		name := f.Name
		if filepath.Ext(name) == ".npy" {
			name = name[:len(name)-len(".npy")]
		}
		keys = append(keys, name)
	}
	return keys, nil
}

package npz

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"vocabemb/internal/domain"
)

const (
	npyMagic = "\x93NUMPY"
	// Header plus preamble is padded to this many bytes, as numpy does.
	npyAlign = 64
)

// writeNPY encodes m as a version 1.0 .npy array of little-endian float32 in C order.
func writeNPY(w io.Writer, m *domain.Matrix) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", m.Rows, m.Cols)
	preamble := len(npyMagic) + 2 + 2
	pad := npyAlign - (preamble+len(header)+1)%npyAlign
	if pad == npyAlign {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"
	if len(header) > math.MaxUint16 {
		return errors.New("npy header too long")
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(npyMagic)
	bw.Write([]byte{1, 0})
	var hlen [2]byte
	binary.LittleEndian.PutUint16(hlen[:], uint16(len(header)))
	bw.Write(hlen[:])
	bw.WriteString(header)
	var buf [4]byte
	for _, x := range m.Data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(x))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var (
	descrRe   = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// readNPY decodes a 2-D little-endian float32 C-order .npy array. size is the
// total length of the encoded array; the shape must fit in it.
func readNPY(r io.Reader, size uint64) (*domain.Matrix, error) {
	br := bufio.NewReader(r)
	pre := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, pre); err != nil {
		return nil, fmt.Errorf("read npy preamble: %w", err)
	}
	if string(pre[:len(npyMagic)]) != npyMagic {
		return nil, errors.New("not an npy array")
	}
	var hlen int
	consumed := uint64(len(pre))
	switch major := pre[len(npyMagic)]; major {
	case 1:
		consumed += 2
		var b [2]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, err
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		consumed += 4
		var b [4]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return nil, err
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}
	consumed += uint64(hlen)
	if consumed > size {
		return nil, fmt.Errorf("npy header length %d exceeds entry size %d", hlen, size)
	}
	hdr := make([]byte, hlen)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}
	header := string(hdr)

	descr := descrRe.FindStringSubmatch(header)
	if descr == nil || descr[1] != "<f4" {
		return nil, fmt.Errorf("unsupported dtype in header %q", strings.TrimSpace(header))
	}
	if f := fortranRe.FindStringSubmatch(header); f == nil || f[1] != "False" {
		return nil, errors.New("only C-order arrays are supported")
	}
	sm := shapeRe.FindStringSubmatch(header)
	if sm == nil {
		return nil, errors.New("npy header has no shape")
	}
	var dims []int
	for _, part := range strings.Split(sm[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad shape %q: %w", sm[1], err)
		}
		if d < 0 {
			return nil, fmt.Errorf("negative dimension in shape (%s)", sm[1])
		}
		dims = append(dims, d)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("expected a 2-D array, got shape (%s)", sm[1])
	}

	rows, cols := dims[0], dims[1]
	if cols > 0 && uint64(rows) > (size-consumed)/4/uint64(cols) {
		return nil, fmt.Errorf("shape (%s) needs more data than the %d-byte entry holds", sm[1], size)
	}

	m := domain.NewMatrix(rows, cols)
	var buf [4]byte
	for i := range m.Data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("read npy data: %w", err)
		}
		m.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	}
	return m, nil
}

// Package matrixio persists completed similarity matrices as binary
// snapshots so that downstream analysis can reload a family's full matrix
// without recomputing any correlations.
//
// The file layout is fixed-endian and versioned:
//
//	magic   [4]byte  "FVMX"
//	version uint16
//	dim     uint32
//	ids     [dim]int64    member event IDs in matrix row order
//	cells   [dim*dim]float64  row-major coefficients
//
// All integers and floats are little-endian.
package matrixio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/pkg/errors"
)

var magic = [4]byte{'F', 'V', 'M', 'X'}

const version uint16 = 1

// maxDim guards Load against corrupt headers allocating absurd buffers.
const maxDim = 1 << 20

// Save writes the matrix and its member ordering to path, creating parent
// directories as needed.  The write goes through a temp file and rename so a
// crash never leaves a torn snapshot behind.
func Save(path string, members []catalog.EventID, m *similarity.Matrix) error {
	if len(members) != m.Dim() {
		return errors.New(errors.ErrCodeMatrixCorrupt,
			fmt.Sprintf("member count %d does not match matrix dim %d", len(members), m.Dim()))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create matrix directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".matrix-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create temp matrix file")
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, members, m); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "close temp matrix file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "publish matrix file")
	}
	return nil
}

func write(w io.Writer, members []catalog.EventID, m *similarity.Matrix) error {
	n := m.Dim()
	if err := binary.Write(w, binary.LittleEndian, magic); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write matrix header")
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write matrix header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write matrix header")
	}
	if err := binary.Write(w, binary.LittleEndian, members); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write matrix members")
	}

	cells := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		cells = append(cells, m.Row(i)...)
	}
	if err := binary.Write(w, binary.LittleEndian, cells); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write matrix cells")
	}
	return nil
}

// Load reads a snapshot back.  A missing file maps to ErrCodeMatrixNotFound;
// any structural mismatch maps to ErrCodeMatrixCorrupt.
func Load(path string) ([]catalog.EventID, *similarity.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeMatrixNotFound,
				fmt.Sprintf("matrix snapshot %s not found", path))
		}
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "open matrix file")
	}
	defer f.Close()

	var (
		gotMagic   [4]byte
		gotVersion uint16
		dim        uint32
	)
	if err := binary.Read(f, binary.LittleEndian, &gotMagic); err != nil {
		return nil, nil, corrupt(path, "short header")
	}
	if gotMagic != magic {
		return nil, nil, corrupt(path, "bad magic")
	}
	if err := binary.Read(f, binary.LittleEndian, &gotVersion); err != nil {
		return nil, nil, corrupt(path, "short header")
	}
	if gotVersion != version {
		return nil, nil, corrupt(path, fmt.Sprintf("unsupported version %d", gotVersion))
	}
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, nil, corrupt(path, "short header")
	}
	if dim > maxDim {
		return nil, nil, corrupt(path, fmt.Sprintf("implausible dim %d", dim))
	}

	n := int(dim)
	members := make([]catalog.EventID, n)
	if err := binary.Read(f, binary.LittleEndian, members); err != nil {
		return nil, nil, corrupt(path, "short member table")
	}

	cells := make([]float64, n*n)
	if err := binary.Read(f, binary.LittleEndian, cells); err != nil {
		return nil, nil, corrupt(path, "short cell block")
	}

	m := similarity.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, cells[i*n+j])
		}
	}
	return members, m, nil
}

// FamilyPath returns the canonical snapshot path for a family under dir.
func FamilyPath(dir string, id catalog.FamilyID) string {
	return filepath.Join(dir, fmt.Sprintf("family-%d.fvmx", id))
}

func corrupt(path, detail string) error {
	return errors.New(errors.ErrCodeMatrixCorrupt,
		fmt.Sprintf("matrix snapshot %s is corrupt: %s", path, detail))
}

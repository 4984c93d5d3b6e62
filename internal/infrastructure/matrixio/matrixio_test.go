package matrixio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/internal/infrastructure/matrixio"
	"github.com/seistrack/famview/pkg/errors"
)

func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(3)
	m.SetSym(0, 1, 0.91)
	m.SetSym(0, 2, 0.72)
	m.SetSym(1, 2, 0.83)
	members := []catalog.EventID{101, 205, 309}

	path := matrixio.FamilyPath(t.TempDir(), 7)
	require.NoError(t, matrixio.Save(path, members, m))

	gotMembers, got, err := matrixio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, members, gotMembers)
	require.Equal(t, 3, got.Dim())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, m.At(i, j), got.At(i, j), "cell (%d,%d)", i, j)
		}
	}
}

func TestSave_CreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deep", "nested", "family-1.fvmx")
	require.NoError(t, matrixio.Save(path, []catalog.EventID{1}, similarity.NewMatrix(1)))

	_, _, err := matrixio.Load(path)
	assert.NoError(t, err)
}

func TestSave_MemberDimMismatch(t *testing.T) {
	t.Parallel()

	err := matrixio.Save(filepath.Join(t.TempDir(), "x.fvmx"),
		[]catalog.EventID{1, 2}, similarity.NewMatrix(3))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMatrixCorrupt))
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, _, err := matrixio.Load(filepath.Join(t.TempDir(), "absent.fvmx"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMatrixNotFound))
}

func TestLoad_BadMagic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "junk.fvmx")
	require.NoError(t, os.WriteFile(path, []byte("not a matrix at all"), 0o644))

	_, _, err := matrixio.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMatrixCorrupt))
}

func TestLoad_Truncated(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(2)
	m.SetSym(0, 1, 0.5)
	path := filepath.Join(t.TempDir(), "trunc.fvmx")
	require.NoError(t, matrixio.Save(path, []catalog.EventID{1, 2}, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-9], 0o644))

	_, _, err = matrixio.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMatrixCorrupt))
}

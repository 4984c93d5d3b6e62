package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/domain/similarity"
)

func TestNewMatrix_UnitDiagonal(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(4)
	require.Equal(t, 4, m.Dim())
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				assert.Equal(t, 1.0, m.At(i, j))
			} else {
				assert.Equal(t, 0.0, m.At(i, j))
			}
		}
	}
}

func TestMatrix_SetSymKeepsSymmetry(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(3)
	m.SetSym(0, 2, 0.75)

	assert.Equal(t, 0.75, m.At(0, 2))
	assert.Equal(t, 0.75, m.At(2, 0))
	assert.True(t, m.IsSymmetric())
}

func TestMatrix_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(2)
	c := m.Clone()
	c.SetSym(0, 1, 0.9)

	assert.Equal(t, 0.0, m.At(0, 1))
	assert.Equal(t, 0.9, c.At(0, 1))
}

func TestMatrix_Permute(t *testing.T) {
	t.Parallel()

	// 3x3 with distinct off-diagonal values.
	m := similarity.NewMatrix(3)
	m.SetSym(0, 1, 0.1)
	m.SetSym(0, 2, 0.2)
	m.SetSym(1, 2, 0.3)

	// Reverse order: position k takes source row perm[k].
	p := m.Permute([]int{2, 1, 0})

	assert.Equal(t, 1.0, p.At(0, 0))
	assert.Equal(t, 0.3, p.At(0, 1)) // was (2,1)
	assert.Equal(t, 0.2, p.At(0, 2)) // was (2,0)
	assert.Equal(t, 0.1, p.At(1, 2)) // was (1,0)
	assert.True(t, p.IsSymmetric())
}

func TestMatrix_Distance(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(2)
	m.SetSym(0, 1, 0.8)

	d := m.Distance()
	assert.Equal(t, 0.0, d.At(0, 0))
	assert.Equal(t, 0.0, d.At(1, 1))
	assert.InDelta(t, 0.2, d.At(0, 1), 1e-12)
	assert.InDelta(t, 0.2, d.At(1, 0), 1e-12)
}

func TestMatrix_RowsCopies(t *testing.T) {
	t.Parallel()

	m := similarity.NewMatrix(2)
	rows := m.Rows()
	rows[0][1] = 42

	assert.Equal(t, 0.0, m.At(0, 1), "Rows must return copies")
}

package similarity

import "fmt"

// Matrix is a dense square matrix of similarity coefficients stored
// row-major.  The zero value is unusable; construct through NewMatrix.
type Matrix struct {
	n     int
	cells []float64
}

// NewMatrix returns an n×n zero matrix with a unit diagonal, the identity
// seed every similarity view starts from (an event is always fully similar
// to itself).
func NewMatrix(n int) *Matrix {
	m := &Matrix{n: n, cells: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.cells[i*n+i] = 1
	}
	return m
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int { return m.n }

// At returns the cell (i, j).
func (m *Matrix) At(i, j int) float64 { return m.cells[i*m.n+j] }

// Set writes the cell (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.cells[i*m.n+j] = v }

// SetSym writes v into both (i, j) and (j, i).
func (m *Matrix) SetSym(i, j int, v float64) {
	m.cells[i*m.n+j] = v
	m.cells[j*m.n+i] = v
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{n: m.n, cells: make([]float64, len(m.cells))}
	copy(c.cells, m.cells)
	return c
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.n)
	copy(out, m.cells[i*m.n:(i+1)*m.n])
	return out
}

// Rows returns a copy of the full matrix as a slice of rows, the shape the
// interface layer serialises.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.n)
	for i := 0; i < m.n; i++ {
		out[i] = m.Row(i)
	}
	return out
}

// Permute returns a new matrix with rows and columns rearranged so that cell
// (i, j) of the result equals cell (perm[i], perm[j]) of the receiver.  The
// permutation must already be validated (see ApplyOrdering).
func (m *Matrix) Permute(perm []int) *Matrix {
	out := &Matrix{n: m.n, cells: make([]float64, len(m.cells))}
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.cells[i*m.n+j] = m.cells[perm[i]*m.n+perm[j]]
		}
	}
	return out
}

// Distance returns 1 − value for every cell, the dissimilarity form consumed
// by density-reachability reordering.
func (m *Matrix) Distance() *Matrix {
	out := &Matrix{n: m.n, cells: make([]float64, len(m.cells))}
	for i, v := range m.cells {
		out.cells[i] = 1 - v
	}
	return out
}

// IsSymmetric reports whether the matrix equals its transpose.
func (m *Matrix) IsSymmetric() bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.cells[i*m.n+j] != m.cells[j*m.n+i] {
				return false
			}
		}
	}
	return true
}

// String renders a compact description for logs.
func (m *Matrix) String() string {
	return fmt.Sprintf("similarity.Matrix(%dx%d)", m.n, m.n)
}

package numeric

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// SparseAccumulator accumulates elemental contributions into a sparse N x N
// matrix keyed by (row, col), exactly the role the teacher's utils.DOK plays
// over github.com/james-bowman/sparse's sparse.DOK: a write-friendly
// dictionary-of-keys matrix that gets converted to CSR once assembly is
// done. LinearAssembler.Assemble builds a fresh accumulator on every call;
// since the mesh never changes, each call yields the same sparsity pattern.
type SparseAccumulator struct {
	dok *sparse.DOK
	n   int
}

// NewSparseAccumulator allocates an accumulator for an N x N system.
func NewSparseAccumulator(n int) *SparseAccumulator {
	return &SparseAccumulator{dok: sparse.NewDOK(n, n), n: n}
}

// Reset clears all entries by replacing the underlying DOK with an empty
// one of the same size, keeping the accumulator itself ready for reuse.
func (a *SparseAccumulator) Reset() {
	a.dok = sparse.NewDOK(a.n, a.n)
}

// Add accumulates val into entry (i, j), the scatter-add operation assembly
// performs once per local stiffness contribution.
func (a *SparseAccumulator) Add(i, j int, val float64) {
	if val == 0 {
		return
	}
	a.dok.Set(i, j, a.dok.At(i, j)+val)
}

// Set overwrites entry (i, j), used by Dirichlet row/column projection.
func (a *SparseAccumulator) Set(i, j int, val float64) {
	a.dok.Set(i, j, val)
}

// At reads entry (i, j).
func (a *SparseAccumulator) At(i, j int) float64 {
	return a.dok.At(i, j)
}

// ToCSR finalizes the accumulator into a compressed-sparse-row matrix,
// suitable for repeated matvec during the iterative backend or for a single
// dense conversion ahead of direct factorization.
func (a *SparseAccumulator) ToCSR() *sparse.CSR {
	return a.dok.ToCSR()
}

// N returns the system size.
func (a *SparseAccumulator) N() int { return a.n }

// MulVec computes y = A * x for a CSR matrix, used by the CG iterative
// backend's matvec step.
func MulVec(a *sparse.CSR, x *mat.VecDense) *mat.VecDense {
	n, _ := a.Dims()
	y := mat.NewVecDense(n, nil)
	y.MulVec(a, x)
	return y
}

// DenseFromCSR materializes a CSR matrix as a dense matrix. Used by the
// sparse-direct backend: the corpus has no sparse-native Cholesky
// factorization, so sparse-direct assembles through the same james-bowman
// sparse accumulator as the iterative backend (preserving the fixed
// sparsity pattern and scatter-add assembly path) and then factorizes the
// materialized dense form, documented in DESIGN.md.
func DenseFromCSR(a *sparse.CSR) *mat.Dense {
	r, c := a.Dims()
	d := mat.NewDense(r, c, nil)
	d.CloneFrom(a)
	return d
}

// Diagonal extracts the diagonal of a CSR matrix as a vector, used to build
// the Jacobi preconditioner for the iterative backend.
func Diagonal(a *sparse.CSR) []float64 {
	n, _ := a.Dims()
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = a.At(i, i)
	}
	return d
}

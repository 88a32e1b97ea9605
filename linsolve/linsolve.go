// Package linsolve implements LinearSolver: the three pluggable backends
// selected at initialise_solver and the automatic downgrade-on-
// non-convergence policy for the iterative backend.
package linsolve

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/types"
)

const component = "LinearSolver"

// Backend names the three selectable solver strategies.
type Backend uint8

const (
	Dense Backend = iota
	SparseDirect
	Iterative
)

func (b Backend) String() string {
	switch b {
	case Dense:
		return "dense"
	case SparseDirect:
		return "sparse_direct"
	case Iterative:
		return "iterative"
	default:
		return "unknown"
	}
}

// LinearSolver solves K p = b using the backend chosen at construction,
// silently downgrading the iterative backend to sparse-direct once on
// non-convergence (§7 Numeric error kind).
type LinearSolver struct {
	Backend Backend
	Tol     float64
	MaxIter int
}

// NewLinearSolver builds a solver for the given backend with the §4.6
// defaults (tol 1e-10; MaxIter left at zero, which Solve sizes as 2*N).
func NewLinearSolver(backend Backend) *LinearSolver {
	return &LinearSolver{Backend: backend, Tol: 1e-10}
}

// Solve returns p such that K p = b.
func (s *LinearSolver) Solve(k *sparse.CSR, b *mat.VecDense) (*mat.VecDense, error) {
	n, _ := k.Dims()
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 2 * n
	}

	switch s.Backend {
	case Dense:
		return solveDense(numeric.DenseFromCSR(k), b)
	case SparseDirect:
		return solveDense(numeric.DenseFromCSR(k), b)
	case Iterative:
		p, iters, err := solveCG(k, b, s.Tol, maxIter)
		if err == nil {
			return p, nil
		}
		// Automatic downgrade to direct sparse per §7's Numeric policy.
		pDirect, errDirect := solveDense(numeric.DenseFromCSR(k), b)
		if errDirect != nil {
			return nil, types.Errorf(types.KindNumeric, component, "Solve",
				"iterative backend failed to converge after %d iterations (%v), and sparse-direct downgrade also failed: %v", iters, err, errDirect)
		}
		return pDirect, nil
	default:
		return nil, types.Errorf(types.KindConfiguration, component, "Solve", "unknown backend %v", s.Backend)
	}
}

func solveDense(k *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	n, _ := k.Dims()
	sym := mat.NewSymDense(n, append([]float64(nil), k.RawMatrix().Data...))

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, types.Errorf(types.KindNumeric, component, "solveDense",
			"stiffness matrix is not symmetric positive definite, Cholesky factorization failed")
	}
	p := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(p, b); err != nil {
		return nil, types.Errorf(types.KindNumeric, component, "solveDense", "Cholesky solve failed: %v", err)
	}
	return p, nil
}

// solveCG runs Jacobi-preconditioned conjugate gradient, returning the
// iteration count reached (for diagnostics on non-convergence).
func solveCG(k *sparse.CSR, b *mat.VecDense, tol float64, maxIter int) (*mat.VecDense, int, error) {
	n, _ := k.Dims()
	diag := numeric.Diagonal(k)
	precond := make([]float64, n)
	for i, d := range diag {
		if d == 0 {
			precond[i] = 1
			continue
		}
		precond[i] = 1 / d
	}

	x := mat.NewVecDense(n, nil)
	r := mat.NewVecDense(n, nil)
	r.CopyVec(b)
	// r = b - K x, with x = 0 initially, so r = b.

	bNorm := mat.Norm(b, 2)
	if bNorm == 0 {
		return x, 0, nil
	}

	z := applyPrecond(precond, r)
	p := mat.NewVecDense(n, nil)
	p.CopyVec(z)

	rz := mat.Dot(r, z)

	for iter := 0; iter < maxIter; iter++ {
		resNorm := mat.Norm(r, 2) / bNorm
		if resNorm <= tol {
			return x, iter, nil
		}

		kp := numeric.MulVec(k, p)
		pkp := mat.Dot(p, kp)
		if pkp == 0 {
			return nil, iter, types.Errorf(types.KindNumeric, component, "solveCG",
				"breakdown: p^T K p == 0 at iteration %d", iter)
		}
		alpha := rz / pkp

		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, kp)

		newZ := applyPrecond(precond, r)
		newRz := mat.Dot(r, newZ)
		beta := newRz / rz

		newP := mat.NewVecDense(n, nil)
		newP.AddScaledVec(newZ, beta, p)

		p, z, rz = newP, newZ, newRz
	}

	resNorm := mat.Norm(r, 2) / bNorm
	if resNorm <= tol {
		return x, maxIter, nil
	}
	return nil, maxIter, types.Errorf(types.KindNumeric, component, "solveCG",
		"CG did not converge after %d iterations, relative residual %g > tol %g", maxIter, resNorm, tol)
}

func applyPrecond(precond []float64, r *mat.VecDense) *mat.VecDense {
	n := r.Len()
	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z.SetVec(i, precond[i]*r.AtVec(i))
	}
	return z
}

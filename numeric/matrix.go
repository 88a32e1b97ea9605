// Package numeric wraps gonum's dense and sparse matrix types with the
// small set of helpers the FE/CV assembly and solve pipeline needs: per-
// element gradient/rotation algebra, vector reductions, and a fixed-pattern
// sparse accumulator. It generalizes the teacher's utils/matrix.go,
// utils/vector.go and utils/sparse.go helpers (gonum mat + james-bowman
// sparse) to this engine's 3x3 tensor and N-DOF vector shapes.
package numeric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Vec3 is a local 3-vector, used for node positions, normals, tangents and
// per-element gradients. Kept as a fixed-size array (not mat.VecDense) since
// these never grow past 3 and appear by the tens of thousands in a mesh.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(a float64) Vec3 {
	return Vec3{v[0] * a, v[1] * a, v[2] * a}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) Norm() float64 {
	return mat.Norm(mat.NewVecDense(3, v[:]), 2)
}

// Normalize returns v scaled to unit length. Panics if v is (near) the zero
// vector, mirroring the teacher's fail-fast panic-on-degenerate-input style
// (utils/matrix.go's "unable to subset row from matrix" panics).
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < 1e-14 {
		panic(fmt.Errorf("numeric: cannot normalize a near-zero vector %v", v))
	}
	return v.Scale(1 / n)
}

// Mat3 is a dense 3x3 tensor, used for anisotropic permeability K_e both in
// its local (diagonal) and globally-rotated forms.
type Mat3 [3][3]float64

// Diag3 builds a diagonal 3x3 tensor from principal values.
func Diag3(k1, k2, k3 float64) Mat3 {
	return Mat3{
		{k1, 0, 0},
		{0, k2, 0},
		{0, 0, k3},
	}
}

// RotateByBasis computes R * K * R^T where R = [e1 e2 e3] (columns are the
// basis vectors), i.e. rotates a tensor expressed in the local principal
// frame into the global frame. This is the Rosette rotation from the
// component design: K_e = R diag(k1,k2,k3) R^T.
func RotateByBasis(k Mat3, e1, e2, e3 Vec3) Mat3 {
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		r.Set(i, 0, e1[i])
		r.Set(i, 1, e2[i])
		r.Set(i, 2, e3[i])
	}
	kd := mat.NewDense(3, 3, []float64{
		k[0][0], k[0][1], k[0][2],
		k[1][0], k[1][1], k[1][2],
		k[2][0], k[2][1], k[2][2],
	})
	var rk, out mat.Dense
	rk.Mul(r, kd)
	out.Mul(&rk, r.T())
	var o Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			o[i][j] = out.At(i, j)
		}
	}
	return o
}

// Apply computes k * v for a 3x3 tensor and a 3-vector.
func (k Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		k[0][0]*v[0] + k[0][1]*v[1] + k[0][2]*v[2],
		k[1][0]*v[0] + k[1][1]*v[1] + k[1][2]*v[2],
		k[2][0]*v[0] + k[2][1]*v[1] + k[2][2]*v[2],
	}
}

// SymmetryResidual returns ||K - K^T||_inf / ||K||_inf for a dense matrix,
// the exact quantity the testable-properties section bounds at 1e-12 to
// assert K is symmetric after assembly.
func SymmetryResidual(k *mat.Dense) float64 {
	r, c := k.Dims()
	if r != c {
		panic("numeric: SymmetryResidual requires a square matrix")
	}
	var maxDiff, maxNorm float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a, b := k.At(i, j), k.At(j, i)
			if d := abs(a - b); d > maxDiff {
				maxDiff = d
			}
			if a := abs(a); a > maxNorm {
				maxNorm = a
			}
		}
	}
	if maxNorm == 0 {
		return maxDiff
	}
	return maxDiff / maxNorm
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizzy-go/lizzy/cvmesh"
	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/materials"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/numeric"
)

func buildFixture(t *testing.T) (*geometry.MeshGeometry, *cvmesh.CVMesh) {
	data := meshio.RectMesh(3, 3, 1.0, 1.0)
	mg, err := geometry.NewMeshGeometry(data)
	require.NoError(t, err)
	ms := materials.NewMaterialStore(mg)
	_, err = ms.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	require.NoError(t, ms.AssignMaterial("iso", "panel", materials.IdentityRosette))
	cv, err := cvmesh.NewCVMesh(mg)
	require.NoError(t, err)
	return mg, cv
}

func TestAssembleSymmetric(t *testing.T) {
	mg, cv := buildFixture(t)
	la := NewLinearAssembler(mg, cv)

	fill := make([]float64, mg.NumNodes())
	dirichlet := map[int]float64{0: 1e5}
	K, _, err := la.Assemble(0.1, fill, 0.01, dirichlet)
	require.NoError(t, err)

	dense := numeric.DenseFromCSR(K)
	res := numeric.SymmetryResidual(dense)
	assert.LessOrEqual(t, res, 1e-12)
}

func TestAssembleDirichletRowIsIdentity(t *testing.T) {
	mg, cv := buildFixture(t)
	la := NewLinearAssembler(mg, cv)

	fill := make([]float64, mg.NumNodes())
	dirichlet := map[int]float64{0: 1e5}
	K, b, err := la.Assemble(0.1, fill, 0.01, dirichlet)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, K.At(0, 0), 1e-12)
	assert.InDelta(t, 1e5, b.AtVec(0), 1e-9)
	for _, j := range cv.Neighbors[0] {
		assert.InDelta(t, 0.0, K.At(0, j), 1e-12)
		assert.InDelta(t, 0.0, K.At(j, 0), 1e-12)
	}
}

func TestAssembleRejectsNonPositiveViscosity(t *testing.T) {
	mg, cv := buildFixture(t)
	la := NewLinearAssembler(mg, cv)
	fill := make([]float64, mg.NumNodes())
	_, _, err := la.Assemble(0, fill, 0.01, map[int]float64{0: 1e5})
	assert.Error(t, err)
}

func TestAssembleFrontNodesGetZeroDirichlet(t *testing.T) {
	mg, cv := buildFixture(t)
	la := NewLinearAssembler(mg, cv)

	fill := make([]float64, mg.NumNodes())
	frontNode := 1
	fill[frontNode] = 0.3 // strictly between 0 and 1-epsFill
	_, b, err := la.Assemble(0.1, fill, 0.01, map[int]float64{0: 1e5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, b.AtVec(frontNode), 1e-12)
}

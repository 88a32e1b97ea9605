package cvmesh

import (
	"testing"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/materials"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRect(t *testing.T, nx, ny int, lx, ly float64) *geometry.MeshGeometry {
	data := meshio.RectMesh(nx, ny, lx, ly)
	mg, err := geometry.NewMeshGeometry(data)
	require.NoError(t, err)
	ms := materials.NewMaterialStore(mg)
	_, err = ms.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	require.NoError(t, ms.AssignMaterial("iso", "panel", materials.IdentityRosette))
	return mg
}

func TestNewCVMeshRejectsUnassignedMaterial(t *testing.T) {
	data := meshio.RectMesh(2, 2, 1, 1)
	mg, err := geometry.NewMeshGeometry(data)
	require.NoError(t, err)
	_, err = NewCVMesh(mg)
	assert.Error(t, err)
}

func TestCVMeshVolumePartitionOfUnity(t *testing.T) {
	mg := buildRect(t, 3, 3, 2.0, 1.5)
	cv, err := NewCVMesh(mg)
	require.NoError(t, err)

	var totalElementVolume float64
	for i := range mg.Triangles {
		tri := &mg.Triangles[i]
		totalElementVolume += tri.Area * tri.Thickness * tri.Porosity
	}
	assert.InDelta(t, totalElementVolume, cv.TotalVolume(), 1e-9)
}

func TestCVMeshAdjacencyMatchesMeshEdges(t *testing.T) {
	mg := buildRect(t, 2, 2, 1, 1)
	cv, err := NewCVMesh(mg)
	require.NoError(t, err)

	edgeAdjacent := make(map[[2]int]bool)
	for _, tri := range mg.Triangles {
		for k := 0; k < 3; k++ {
			a, b := tri.NodeIDs[k], tri.NodeIDs[(k+1)%3]
			edgeAdjacent[[2]int{a, b}] = true
			edgeAdjacent[[2]int{b, a}] = true
		}
	}

	for i, neighbors := range cv.Neighbors {
		for _, j := range neighbors {
			assert.True(t, edgeAdjacent[[2]int{i, j}], "CV adjacency (%d,%d) not a mesh edge", i, j)
		}
	}
	for pair := range edgeAdjacent {
		i, j := pair[0], pair[1]
		found := false
		for _, n := range cv.Neighbors[i] {
			if n == j {
				found = true
			}
		}
		assert.True(t, found, "mesh edge (%d,%d) missing from CV adjacency", i, j)
	}
}

func TestAggregateFaceAntisymmetric(t *testing.T) {
	mg := buildRect(t, 2, 2, 1, 1)
	cv, err := NewCVMesh(mg)
	require.NoError(t, err)

	for i, neighbors := range cv.Neighbors {
		for _, j := range neighbors {
			aij := cv.AggregateFace(i, j)
			aji := cv.AggregateFace(j, i)
			for k := 0; k < 3; k++ {
				assert.InDelta(t, -aij[k], aji[k], 1e-9)
			}
		}
	}
}

func TestElementFacesNonEmptyForAdjacentNodes(t *testing.T) {
	mg := buildRect(t, 2, 2, 1, 1)
	cv, err := NewCVMesh(mg)
	require.NoError(t, err)

	i, j := cv.Neighbors[0][0], 0
	faces := cv.ElementFaces(j, i)
	assert.NotEmpty(t, faces)
}

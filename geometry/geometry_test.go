package geometry

import (
	"testing"

	"github.com/lizzy-go/lizzy/meshio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeshGeometryRect(t *testing.T) {
	data := meshio.RectMesh(2, 2, 1.0, 1.0)
	mg, err := NewMeshGeometry(data)
	require.NoError(t, err)
	assert.Equal(t, data.NumNodes(), mg.NumNodes())
	assert.Equal(t, data.NumTriangles(), mg.NumTriangles())

	totalArea := 0.0
	for i := range mg.Triangles {
		tri := &mg.Triangles[i]
		assert.Greater(t, tri.Area, 0.0)
		assert.InDelta(t, 1.0, tri.Normal.Norm(), 1e-9)
		assert.InDelta(t, 1.0, tri.Tangent1.Norm(), 1e-9)
		assert.InDelta(t, 1.0, tri.Tangent2.Norm(), 1e-9)
		assert.InDelta(t, 0.0, tri.Normal.Dot(tri.Tangent1), 1e-9)
		assert.InDelta(t, 0.0, tri.Normal.Dot(tri.Tangent2), 1e-9)
		assert.Equal(t, "panel", tri.DomainTag)
		totalArea += tri.Area
	}
	assert.InDelta(t, 1.0, totalArea, 1e-9)
}

func TestGradNSumsToZero(t *testing.T) {
	// Partition-of-unity shape functions sum to a constant, so their
	// gradients must sum to zero for every element.
	data := meshio.RectMesh(3, 3, 2.0, 1.5)
	mg, err := NewMeshGeometry(data)
	require.NoError(t, err)
	for i := range mg.Triangles {
		tri := &mg.Triangles[i]
		var sx, sy float64
		for a := 0; a < 3; a++ {
			sx += tri.GradN[a][0]
			sy += tri.GradN[a][1]
		}
		assert.InDelta(t, 0.0, sx, 1e-9)
		assert.InDelta(t, 0.0, sy, 1e-9)
	}
}

func TestDegenerateElementRejected(t *testing.T) {
	data := meshio.MeshData{
		NodeCoords: [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 0, 0}},
		TriNodes:   [][3]int{{0, 1, 2}},
	}
	_, err := NewMeshGeometry(data)
	require.Error(t, err)
}

func TestZeroAreaElementRejected(t *testing.T) {
	data := meshio.MeshData{
		NodeCoords: [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		TriNodes:   [][3]int{{0, 1, 2}},
	}
	_, err := NewMeshGeometry(data)
	require.Error(t, err)
}

func TestOutOfRangeNodeRejected(t *testing.T) {
	data := meshio.MeshData{
		NodeCoords: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		TriNodes:   [][3]int{{0, 1, 5}},
	}
	_, err := NewMeshGeometry(data)
	require.Error(t, err)
}

func TestAllMaterialsAssignedInitiallyFalse(t *testing.T) {
	data := meshio.RectMesh(1, 1, 1, 1)
	mg, err := NewMeshGeometry(data)
	require.NoError(t, err)
	ok, idx := mg.AllMaterialsAssigned()
	assert.False(t, ok)
	assert.GreaterOrEqual(t, idx, 0)
}

func TestTrianglesIncidentToNode(t *testing.T) {
	data := meshio.RectMesh(2, 2, 1, 1)
	mg, err := NewMeshGeometry(data)
	require.NoError(t, err)
	incident := mg.TrianglesIncidentToNode(4) // a center node in a 3x3 node grid
	assert.NotEmpty(t, incident)
	for _, e := range incident {
		found := false
		for _, n := range mg.Triangles[e].NodeIDs {
			if n == 4 {
				found = true
			}
		}
		assert.True(t, found)
	}
}

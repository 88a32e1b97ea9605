package materials

import (
	"testing"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRectStore(t *testing.T) (*MaterialStore, *geometry.MeshGeometry) {
	data := meshio.RectMesh(2, 2, 1.0, 1.0)
	mg, err := geometry.NewMeshGeometry(data)
	require.NoError(t, err)
	return NewMaterialStore(mg), mg
}

func TestCreateMaterialValidation(t *testing.T) {
	s, _ := newRectStore(t)

	_, err := s.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)

	_, err = s.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	assert.Error(t, err)

	_, err = s.CreateMaterial("bad-phi", 1e-10, 1e-10, 1e-10, 1.5, 1.0)
	assert.Error(t, err)

	_, err = s.CreateMaterial("bad-h", 1e-10, 1e-10, 1e-10, 0.5, 0)
	assert.Error(t, err)

	_, err = s.CreateMaterial("bad-k", -1, 1e-10, 1e-10, 0.5, 1.0)
	assert.Error(t, err)
}

func TestCreateMaterialDefaultName(t *testing.T) {
	s, _ := newRectStore(t)
	name1, err := s.CreateMaterial("", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	name2, err := s.CreateMaterial("", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	assert.NotEqual(t, name1, name2)
}

func TestAssignMaterialIsotropic(t *testing.T) {
	s, mg := newRectStore(t)
	_, err := s.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	err = s.AssignMaterial("iso", "panel", IdentityRosette)
	require.NoError(t, err)

	ok, _ := s.AllAssigned()
	assert.True(t, ok)

	for i := range mg.Triangles {
		tri := &mg.Triangles[i]
		assert.True(t, tri.Assigned)
		assert.InDelta(t, 1.0, tri.Thickness, 1e-12)
		assert.InDelta(t, 0.5, tri.Porosity, 1e-12)
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				if a == b {
					assert.InDelta(t, 1e-10, tri.Perm[a][b], 1e-20)
				} else {
					assert.InDelta(t, 0.0, tri.Perm[a][b], 1e-20)
				}
			}
		}
	}
}

func TestAssignMaterialUnknownDomainOrMaterial(t *testing.T) {
	s, _ := newRectStore(t)
	_, err := s.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)

	err = s.AssignMaterial("iso", "does-not-exist", IdentityRosette)
	assert.Error(t, err)

	err = s.AssignMaterial("no-such-material", "panel", IdentityRosette)
	assert.Error(t, err)
}

func TestAssignMaterialDomainAlreadyAssigned(t *testing.T) {
	s, _ := newRectStore(t)
	_, err := s.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	require.NoError(t, s.AssignMaterial("iso", "panel", IdentityRosette))
	err = s.AssignMaterial("iso", "panel", IdentityRosette)
	assert.Error(t, err)
}

func TestAssignMaterialRosetteParallelToNormalFails(t *testing.T) {
	s, mg := newRectStore(t)
	_, err := s.CreateMaterial("aniso", 1e-10, 1e-11, 1e-12, 0.5, 1.0)
	require.NoError(t, err)

	n := mg.Triangles[0].Normal
	err = s.AssignMaterial("aniso", "panel", Direction(n))
	assert.Error(t, err)
}

func TestAssignMaterialAnisotropicRosettePreservesEigenvalues(t *testing.T) {
	s, mg := newRectStore(t)
	_, err := s.CreateMaterial("aniso", 1e-10, 1e-11, 0, 0.5, 1.0)
	require.NoError(t, err)
	require.NoError(t, s.AssignMaterial("aniso", "panel", Direction(numeric.Vec3{1, 1, 0})))

	for i := range mg.Triangles {
		tri := &mg.Triangles[i]
		trace := tri.Perm[0][0] + tri.Perm[1][1] + tri.Perm[2][2]
		assert.InDelta(t, 1e-10+1e-11, trace, 1e-18)
	}
}

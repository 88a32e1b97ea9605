package boundary

import (
	"testing"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRectStore(t *testing.T) *BoundaryStore {
	data := meshio.RectMesh(2, 2, 1.0, 1.0)
	mg, err := geometry.NewMeshGeometry(data)
	require.NoError(t, err)
	return NewBoundaryStore(mg)
}

func TestCreateAndAssignInlet(t *testing.T) {
	s := newRectStore(t)
	name, err := s.CreateInlet("inlet", 1e5)
	require.NoError(t, err)
	require.NoError(t, s.AssignInlet(name, "left_edge"))

	in, ok := s.Inlet(name)
	require.True(t, ok)
	assert.True(t, in.Open)
	assert.NotEmpty(t, in.Nodes)
	assert.True(t, s.AnyOpen())
}

func TestCreateInletDuplicateName(t *testing.T) {
	s := newRectStore(t)
	_, err := s.CreateInlet("inlet", 1e5)
	require.NoError(t, err)
	_, err = s.CreateInlet("inlet", 1e5)
	assert.Error(t, err)
}

func TestAssignInletUnknownTargets(t *testing.T) {
	s := newRectStore(t)
	_, err := s.CreateInlet("inlet", 1e5)
	require.NoError(t, err)

	err = s.AssignInlet("inlet", "no-such-boundary")
	assert.Error(t, err)

	err = s.AssignInlet("no-such-inlet", "left_edge")
	assert.Error(t, err)
}

func TestAssignInletBoundaryAlreadyBound(t *testing.T) {
	s := newRectStore(t)
	_, err := s.CreateInlet("a", 1e5)
	require.NoError(t, err)
	_, err = s.CreateInlet("b", 1e4)
	require.NoError(t, err)

	require.NoError(t, s.AssignInlet("a", "left_edge"))
	err = s.AssignInlet("b", "left_edge")
	assert.Error(t, err)
}

func TestOpenCloseAndChangePressure(t *testing.T) {
	s := newRectStore(t)
	name, err := s.CreateInlet("inlet", 1e5)
	require.NoError(t, err)
	require.NoError(t, s.AssignInlet(name, "left_edge"))

	require.NoError(t, s.Close(name))
	assert.False(t, s.AnyOpen())

	require.NoError(t, s.Open(name))
	in, _ := s.Inlet(name)
	assert.InDelta(t, 1e5, in.Pressure, 1e-9)

	require.NoError(t, s.ChangePressure(name, 2e4, "delta"))
	assert.InDelta(t, 1.2e5, in.Pressure, 1e-9)

	require.NoError(t, s.ChangePressure(name, 5e4, "set"))
	assert.InDelta(t, 5e4, in.Pressure, 1e-9)

	err = s.ChangePressure(name, 0, "bogus")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	s := newRectStore(t)
	name, err := s.CreateInlet("inlet", 1e5)
	require.NoError(t, err)
	require.NoError(t, s.AssignInlet(name, "left_edge"))
	require.NoError(t, s.ChangePressure(name, 3e4, "set"))
	require.NoError(t, s.Close(name))

	s.Reset()

	in, _ := s.Inlet(name)
	assert.True(t, in.Open)
	assert.InDelta(t, 1e5, in.Pressure, 1e-9)
}

func TestDirichletNodesExcludesClosedInlets(t *testing.T) {
	s := newRectStore(t)
	name, err := s.CreateInlet("inlet", 1e5)
	require.NoError(t, err)
	require.NoError(t, s.AssignInlet(name, "left_edge"))

	nodes := s.DirichletNodes()
	assert.NotEmpty(t, nodes)
	for _, p := range nodes {
		assert.InDelta(t, 1e5, p, 1e-9)
	}

	require.NoError(t, s.Close(name))
	assert.Empty(t, s.DirichletNodes())
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizzy-go/lizzy/filldriver"
	"github.com/lizzy-go/lizzy/linsolve"
	"github.com/lizzy-go/lizzy/materials"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/numeric"
)

// fixtureReader hands back a fixed RectMesh, standing in for the
// out-of-scope MSH-v4 Reader.
type fixtureReader struct{}

func (fixtureReader) ReadMesh(path string) (meshio.MeshData, error) {
	return meshio.RectMesh(3, 3, 1.0, 1.0), nil
}

// recordingWriter captures the solution handed to SaveResults, standing
// in for the out-of-scope XDMF+HDF5 Writer.
type recordingWriter struct {
	caseName string
	sol      filldriver.Solution
}

func (w *recordingWriter) WriteSnapshots(caseName string, sol filldriver.Solution) error {
	w.caseName = caseName
	w.sol = sol
	return nil
}

func buildModel(t *testing.T) *LizzyModel {
	m := NewLizzyModel()
	require.NoError(t, m.ReadMesh(fixtureReader{}, "fixture.msh"))
	require.NoError(t, m.AssignSimulationParameters(0.1, -1, 0.02, false))

	_, err := m.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0)
	require.NoError(t, err)
	require.NoError(t, m.AssignMaterial("iso", "panel", materials.IdentityRosette))

	name, err := m.CreateInlet("inlet", 1e5)
	require.NoError(t, err)
	require.NoError(t, m.AssignInlet(name, "left_edge"))

	_, err = m.CreateSensor("probe", numeric.Vec3{0.5, 0.5, 0})
	require.NoError(t, err)
	return m
}

func TestScriptingSequenceHappyPath(t *testing.T) {
	m := buildModel(t)
	require.NoError(t, m.InitialiseSolver(linsolve.Dense))
	require.NoError(t, m.SolveTimeInterval(0.5))

	writer := &recordingWriter{}
	require.NoError(t, m.SaveResults(writer, "case-1"))
	assert.Equal(t, "case-1", writer.caseName)
}

func TestInitialiseSolverBeforeParamsFails(t *testing.T) {
	m := NewLizzyModel()
	require.NoError(t, m.ReadMesh(fixtureReader{}, "fixture.msh"))
	err := m.InitialiseSolver(linsolve.Dense)
	assert.Error(t, err)
}

func TestInitialiseSolverWithUnassignedMaterialFails(t *testing.T) {
	m := NewLizzyModel()
	require.NoError(t, m.ReadMesh(fixtureReader{}, "fixture.msh"))
	require.NoError(t, m.AssignSimulationParameters(0.1, -1, 0.02, false))
	err := m.InitialiseSolver(linsolve.Dense)
	assert.Error(t, err)
}

func TestSolveBeforeInitialiseFails(t *testing.T) {
	m := buildModel(t)
	err := m.Solve()
	assert.Error(t, err)
}

func TestLightweightFlagThreadsIntoDriver(t *testing.T) {
	m := buildModel(t)
	m.Lightweight = true
	require.NoError(t, m.InitialiseSolver(linsolve.Dense))
	assert.True(t, m.driver.Lightweight)
	require.NoError(t, m.SolveTimeInterval(1.0))
	assert.LessOrEqual(t, len(m.driver.Solution.Snapshots), 1)
}

func TestResetRoundTrip(t *testing.T) {
	m := buildModel(t)
	require.NoError(t, m.InitialiseSolver(linsolve.Dense))
	require.NoError(t, m.SolveTimeInterval(0.5))
	require.NoError(t, m.Reset())
}

package sensors

import (
	"testing"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRectGeometry(t *testing.T) *geometry.MeshGeometry {
	data := meshio.RectMesh(4, 4, 1.0, 1.0)
	mg, err := geometry.NewMeshGeometry(data)
	require.NoError(t, err)
	return mg
}

func TestCreateSensorLocatesInsideElement(t *testing.T) {
	mg := newRectGeometry(t)
	ss := NewSensorSet(mg)
	sn, err := ss.CreateSensor("s1", numeric.Vec3{0.5, 0.5, 0})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sn.Element, 0)

	sumW := sn.Weights[0] + sn.Weights[1] + sn.Weights[2]
	assert.InDelta(t, 1.0, sumW, 1e-9)
}

func TestCreateSensorDuplicateName(t *testing.T) {
	mg := newRectGeometry(t)
	ss := NewSensorSet(mg)
	_, err := ss.CreateSensor("s1", numeric.Vec3{0.1, 0.1, 0})
	require.NoError(t, err)
	_, err = ss.CreateSensor("s1", numeric.Vec3{0.2, 0.2, 0})
	assert.Error(t, err)
}

func TestSensorOutsideMeshSnapsToNearest(t *testing.T) {
	mg := newRectGeometry(t)
	ss := NewSensorSet(mg)
	sn, err := ss.CreateSensor("far", numeric.Vec3{100, 100, 0})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sn.Element, 0)
}

func TestSampleInterpolatesAndLatches(t *testing.T) {
	mg := newRectGeometry(t)
	ss := NewSensorSet(mg)
	ss.TriggerThreshold = 0.5
	sn, err := ss.CreateSensor("s1", numeric.Vec3{0.5, 0.5, 0})
	require.NoError(t, err)

	n := mg.NumNodes()
	p := make([]float64, n)
	f := make([]float64, n)
	v := make([]numeric.Vec3, n)
	for i := range p {
		p[i] = 1.0
		f[i] = 0.1
	}

	ss.Sample(0.0, p, v, f)
	assert.False(t, sn.Triggered)
	assert.InDelta(t, 1.0, sn.Pressure, 1e-9)
	assert.InDelta(t, 0.1, sn.Fill, 1e-9)

	for i := range f {
		f[i] = 0.9
	}
	ss.Sample(10.0, p, v, f)
	assert.True(t, sn.Triggered)
	assert.InDelta(t, 10.0, sn.TriggerAt, 1e-9)

	// Latch does not move once set.
	for i := range f {
		f[i] = 0.2
	}
	ss.Sample(20.0, p, v, f)
	assert.True(t, sn.Triggered)
	assert.InDelta(t, 10.0, sn.TriggerAt, 1e-9)
}

package sensors

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/types"
)

const component = "SensorSet"

// SensorSet owns the locate-once/sample-every-step lifecycle of a
// collection of point probes.
type SensorSet struct {
	Geometry  *geometry.MeshGeometry
	Sensors   []*Sensor
	// TriggerThreshold is the fill-factor level at which a sensor latches
	// its first-wet time, independent of FillDriver's ε_fill wet threshold.
	TriggerThreshold float64
	byName           map[string]*Sensor
}

// NewSensorSet binds a SensorSet to a mesh's geometry with the default
// trigger threshold of 0.5.
func NewSensorSet(mg *geometry.MeshGeometry) *SensorSet {
	return &SensorSet{
		Geometry:         mg,
		TriggerThreshold: 0.5,
		byName:           make(map[string]*Sensor),
	}
}

// CreateSensor registers and immediately locates a new sensor at pos.
func (s *SensorSet) CreateSensor(name string, pos numeric.Vec3) (*Sensor, error) {
	if _, exists := s.byName[name]; exists {
		return nil, types.Errorf(types.KindConfiguration, component, "CreateSensor",
			"sensor %q already exists", name)
	}
	sn := &Sensor{Name: name, Pos: pos, Element: -1, TriggerAt: -1}
	s.locate(sn)
	s.Sensors = append(s.Sensors, sn)
	s.byName[name] = sn
	return sn, nil
}

// locate resolves a sensor's host element via a plane-projected
// containment test, falling back to the nearest centroid.
func (s *SensorSet) locate(sn *Sensor) {
	best := -1
	bestDist := math.Inf(1)
	var bestWeights [3]float64

	for e := range s.Geometry.Triangles {
		tri := &s.Geometry.Triangles[e]
		w, contained := barycentric(s.Geometry, tri, sn.Pos)
		if contained {
			sn.Element = e
			sn.Weights = w
			return
		}
		d := sn.Pos.Sub(tri.Centroid).Norm()
		if d < bestDist {
			bestDist = d
			best = e
			bestWeights = w
		}
	}
	sn.Element = best
	sn.Weights = bestWeights
}

// barycentric computes the plane-projected barycentric weights of pos
// against tri, and whether they indicate containment (all in [0,1]).
func barycentric(mg *geometry.MeshGeometry, tri *geometry.Triangle, pos numeric.Vec3) ([3]float64, bool) {
	p0 := mg.Nodes[tri.NodeIDs[0]].X
	p1 := mg.Nodes[tri.NodeIDs[1]].X
	p2 := mg.Nodes[tri.NodeIDs[2]].X

	rel := pos.Sub(p0)
	u1, v1 := rel.Dot(tri.Tangent1), rel.Dot(tri.Tangent2)
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	u2, v2 := e1.Dot(tri.Tangent1), e1.Dot(tri.Tangent2)
	u3, v3 := e2.Dot(tri.Tangent1), e2.Dot(tri.Tangent2)

	det := u2*v3 - u3*v2
	if math.Abs(det) < 1e-20 {
		return [3]float64{1, 0, 0}, false
	}
	lambda1 := (u1*v3 - u3*v1) / det
	lambda2 := (u2*v1 - u1*v2) / det
	lambda0 := 1 - lambda1 - lambda2

	const tol = 1e-9
	contained := lambda0 >= -tol && lambda1 >= -tol && lambda2 >= -tol
	return [3]float64{lambda0, lambda1, lambda2}, contained
}

// Sample interpolates nodal pressure, nodal-averaged velocity and nodal
// fill factor onto every sensor's host element and latches the first step
// where the interpolated fill reaches TriggerThreshold.
func (s *SensorSet) Sample(t float64, pNodal []float64, vNodal []numeric.Vec3, fNodal []float64) {
	for _, sn := range s.Sensors {
		if sn.Element < 0 {
			continue
		}
		tri := &s.Geometry.Triangles[sn.Element]
		weights := sn.Weights[:]
		pVals := make([]float64, 3)
		fVals := make([]float64, 3)
		vAxes := [3][3]float64{}
		for a := 0; a < 3; a++ {
			node := tri.NodeIDs[a]
			pVals[a] = pNodal[node]
			fVals[a] = fNodal[node]
			for axis := 0; axis < 3; axis++ {
				vAxes[axis][a] = vNodal[node][axis]
			}
		}
		sn.Pressure = stat.Mean(pVals, weights)
		sn.Fill = stat.Mean(fVals, weights)
		var v numeric.Vec3
		for axis := 0; axis < 3; axis++ {
			v[axis] = stat.Mean(vAxes[axis][:], weights)
		}
		sn.Velocity = v
		if !sn.Triggered && sn.Fill >= s.TriggerThreshold {
			sn.Triggered = true
			sn.TriggerAt = t
		}
	}
}

// Sensor returns a registered sensor by name.
func (s *SensorSet) Sensor(name string) (*Sensor, bool) {
	sn, ok := s.byName[name]
	return sn, ok
}

// AnyTriggered reports whether at least one sensor has latched, the
// signal FillDriver checks when end_step_when_sensor_triggered is set.
func (s *SensorSet) AnyTriggered() bool {
	for _, sn := range s.Sensors {
		if sn.Triggered {
			return true
		}
	}
	return false
}

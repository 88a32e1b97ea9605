// Package sensors implements SensorSet: point probes resolved to a host
// element at init, sampled every FillDriver step by barycentric
// interpolation, latching a first-wet trigger time independent of the CV
// wet-classification threshold.
package sensors

import "github.com/lizzy-go/lizzy/numeric"

// Sensor is a single point probe.
type Sensor struct {
	Name    string
	Pos     numeric.Vec3
	Element int // resolved host element, set by SensorSet.CreateSensor
	Weights [3]float64

	Pressure  float64
	Velocity  numeric.Vec3
	Fill      float64
	Triggered bool
	TriggerAt float64
}

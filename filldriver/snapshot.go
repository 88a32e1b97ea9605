package filldriver

import (
	"github.com/google/uuid"

	"github.com/lizzy-go/lizzy/numeric"
)

// Snapshot is one immutable entry of a Solution's sequence.
type Snapshot struct {
	Time           float64
	Pressure       []float64
	Velocity       []numeric.Vec3 // per element
	Fill           []float64      // per node
	InletOpen      map[string]bool
	InletPressure  map[string]float64
	SensorReadings map[string]SensorReading
}

// SensorReading is the sampled state of one sensor at a Snapshot's time.
type SensorReading struct {
	Pressure  float64
	Velocity  numeric.Vec3
	Fill      float64
	Triggered bool
}

// Solution is the ordered snapshot sequence of one FillDriver run,
// identified by a run-id so repeated runs against the same mesh don't
// collide when handed to the (out-of-scope) results Writer.
type Solution struct {
	RunID     uuid.UUID
	Snapshots []Snapshot
}

func cloneFloats(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

func cloneVec3s(src []numeric.Vec3) []numeric.Vec3 {
	out := make([]numeric.Vec3, len(src))
	copy(out, src)
	return out
}

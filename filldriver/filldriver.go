// Package filldriver implements FillDriver: the simulation clock, the
// fill-factor vector, CFL-bounded adaptive time-stepping, and the
// assemble/solve/advect loop that orchestrates every other component.
package filldriver

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/lizzy-go/lizzy/assembly"
	"github.com/lizzy-go/lizzy/boundary"
	"github.com/lizzy-go/lizzy/cvmesh"
	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/linsolve"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/sensors"
	"github.com/lizzy-go/lizzy/types"
)

const component = "FillDriver"

// pendingOp is a queued inlet mutation, applied atomically at the top of
// the next step (§5's step-boundary ordering guarantee).
type pendingOp struct {
	kind  string // "open", "close", "pressure"
	inlet string
	value float64
	mode  string
}

// FillDriver owns the simulation clock, the fill-factor field and the
// snapshot sequence, and orchestrates LinearAssembler -> LinearSolver ->
// advection every step.
type FillDriver struct {
	Mesh      *geometry.MeshGeometry
	CV        *cvmesh.CVMesh
	Boundary  *boundary.BoundaryStore
	Sensors   *sensors.SensorSet
	Assembler *assembly.LinearAssembler
	Solver    *linsolve.LinearSolver

	Mu                   float64
	WoDeltaTime          float64 // -1 means "every step"
	EpsFill              float64
	EndOnSensorTriggered bool
	// Lightweight, when set, keeps only the most recent Snapshot in
	// Solution rather than the full step-by-step history (original
	// source's solve_step(..., lightweight=True), §9 resolution).
	Lightweight bool

	Fill  []float64
	Clock float64

	Failed bool
	failErr error

	Solution Solution

	// Progress receives the per-step "\rfill time: ..." line; nil
	// silences it. Defaults to os.Stdout, swappable for tests.
	Progress io.Writer

	queue        []pendingOp
	nextWriteOut float64
}

// NewFillDriver wires the components built by the earlier pipeline stages
// into a driver ready to take steps, and allocates a fresh run-id.
func NewFillDriver(mesh *geometry.MeshGeometry, cv *cvmesh.CVMesh, bstore *boundary.BoundaryStore, ss *sensors.SensorSet, la *assembly.LinearAssembler, solver *linsolve.LinearSolver, mu, woDeltaTime, epsFill float64, endOnSensorTriggered bool, lightweight bool) (*FillDriver, error) {
	if mu <= 0 {
		return nil, types.Errorf(types.KindConfiguration, component, "NewFillDriver", "viscosity %g must be positive", mu)
	}
	if epsFill <= 0 || epsFill >= 0.5 {
		return nil, types.Errorf(types.KindConfiguration, component, "NewFillDriver", "fill_tolerance %g must lie in (0, 0.5)", epsFill)
	}
	fd := &FillDriver{
		Mesh: mesh, CV: cv, Boundary: bstore, Sensors: ss, Assembler: la, Solver: solver,
		Mu: mu, WoDeltaTime: woDeltaTime, EpsFill: epsFill, EndOnSensorTriggered: endOnSensorTriggered,
		Lightweight: lightweight,
		Fill:        make([]float64, mesh.NumNodes()),
		Solution:    Solution{RunID: uuid.New()},
		Progress:    os.Stdout,
	}
	fd.initializeInletFill()
	fd.resetWriteOutClock()
	return fd, nil
}

// initializeInletFill seeds every assigned inlet node to Fill=1 and marks
// its CV wet, mirroring the original source's fill_initial_cvs() (called
// from initialise_new_solution and again after bc_manager.reset_inlets()).
func (fd *FillDriver) initializeInletFill() {
	for _, n := range fd.Boundary.AllInletNodes() {
		fd.Fill[n] = 1
		fd.CV.CVs[n].Fill = 1
		fd.CV.CVs[n].State = types.CVWet
	}
}

func (fd *FillDriver) resetWriteOutClock() {
	if fd.WoDeltaTime > 0 {
		fd.nextWriteOut = fd.WoDeltaTime
	} else {
		fd.nextWriteOut = math.Inf(1)
	}
}

// Reset restores every inlet to its initial pressure, re-zeros the fill
// field and then re-seeds every inlet node to Fill=1, resets the clock and
// snapshot list, and assigns a fresh run-id
// (§9 SUPPLEMENTED, backing the init-then-reset-and-reinit round trip).
func (fd *FillDriver) Reset() {
	fd.Boundary.Reset()
	for i := range fd.Fill {
		fd.Fill[i] = 0
	}
	for i := range fd.CV.CVs {
		fd.CV.CVs[i].Fill = 0
		fd.CV.CVs[i].State = types.CVDry
	}
	fd.initializeInletFill()
	fd.Clock = 0
	fd.Failed = false
	fd.failErr = nil
	fd.queue = nil
	fd.Solution = Solution{RunID: uuid.New()}
	fd.resetWriteOutClock()
}

// ChangeInletPressure enqueues a pressure change, applied at the top of
// the next step.
func (fd *FillDriver) ChangeInletPressure(name string, value float64, mode string) error {
	if fd.Failed {
		return fd.failErr
	}
	fd.queue = append(fd.queue, pendingOp{kind: "pressure", inlet: name, value: value, mode: mode})
	return nil
}

// OpenInlet enqueues an inlet open, applied at the top of the next step.
func (fd *FillDriver) OpenInlet(name string) error {
	if fd.Failed {
		return fd.failErr
	}
	fd.queue = append(fd.queue, pendingOp{kind: "open", inlet: name})
	return nil
}

// CloseInlet enqueues an inlet close, applied at the top of the next step.
func (fd *FillDriver) CloseInlet(name string) error {
	if fd.Failed {
		return fd.failErr
	}
	fd.queue = append(fd.queue, pendingOp{kind: "close", inlet: name})
	return nil
}

func (fd *FillDriver) applyPendingOps() error {
	for _, op := range fd.queue {
		var err error
		switch op.kind {
		case "open":
			err = fd.Boundary.Open(op.inlet)
		case "close":
			err = fd.Boundary.Close(op.inlet)
		case "pressure":
			err = fd.Boundary.ChangePressure(op.inlet, op.value, op.mode)
		}
		if err != nil {
			return err
		}
	}
	fd.queue = nil
	return nil
}

func (fd *FillDriver) fail(err error) error {
	fd.Failed = true
	fd.failErr = err
	return err
}

// AllWet reports whether every CV has reached the wet threshold.
func (fd *FillDriver) AllWet() bool {
	for i := range fd.Fill {
		if types.ClassifyFill(fd.Fill[i], fd.EpsFill) != types.CVWet {
			return false
		}
	}
	return true
}

// Solve runs the fill simulation to completion (until every CV is wet or
// a fatal error occurs), the §6 solve() entry point.
func (fd *FillDriver) Solve() error {
	return fd.run(math.Inf(1))
}

// SolveTimeInterval advances the simulation by deltaT, the §6
// solve_time_interval(Δt) entry point (the same operation as Solve, the
// §9 alias note: solve_step and solve_time_interval are one operation
// parameterized by an optional interval). If deltaT is shorter than one
// internal step, at least one step is still taken, clamped down to the
// interval boundary.
func (fd *FillDriver) SolveTimeInterval(deltaT float64) error {
	if deltaT <= 0 {
		return fd.fail(types.Errorf(types.KindRuntime, component, "SolveTimeInterval", "interval %g must be positive", deltaT))
	}
	return fd.run(deltaT)
}

func (fd *FillDriver) run(deltaT float64) error {
	if fd.Failed {
		return fd.failErr
	}
	intervalEnd := fd.Clock + deltaT
	first := true
	for fd.Clock < intervalEnd || first {
		first = false
		done, err := fd.step(intervalEnd - fd.Clock)
		if err != nil {
			return fd.fail(err)
		}
		if done {
			return nil
		}
		if fd.Clock >= intervalEnd-1e-12 {
			return nil
		}
	}
	return nil
}

// step performs a single scheduler step (§4.8, items 1-10), clamping dt
// to at most hardLimit (the remaining time in the user-requested
// interval). It returns done=true once every CV has reached the wet
// threshold.
func (fd *FillDriver) step(hardLimit float64) (done bool, err error) {
	if err := fd.applyPendingOps(); err != nil {
		return false, err
	}
	if fd.AllWet() {
		return true, nil
	}
	if !fd.Boundary.AnyOpen() {
		return false, types.Errorf(types.KindRuntime, component, "step", "no open inlet")
	}

	dirichlet := fd.Boundary.DirichletNodes()
	K, b, err := fd.Assembler.Assemble(fd.Mu, fd.Fill, fd.EpsFill, dirichlet)
	if err != nil {
		return false, err
	}
	p, err := fd.Solver.Solve(K, b)
	if err != nil {
		return false, err
	}

	velocity := fd.elementVelocity(p)
	outflow, inflow := fd.upwindFlux(velocity)

	n := len(fd.Fill)
	fdot := make([]float64, n)
	for i := 0; i < n; i++ {
		v := fd.CV.CVs[i].Volume
		if v == 0 {
			continue
		}
		// Wet CVs only feed the front; their fill is held where it is.
		if types.ClassifyFill(fd.Fill[i], fd.EpsFill) == types.CVWet {
			continue
		}
		fdot[i] = (inflow[i] - outflow[i]) / v
	}

	dt, err := fd.cflTimeStep(fdot)
	if err != nil {
		return false, err
	}
	if hardLimit > 0 && hardLimit < dt {
		dt = hardLimit
	}
	if fd.WoDeltaTime > 0 {
		if remain := fd.nextWriteOut - fd.Clock; remain < dt {
			dt = remain
		}
	}
	if dt <= 0 {
		return false, types.Errorf(types.KindRuntime, component, "step", "computed non-positive dt %g", dt)
	}

	newFill := make([]float64, n)
	for i := 0; i < n; i++ {
		v := fd.Fill[i] + dt*fdot[i]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		if v < fd.Fill[i]-1e-12 {
			return false, types.Errorf(types.KindRuntime, component, "step",
				"fill factor decreased at node %d: %g -> %g", i, fd.Fill[i], v)
		}
		newFill[i] = v
	}
	fd.Fill = newFill
	for i := 0; i < n; i++ {
		fd.CV.CVs[i].Fill = newFill[i]
		fd.CV.CVs[i].State = types.ClassifyFill(newFill[i], fd.EpsFill)
	}
	fd.Clock += dt
	fd.reportProgress()

	pSlice := vecToSlice(p)
	vNodal := fd.nodalVelocity(velocity)
	fd.Sensors.Sample(fd.Clock, pSlice, vNodal, fd.Fill)

	wroteSnapshot := false
	if fd.WoDeltaTime < 0 || (fd.WoDeltaTime > 0 && fd.Clock >= fd.nextWriteOut-1e-9) {
		fd.recordSnapshot(pSlice, velocity)
		wroteSnapshot = true
		if fd.WoDeltaTime > 0 {
			fd.nextWriteOut += fd.WoDeltaTime
		}
	}

	if fd.EndOnSensorTriggered && fd.Sensors.AnyTriggered() {
		if !wroteSnapshot {
			fd.recordSnapshot(pSlice, velocity)
		}
		return true, nil
	}
	return fd.AllWet(), nil
}

func (fd *FillDriver) elementVelocity(p *mat.VecDense) []numeric.Vec3 {
	n := len(fd.Mesh.Triangles)
	v := make([]numeric.Vec3, n)
	for e := range fd.Mesh.Triangles {
		tri := &fd.Mesh.Triangles[e]
		var gradP numeric.Vec3
		for a := 0; a < 3; a++ {
			gradP = gradP.Add(tri.TangentGrad(a).Scale(p.AtVec(tri.NodeIDs[a])))
		}
		v[e] = tri.Perm.Apply(gradP).Scale(-1 / fd.Mu)
	}
	return v
}

// upwindFlux computes, for every directed CV adjacency (i,j), the
// upwinded flux Q_ij and accumulates it into outflow[i] and inflow[j]
// (§4.8 steps 4-5).
func (fd *FillDriver) upwindFlux(velocity []numeric.Vec3) (outflow, inflow []float64) {
	n := fd.CV.NumCVs()
	outflow = make([]float64, n)
	inflow = make([]float64, n)
	for i := range fd.CV.CVs {
		for _, j := range fd.CV.Neighbors[i] {
			var q float64
			for _, ef := range fd.CV.ElementFaces(i, j) {
				contrib := velocity[ef.Element].Dot(ef.A)
				if contrib > 0 && fd.Fill[i] > 0 {
					q += contrib
				}
			}
			outflow[i] += q
			inflow[j] += q
		}
	}
	return outflow, inflow
}

// cflTimeStep computes the CFL-bounded dt from §4.8 step 6: the time the
// first front or dry CV needs to fill, (1-f_i) V_i / net inflow_i, which
// equals (1-f_i) / fdot_i since fdot is already divided by V_i.
func (fd *FillDriver) cflTimeStep(fdot []float64) (float64, error) {
	var candidates []float64
	for i, state := range fd.cvStates() {
		if state != types.CVFront && state != types.CVDry {
			continue
		}
		net := fdot[i]
		if net <= 0 {
			continue
		}
		candidates = append(candidates, (1-fd.Fill[i])/net)
	}
	if len(candidates) == 0 {
		return 0, types.Errorf(types.KindRuntime, component, "cflTimeStep",
			"no control volume is receiving flux; cannot determine a CFL-bounded step")
	}
	return floats.Min(candidates), nil
}

func (fd *FillDriver) reportProgress() {
	if fd.Progress == nil {
		return
	}
	wet := 0
	for _, cv := range fd.CV.CVs {
		if cv.State == types.CVWet {
			wet++
		}
	}
	fmt.Fprintf(fd.Progress, "\rfill time: %8.5f s, wet CVs: %5d/%-5d", fd.Clock, wet, len(fd.CV.CVs))
}

func (fd *FillDriver) cvStates() []types.CVState {
	out := make([]types.CVState, len(fd.Fill))
	for i, f := range fd.Fill {
		out[i] = types.ClassifyFill(f, fd.EpsFill)
	}
	return out
}

func (fd *FillDriver) nodalVelocity(elementVelocity []numeric.Vec3) []numeric.Vec3 {
	n := fd.Mesh.NumNodes()
	out := make([]numeric.Vec3, n)
	counts := make([]int, n)
	for node := 0; node < n; node++ {
		for _, e := range fd.Mesh.TrianglesIncidentToNode(node) {
			out[node] = out[node].Add(elementVelocity[e])
			counts[node]++
		}
	}
	for i := range out {
		if counts[i] > 0 {
			out[i] = out[i].Scale(1 / float64(counts[i]))
		}
	}
	return out
}

func (fd *FillDriver) recordSnapshot(pressure []float64, velocity []numeric.Vec3) {
	readings := make(map[string]SensorReading, len(fd.Sensors.Sensors))
	for _, sn := range fd.Sensors.Sensors {
		readings[sn.Name] = SensorReading{Pressure: sn.Pressure, Velocity: sn.Velocity, Fill: sn.Fill, Triggered: sn.Triggered}
	}
	inletOpen := make(map[string]bool)
	inletPressure := make(map[string]float64)
	for _, name := range fd.Boundary.OpenInlets() {
		inletOpen[name] = true
		if in, ok := fd.Boundary.Inlet(name); ok {
			inletPressure[name] = in.Pressure
		}
	}

	snap := Snapshot{
		Time:           fd.Clock,
		Pressure:       cloneFloats(pressure),
		Velocity:       cloneVec3s(velocity),
		Fill:           cloneFloats(fd.Fill),
		InletOpen:      inletOpen,
		InletPressure:  inletPressure,
		SensorReadings: readings,
	}
	if fd.Lightweight {
		fd.Solution.Snapshots = []Snapshot{snap}
		return
	}
	fd.Solution.Snapshots = append(fd.Solution.Snapshots, snap)
}

// MassConservationResidual returns Σ_i V_i (f_i(t2) - f_i(t1)), the
// quantity §8's mass-conservation property bounds against dt times the
// total open-inlet mass influx.
func MassConservationResidual(cv *cvmesh.CVMesh, f1, f2 []float64) float64 {
	deltaVolume := make([]float64, len(f1))
	for i := range f1 {
		deltaVolume[i] = cv.CVs[i].Volume * (f2[i] - f1[i])
	}
	return floats.Sum(deltaVolume)
}

func vecToSlice(v *mat.VecDense) []float64 {
	n := v.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = v.AtVec(i)
	}
	return out
}

// Package model implements LizzyModel: the user-facing façade exposing
// the engine's scripting surface in the fixed call order of §6, itself a
// thin delegator to the narrow MeshGeometry/MaterialStore/BoundaryStore/
// SensorSet/LinearAssembler/LinearSolver/FillDriver components rather than
// a god-object (§9 design note).
package model

import (
	"github.com/lizzy-go/lizzy/assembly"
	"github.com/lizzy-go/lizzy/boundary"
	"github.com/lizzy-go/lizzy/cvmesh"
	"github.com/lizzy-go/lizzy/filldriver"
	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/linsolve"
	"github.com/lizzy-go/lizzy/materials"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/sensors"
	"github.com/lizzy-go/lizzy/types"
)

const component = "LizzyModel"

// ResultsWriter is the out-of-scope collaborator that persists a Solution
// under case_name (§6's XDMF+HDF5 contract).
type ResultsWriter interface {
	WriteSnapshots(caseName string, sol filldriver.Solution) error
}

// LizzyModel drives one simulation through the §6 scripting sequence:
// read_mesh, assign_simulation_parameters, create/assign_material,
// create/assign_inlet, create_sensor, initialise_solver, solve, the
// mutable inlet/sensor calls, and save_results.
type LizzyModel struct {
	mesh      *geometry.MeshGeometry
	materials *materials.MaterialStore
	boundary  *boundary.BoundaryStore
	sensors   *sensors.SensorSet

	mu                   float64
	woDeltaTime          float64
	epsFill              float64
	endOnSensorTriggered bool
	paramsAssigned       bool

	cv     *cvmesh.CVMesh
	driver *filldriver.FillDriver

	// Lightweight, when set, makes InitialiseSolver build a FillDriver that
	// keeps only the most recent Snapshot instead of the full step history
	// (original source's solve_step(..., lightweight=True); §9 resolution).
	Lightweight bool
}

// NewLizzyModel constructs an un-initialised model; ReadMesh must be
// called before any other method.
func NewLizzyModel() *LizzyModel {
	return &LizzyModel{}
}

// ReadMesh loads mesh data via the external reader and builds the
// immutable MeshGeometry.
func (m *LizzyModel) ReadMesh(reader meshio.Reader, path string) error {
	data, err := reader.ReadMesh(path)
	if err != nil {
		return types.Errorf(types.KindIO, component, "ReadMesh", "reading mesh %q: %v", path, err)
	}
	mg, err := geometry.NewMeshGeometry(data)
	if err != nil {
		return err
	}
	m.mesh = mg
	m.materials = materials.NewMaterialStore(mg)
	m.boundary = boundary.NewBoundaryStore(mg)
	m.sensors = sensors.NewSensorSet(mg)
	return nil
}

// AssignSimulationParameters sets the viscosity, write-out cadence,
// fill-tolerance and sensor-termination flag used by the FillDriver built
// at InitialiseSolver.
func (m *LizzyModel) AssignSimulationParameters(mu, woDeltaTime, epsFill float64, endOnSensorTriggered bool) error {
	if m.mesh == nil {
		return types.Errorf(types.KindConfiguration, component, "AssignSimulationParameters", "read_mesh must be called first")
	}
	m.mu = mu
	m.woDeltaTime = woDeltaTime
	m.epsFill = epsFill
	m.endOnSensorTriggered = endOnSensorTriggered
	m.paramsAssigned = true
	return nil
}

// CreateMaterial registers a material (see materials.MaterialStore).
func (m *LizzyModel) CreateMaterial(name string, k1, k2, k3, phi, h float64) (string, error) {
	return m.materials.CreateMaterial(name, k1, k2, k3, phi, h)
}

// AssignMaterial binds a material onto a domain (see
// materials.MaterialStore).
func (m *LizzyModel) AssignMaterial(materialName, domainName string, rosette materials.Rosette) error {
	return m.materials.AssignMaterial(materialName, domainName, rosette)
}

// CreateInlet registers a pressure inlet (see boundary.BoundaryStore).
func (m *LizzyModel) CreateInlet(name string, p float64) (string, error) {
	return m.boundary.CreateInlet(name, p)
}

// AssignInlet binds an inlet to a named boundary node-set (see
// boundary.BoundaryStore).
func (m *LizzyModel) AssignInlet(inletName, boundaryName string) error {
	return m.boundary.AssignInlet(inletName, boundaryName)
}

// CreateSensor registers a point probe (see sensors.SensorSet).
func (m *LizzyModel) CreateSensor(name string, pos numeric.Vec3) (*sensors.Sensor, error) {
	return m.sensors.CreateSensor(name, pos)
}

// InitialiseSolver freezes the mesh topology, builds the control-volume
// tessellation and sparsity pattern, and constructs the FillDriver bound
// to the chosen backend.
func (m *LizzyModel) InitialiseSolver(backend linsolve.Backend) error {
	if m.mesh == nil {
		return types.Errorf(types.KindConfiguration, component, "InitialiseSolver", "read_mesh must be called first")
	}
	if !m.paramsAssigned {
		return types.Errorf(types.KindConfiguration, component, "InitialiseSolver", "assign_simulation_parameters must be called first")
	}
	if ok, idx := m.materials.AllAssigned(); !ok {
		return types.Errorf(types.KindConfiguration, component, "InitialiseSolver", "unassigned material tag: element %d", idx)
	}

	cv, err := cvmesh.NewCVMesh(m.mesh)
	if err != nil {
		return err
	}
	m.cv = cv

	la := assembly.NewLinearAssembler(m.mesh, cv)
	solver := linsolve.NewLinearSolver(backend)
	driver, err := filldriver.NewFillDriver(m.mesh, cv, m.boundary, m.sensors, la, solver, m.mu, m.woDeltaTime, m.epsFill, m.endOnSensorTriggered, m.Lightweight)
	if err != nil {
		return err
	}
	m.driver = driver
	return nil
}

// Solve runs the fill simulation to completion.
func (m *LizzyModel) Solve() error {
	if err := m.requireInitialised("Solve"); err != nil {
		return err
	}
	return m.driver.Solve()
}

// SolveTimeInterval advances the fill simulation by deltaT (the same
// operation as Solve, parameterized — §9 alias note).
func (m *LizzyModel) SolveTimeInterval(deltaT float64) error {
	if err := m.requireInitialised("SolveTimeInterval"); err != nil {
		return err
	}
	return m.driver.SolveTimeInterval(deltaT)
}

// ChangeInletPressure queues an inlet pressure change, applied at the
// next step boundary.
func (m *LizzyModel) ChangeInletPressure(name string, value float64, mode string) error {
	if err := m.requireInitialised("ChangeInletPressure"); err != nil {
		return err
	}
	return m.driver.ChangeInletPressure(name, value, mode)
}

// OpenInlet queues an inlet open, applied at the next step boundary.
func (m *LizzyModel) OpenInlet(name string) error {
	if err := m.requireInitialised("OpenInlet"); err != nil {
		return err
	}
	return m.driver.OpenInlet(name)
}

// CloseInlet queues an inlet close, applied at the next step boundary.
func (m *LizzyModel) CloseInlet(name string) error {
	if err := m.requireInitialised("CloseInlet"); err != nil {
		return err
	}
	return m.driver.CloseInlet(name)
}

// SaveResults hands the current Solution to the out-of-scope Writer.
func (m *LizzyModel) SaveResults(writer ResultsWriter, caseName string) error {
	if err := m.requireInitialised("SaveResults"); err != nil {
		return err
	}
	if err := writer.WriteSnapshots(caseName, m.driver.Solution); err != nil {
		return types.Errorf(types.KindIO, component, "SaveResults", "writing results for case %q: %v", caseName, err)
	}
	return nil
}

// Reset reinitialises the driver's clock, fill field and inlet pressures
// while keeping the mesh, materials and sparsity pattern untouched (§9
// SUPPLEMENTED, the init-then-reset-and-reinit round trip).
func (m *LizzyModel) Reset() error {
	if err := m.requireInitialised("Reset"); err != nil {
		return err
	}
	m.driver.Reset()
	return nil
}

func (m *LizzyModel) requireInitialised(op string) error {
	if m.driver == nil {
		return types.Errorf(types.KindConfiguration, component, op, "initialise_solver must be called first")
	}
	return nil
}

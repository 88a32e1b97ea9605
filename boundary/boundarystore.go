package boundary

import (
	"fmt"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/types"
)

const component = "BoundaryStore"

// BoundaryStore owns named inlets and their binding to a mesh's node-sets.
type BoundaryStore struct {
	mesh            *geometry.MeshGeometry
	inlets          map[string]*Inlet
	assignedBoundary map[string]string // boundary node-set name -> inlet name
	nextDefault     int
}

// NewBoundaryStore binds a BoundaryStore to a mesh's geometry.
func NewBoundaryStore(mesh *geometry.MeshGeometry) *BoundaryStore {
	return &BoundaryStore{
		mesh:             mesh,
		inlets:           make(map[string]*Inlet),
		assignedBoundary: make(map[string]string),
	}
}

// CreateInlet registers a new named inlet open at pressure p. An empty
// name generates "inlet-<n>".
func (s *BoundaryStore) CreateInlet(name string, p float64) (string, error) {
	if name == "" {
		name = s.defaultName()
	}
	if _, exists := s.inlets[name]; exists {
		return "", types.Errorf(types.KindConfiguration, component, "CreateInlet",
			"inlet %q already exists", name)
	}
	s.inlets[name] = &Inlet{Name: name, Pressure: p, Initial: p, Open: true, lastOpenP: p}
	s.nextDefault++
	return name, nil
}

func (s *BoundaryStore) defaultName() string {
	for {
		candidate := fmt.Sprintf("inlet-%d", s.nextDefault)
		s.nextDefault++
		if _, exists := s.inlets[candidate]; !exists {
			return candidate
		}
	}
}

// AssignInlet binds a registered inlet to the node-set named boundaryName.
// Fails if the inlet or boundary is unknown, or the boundary was already
// bound to an inlet.
func (s *BoundaryStore) AssignInlet(inletName, boundaryName string) error {
	in, ok := s.inlets[inletName]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "AssignInlet",
			"unknown inlet %q", inletName)
	}
	nodes, ok := s.mesh.NodeSets[boundaryName]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "AssignInlet",
			"unknown boundary %q", boundaryName)
	}
	if prior, done := s.assignedBoundary[boundaryName]; done {
		return types.Errorf(types.KindConfiguration, component, "AssignInlet",
			"boundary %q already bound to inlet %q", boundaryName, prior)
	}
	in.Nodes = append(in.Nodes, nodes...)
	s.assignedBoundary[boundaryName] = inletName
	return nil
}

// Open restores the inlet's pressure to the value it held when last open.
func (s *BoundaryStore) Open(name string) error {
	in, ok := s.inlets[name]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "Open", "unknown inlet %q", name)
	}
	in.Open = true
	in.Pressure = in.lastOpenP
	return nil
}

// Close marks the inlet as a natural-Neumann wall, excluded from Dirichlet
// rows until reopened.
func (s *BoundaryStore) Close(name string) error {
	in, ok := s.inlets[name]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "Close", "unknown inlet %q", name)
	}
	in.Open = false
	return nil
}

// ChangePressure applies mode ("set" or "delta") to the named inlet's
// pressure.
func (s *BoundaryStore) ChangePressure(name string, value float64, mode string) error {
	in, ok := s.inlets[name]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "ChangePressure", "unknown inlet %q", name)
	}
	if mode != "set" && mode != "delta" {
		return errUnknownMode(mode)
	}
	return in.changePressure(value, mode)
}

// Reset restores every inlet to its construction-time pressure and opens
// it; the §9 SUPPLEMENTED convenience backing FillDriver.Reset.
func (s *BoundaryStore) Reset() {
	for _, in := range s.inlets {
		in.reset()
	}
}

// OpenInlets returns the names of currently-open inlets.
func (s *BoundaryStore) OpenInlets() []string {
	var out []string
	for name, in := range s.inlets {
		if in.Open {
			out = append(out, name)
		}
	}
	return out
}

// AnyOpen reports whether at least one inlet is open, the precondition
// FillDriver checks before taking a step.
func (s *BoundaryStore) AnyOpen() bool {
	for _, in := range s.inlets {
		if in.Open {
			return true
		}
	}
	return false
}

// Inlet returns a registered inlet by name.
func (s *BoundaryStore) Inlet(name string) (*Inlet, bool) {
	in, ok := s.inlets[name]
	return in, ok
}

// DirichletNodes returns the node index and pressure value of every open
// inlet's boundary node, the set LinearAssembler elimates against.
func (s *BoundaryStore) DirichletNodes() map[int]float64 {
	out := make(map[int]float64)
	for _, in := range s.inlets {
		if !in.Open {
			continue
		}
		for _, n := range in.Nodes {
			out[n] = in.Pressure
		}
	}
	return out
}

// AllInletNodes returns the node indices of every assigned inlet,
// regardless of its current open/closed state — the set
// FillDriver.initializeInletFill seeds to Fill=1 at construction time and
// on reset.
func (s *BoundaryStore) AllInletNodes() []int {
	var out []int
	for _, in := range s.inlets {
		out = append(out, in.Nodes...)
	}
	return out
}

func errUnknownMode(mode string) error {
	return types.Errorf(types.KindConfiguration, component, "ChangePressure",
		"unknown pressure-change mode %q, want \"set\" or \"delta\"", mode)
}

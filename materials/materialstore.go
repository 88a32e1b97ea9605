package materials

import (
	"fmt"

	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/types"
)

const component = "MaterialStore"

// MaterialStore owns named materials and drives their assignment onto the
// element-sets ("domains") of a MeshGeometry, rotating each material's
// principal permeabilities into the global frame via the domain's Rosette.
type MaterialStore struct {
	mesh           *geometry.MeshGeometry
	materials      map[string]PorousMaterial
	assignedDomain map[string]string // domain name -> material name, once assigned
	nextDefault    int
}

// NewMaterialStore binds a MaterialStore to a mesh's geometry.
func NewMaterialStore(mesh *geometry.MeshGeometry) *MaterialStore {
	return &MaterialStore{
		mesh:           mesh,
		materials:      make(map[string]PorousMaterial),
		assignedDomain: make(map[string]string),
	}
}

// CreateMaterial registers a new named material. An empty name generates
// "material-<n>". Fails on duplicate name, φ outside (0,1), h ≤ 0, or any
// negative principal permeability.
func (s *MaterialStore) CreateMaterial(name string, k1, k2, k3, phi, h float64) (string, error) {
	if name == "" {
		name = s.defaultName()
	}
	if _, exists := s.materials[name]; exists {
		return "", types.Errorf(types.KindConfiguration, component, "CreateMaterial",
			"material %q already exists", name)
	}
	if phi <= 0 || phi >= 1 {
		return "", types.Errorf(types.KindConfiguration, component, "CreateMaterial",
			"porosity %g must lie in (0,1)", phi)
	}
	if h <= 0 {
		return "", types.Errorf(types.KindConfiguration, component, "CreateMaterial",
			"thickness %g must be positive", h)
	}
	if k1 < 0 || k2 < 0 || k3 < 0 {
		return "", types.Errorf(types.KindConfiguration, component, "CreateMaterial",
			"principal permeabilities must be non-negative, got (%g,%g,%g)", k1, k2, k3)
	}
	s.materials[name] = PorousMaterial{Name: name, K1: k1, K2: k2, K3: k3, Phi: phi, H: h}
	s.nextDefault++
	return name, nil
}

func (s *MaterialStore) defaultName() string {
	for {
		candidate := fmt.Sprintf("material-%d", s.nextDefault)
		s.nextDefault++
		if _, exists := s.materials[candidate]; !exists {
			return candidate
		}
	}
}

// AssignMaterial assigns a registered material onto every element tagged
// with domainName, rotating the material's principal permeabilities into
// each element's global frame via rosette (IdentityRosette if the zero
// value is passed). Fails if the material or domain is unknown, or the
// domain was already assigned.
func (s *MaterialStore) AssignMaterial(materialName, domainName string, rosette Rosette) error {
	mat, ok := s.materials[materialName]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "AssignMaterial",
			"unknown material %q", materialName)
	}
	elems, ok := s.mesh.ElementSets[domainName]
	if !ok {
		return types.Errorf(types.KindConfiguration, component, "AssignMaterial",
			"unknown domain %q", domainName)
	}
	if prior, done := s.assignedDomain[domainName]; done {
		return types.Errorf(types.KindConfiguration, component, "AssignMaterial",
			"domain %q already assigned material %q", domainName, prior)
	}

	diag := numeric.Diag3(mat.K1, mat.K2, mat.K3)
	for _, e := range elems {
		tri := &s.mesh.Triangles[e]
		e3 := tri.Normal

		var u1 numeric.Vec3
		if rosette.isIdentity() {
			u1 = tri.Tangent1
		} else {
			u1 = rosette.resolved()
		}

		proj := u1.Sub(e3.Scale(u1.Dot(e3)))
		if proj.Norm() < 1e-10 {
			return types.Errorf(types.KindConfiguration, component, "AssignMaterial",
				"rosette direction is parallel to the normal of element %d in domain %q", e, domainName)
		}
		e1 := proj.Normalize()
		e2 := e3.Cross(e1)

		tri.Perm = numeric.RotateByBasis(diag, e1, e2, e3)
		tri.Thickness = mat.H
		tri.Porosity = mat.Phi
		tri.MaterialTag = materialName
		tri.Assigned = true
	}
	s.assignedDomain[domainName] = materialName
	return nil
}

// AllAssigned reports whether every element of the bound mesh carries a
// material assignment.
func (s *MaterialStore) AllAssigned() (bool, int) {
	return s.mesh.AllMaterialsAssigned()
}

// Material returns a registered material by name.
func (s *MaterialStore) Material(name string) (PorousMaterial, bool) {
	m, ok := s.materials[name]
	return m, ok
}

// Package cvmesh builds the median-dual control-volume tessellation of a
// MeshGeometry: per-CV volumes, the directed face-vector aggregation used
// as the pressure-solve sparsity pattern, and the per-element sub-edge
// face vectors FillDriver's advection step upwinds against.
package cvmesh

import (
	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/types"
)

// ElementFace is one element's contribution to the directed face vector
// between two control volumes, retained separately from the aggregate so
// FillDriver can upwind per element before summing (§4.8 step 4).
type ElementFace struct {
	Element int
	A       numeric.Vec3
}

// ControlVolume is the per-node advection cell: its volume and current
// fill state. Fill and State are owned and mutated by FillDriver; CVMesh
// only ever sets them to their zero/dry initial values at construction.
type ControlVolume struct {
	Node   int
	Volume float64
	Fill   float64
	State  types.CVState
}

// CVMesh is the immutable (post-construction) median-dual tessellation of
// a MeshGeometry. It must be built after every element of the geometry
// carries a material assignment.
type CVMesh struct {
	Geometry *geometry.MeshGeometry
	CVs      []ControlVolume
	Neighbors [][]int

	aggregate  map[types.DirectedEdgeKey]numeric.Vec3
	perElement map[types.DirectedEdgeKey][]ElementFace
}

const component = "CVMesh"

// NewCVMesh constructs the control-volume mesh. Fails if any element
// lacks a material assignment (volumes and face vectors depend on h_e,
// φ_e, which only a material assignment provides).
func NewCVMesh(mg *geometry.MeshGeometry) (*CVMesh, error) {
	if ok, idx := mg.AllMaterialsAssigned(); !ok {
		return nil, types.Errorf(types.KindConfiguration, component, "NewCVMesh",
			"unassigned material tag: element %d carries no material", idx)
	}

	n := mg.NumNodes()
	volumes := make([]float64, n)
	aggregate := make(map[types.DirectedEdgeKey]numeric.Vec3)
	perElement := make(map[types.DirectedEdgeKey][]ElementFace)

	for e := range mg.Triangles {
		tri := &mg.Triangles[e]
		contrib := tri.Area * tri.Thickness * tri.Porosity / 3.0
		for _, node := range tri.NodeIDs {
			volumes[node] += contrib
		}

		for k := 0; k < 3; k++ {
			a := tri.NodeIDs[k]
			b := tri.NodeIDs[(k+1)%3]
			raw := subEdgeFaceVector(mg, tri, a, b)

			faceAB := raw.Scale(tri.Thickness)
			faceBA := raw.Scale(-tri.Thickness)

			keyAB := types.NewDirectedEdgeKey(a, b)
			keyBA := types.NewDirectedEdgeKey(b, a)

			aggregate[keyAB] = aggregate[keyAB].Add(faceAB)
			aggregate[keyBA] = aggregate[keyBA].Add(faceBA)
			perElement[keyAB] = append(perElement[keyAB], ElementFace{Element: e, A: faceAB})
			perElement[keyBA] = append(perElement[keyBA], ElementFace{Element: e, A: faceBA})
		}
	}

	cvs := make([]ControlVolume, n)
	for i := 0; i < n; i++ {
		cvs[i] = ControlVolume{Node: i, Volume: volumes[i], Fill: 0, State: types.CVDry}
	}

	neighbors := make([][]int, n)
	for key, a := range aggregate {
		if a.Norm() < 1e-14 {
			continue
		}
		i, j := key.GetDirected()
		neighbors[i] = append(neighbors[i], j)
	}

	return &CVMesh{
		Geometry:   mg,
		CVs:        cvs,
		Neighbors:  neighbors,
		aggregate:  aggregate,
		perElement: perElement,
	}, nil
}

// subEdgeFaceVector returns the signed, in-plane, unit-thickness face
// vector of the sub-edge from the element's centroid to the midpoint of
// edge (a,b), oriented to point from CV_a toward CV_b.
func subEdgeFaceVector(mg *geometry.MeshGeometry, tri *geometry.Triangle, a, b int) numeric.Vec3 {
	xa := mg.Nodes[a].X
	xb := mg.Nodes[b].X
	midpoint := xa.Add(xb).Scale(0.5)
	d := midpoint.Sub(tri.Centroid)
	raw := tri.Normal.Cross(d)
	edgeDir := xb.Sub(xa)
	if raw.Dot(edgeDir) < 0 {
		raw = raw.Scale(-1)
	}
	return raw
}

// AggregateFace returns A_{i->j}, the directed face vector aggregated
// across all elements sharing the (i,j) adjacency, or the zero vector if
// i and j are not neighbours.
func (m *CVMesh) AggregateFace(i, j int) numeric.Vec3 {
	return m.aggregate[types.NewDirectedEdgeKey(i, j)]
}

// ElementFaces returns the per-element contributions to the directed face
// vector between i and j, used to upwind flux per element before summing
// (§4.8 step 4): a shared edge's two incident elements can carry
// oppositely-signed velocities and must not be pre-aggregated.
func (m *CVMesh) ElementFaces(i, j int) []ElementFace {
	return m.perElement[types.NewDirectedEdgeKey(i, j)]
}

// NumCVs returns the number of control volumes (equal to the node count).
func (m *CVMesh) NumCVs() int { return len(m.CVs) }

// TotalVolume sums all CV volumes, used to check the partition-of-unity
// invariant against Σ A_e h_e φ_e over all elements.
func (m *CVMesh) TotalVolume() float64 {
	var total float64
	for i := range m.CVs {
		total += m.CVs[i].Volume
	}
	return total
}

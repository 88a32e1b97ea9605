package geometry

import (
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/numeric"
	"github.com/lizzy-go/lizzy/types"
)

// MeshGeometry holds the immutable geometric description of the surface
// mesh: nodes, triangles with their precomputed normals/tangents/areas/
// centroids/gradients, and the named node-sets and element-sets carried
// over from the mesh reader.
type MeshGeometry struct {
	Nodes       []Node
	Triangles   []Triangle
	NodeSets    map[string][]int
	ElementSets map[string][]int
}

// NewMeshGeometry builds a MeshGeometry from externally-supplied mesh data,
// precomputing per-triangle normal, area, centroid, in-plane tangent frame
// and shape-function gradients. It fails (§4.1) on zero-area elements and
// non-triangular connectivity; disconnected components with no inlet are a
// FillDriver-time concern, not checked here.
func NewMeshGeometry(data meshio.MeshData) (*MeshGeometry, error) {
	nodes := make([]Node, len(data.NodeCoords))
	for i, c := range data.NodeCoords {
		nodes[i] = Node{Index: i, X: numeric.Vec3(c)}
	}

	tris := make([]Triangle, len(data.TriNodes))
	for e, conn := range data.TriNodes {
		if conn[0] == conn[1] || conn[1] == conn[2] || conn[0] == conn[2] {
			return nil, types.Errorf(types.KindTopological, "MeshGeometry", "NewMeshGeometry",
				"element %d is degenerate: repeated node index in %v", e, conn)
		}
		for _, n := range conn {
			if n < 0 || n >= len(nodes) {
				return nil, types.Errorf(types.KindTopological, "MeshGeometry", "NewMeshGeometry",
					"element %d references out-of-range node %d", e, n)
			}
		}
		p0, p1, p2 := nodes[conn[0]].X, nodes[conn[1]].X, nodes[conn[2]].X
		e1 := p1.Sub(p0)
		e2 := p2.Sub(p0)
		cross := e1.Cross(e2)
		area := 0.5 * cross.Norm()
		if area < 1e-14 {
			return nil, types.Errorf(types.KindTopological, "MeshGeometry", "NewMeshGeometry",
				"element %d has zero (or near-zero) area", e)
		}
		normal := cross.Scale(1 / (2 * area))
		t1 := e1.Normalize()
		t2 := normal.Cross(t1).Normalize()
		centroid := p0.Add(p1).Add(p2).Scale(1.0 / 3.0)

		// Local 2D coordinates of the three nodes in the (t1, t2) frame,
		// with node 0 at the origin.
		u := [3]float64{0, e1.Dot(t1), e2.Dot(t1)}
		v := [3]float64{0, e1.Dot(t2), e2.Dot(t2)}

		var gradN [3][2]float64
		for a := 0; a < 3; a++ {
			b, c := (a+1)%3, (a+2)%3
			gradN[a][0] = (v[b] - v[c]) / (2 * area)
			gradN[a][1] = (u[c] - u[b]) / (2 * area)
		}

		tris[e] = Triangle{
			Index:    e,
			NodeIDs:  conn,
			Normal:   normal,
			Tangent1: t1,
			Tangent2: t2,
			Area:     area,
			Centroid: centroid,
			GradN:    gradN,
		}
	}

	domainOf := make([]string, len(tris))
	for name, elems := range data.ElementSets {
		for _, e := range elems {
			if e < 0 || e >= len(tris) {
				return nil, types.Errorf(types.KindTopological, "MeshGeometry", "NewMeshGeometry",
					"element set %q references out-of-range element %d", name, e)
			}
			domainOf[e] = name
		}
	}
	for e := range tris {
		tris[e].DomainTag = domainOf[e]
	}

	nodeSets := make(map[string][]int, len(data.NodeSets))
	for k, v := range data.NodeSets {
		cp := make([]int, len(v))
		copy(cp, v)
		nodeSets[k] = cp
	}
	elemSets := make(map[string][]int, len(data.ElementSets))
	for k, v := range data.ElementSets {
		cp := make([]int, len(v))
		copy(cp, v)
		elemSets[k] = cp
	}

	return &MeshGeometry{
		Nodes:       nodes,
		Triangles:   tris,
		NodeSets:    nodeSets,
		ElementSets: elemSets,
	}, nil
}

// NumNodes returns the node count.
func (m *MeshGeometry) NumNodes() int { return len(m.Nodes) }

// NumTriangles returns the triangle count.
func (m *MeshGeometry) NumTriangles() int { return len(m.Triangles) }

// TrianglesIncidentToNode returns the indices of triangles that reference
// the given node, used by FillDriver's nodal-velocity averaging.
func (m *MeshGeometry) TrianglesIncidentToNode(node int) []int {
	var out []int
	for i := range m.Triangles {
		for _, n := range m.Triangles[i].NodeIDs {
			if n == node {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// AllMaterialsAssigned reports whether every triangle carries a material
// assignment, the precondition checked at initialise_solver (§4.3).
func (m *MeshGeometry) AllMaterialsAssigned() (bool, int) {
	for i := range m.Triangles {
		if !m.Triangles[i].Assigned {
			return false, i
		}
	}
	return true, -1
}

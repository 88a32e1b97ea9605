// Package geometry implements MeshGeometry: the immutable node/triangle
// geometry derived once from the externally-supplied mesh data — normals,
// in-plane tangent frames, areas, centroids and gradient operators. It
// generalizes the teacher's geometry2D package (Point/Tri/Edge, bounding
// boxes) from a 2D Delaunay-triangulation helper into a 3D-embedded
// surface-mesh geometry kernel; the Delaunay-specific edge-legalization
// code has no home here since this engine never re-triangulates a mesh.
package geometry

import "github.com/lizzy-go/lizzy/numeric"

// Node is an immutable mesh vertex.
type Node struct {
	Index int
	X     numeric.Vec3
}

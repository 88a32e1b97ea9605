// Package types holds small, dependency-free value types shared across the
// engine: node-pair hashing for mesh/CV adjacency, control-volume state, and
// the structured error kinds used by every component.
package types

import (
	"fmt"
	"math"
)

// EdgeKey packs two node indices into a single comparable, order-independent
// key. An edge between nodes 4 and 0 hashes identically to one between 0 and
// 4. CVMesh does not use it; its face-vector maps are keyed by
// DirectedEdgeKey.
type EdgeKey uint64

// NewEdgeKey packs two non-negative node indices into an EdgeKey. Panics if
// either index does not fit in 32 bits, since the packing scheme reserves
// the upper 32 bits for the larger of the two indices.
func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	const limit = math.MaxUint32
	for _, v := range verts {
		if v < 0 || v > limit {
			panic(fmt.Errorf("unable to pack two node indices into a uint64, have %d and %d", verts[0], verts[1]))
		}
	}
	i1, i2 := verts[0], verts[1]
	if i1 > i2 {
		i1, i2 = i2, i1
	}
	return EdgeKey(uint64(i1) + uint64(i2)<<32)
}

// GetVertices recovers the two node indices in ascending order.
func (ek EdgeKey) GetVertices() (verts [2]int) {
	hi := ek >> 32
	verts[1] = int(hi)
	verts[0] = int(ek - hi<<32)
	return
}

// DirectedEdgeKey packs two node indices preserving direction (i->j is
// distinct from j->i), used when bookkeeping the donor/receiver orientation
// of a CV sub-edge flux.
type DirectedEdgeKey uint64

// NewDirectedEdgeKey packs a directed pair (from, to).
func NewDirectedEdgeKey(from, to int) DirectedEdgeKey {
	const limit = math.MaxUint32
	if from < 0 || from > limit || to < 0 || to > limit {
		panic(fmt.Errorf("unable to pack directed node pair into a uint64, have %d -> %d", from, to))
	}
	return DirectedEdgeKey(uint64(from) + uint64(to)<<32)
}

// GetDirected recovers the (from, to) pair.
func (dk DirectedEdgeKey) GetDirected() (from, to int) {
	hi := dk >> 32
	to = int(hi)
	from = int(dk - hi<<32)
	return
}

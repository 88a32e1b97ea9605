package meshio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RectMesh builds a structured rectangular mesh of nx x ny cells (each cut
// into two triangles) spanning [0,lx] x [0,ly] in the z=0 plane, the "Rect"
// fixture referenced by the channel-flow regression scenarios. Node sets
// "left_edge" and "right_edge" are the two x-normal boundaries; the single
// element set "panel" tags every triangle, matching a single-material
// domain.
func RectMesh(nx, ny int, lx, ly float64) MeshData {
	if nx < 1 || ny < 1 {
		panic("meshio: RectMesh requires nx >= 1 and ny >= 1")
	}
	nnx, nny := nx+1, ny+1
	coords := make([][3]float64, 0, nnx*nny)
	nodeIndex := func(i, j int) int { return j*nnx + i }
	for j := 0; j < nny; j++ {
		for i := 0; i < nnx; i++ {
			x := lx * float64(i) / float64(nx)
			y := ly * float64(j) / float64(ny)
			coords = append(coords, [3]float64{x, y, 0})
		}
	}
	var tris [][3]int
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			n00 := nodeIndex(i, j)
			n10 := nodeIndex(i+1, j)
			n01 := nodeIndex(i, j+1)
			n11 := nodeIndex(i+1, j+1)
			tris = append(tris, [3]int{n00, n10, n11})
			tris = append(tris, [3]int{n00, n11, n01})
		}
	}
	var leftEdge, rightEdge []int
	for j := 0; j < nny; j++ {
		leftEdge = append(leftEdge, nodeIndex(0, j))
		rightEdge = append(rightEdge, nodeIndex(nx, j))
	}
	panelSet := make([]int, len(tris))
	for i := range tris {
		panelSet[i] = i
	}
	return MeshData{
		NodeCoords: coords,
		TriNodes:   tris,
		NodeSets: map[string][]int{
			"left_edge":  leftEdge,
			"right_edge": rightEdge,
		},
		ElementSets: map[string][]int{
			"panel": panelSet,
		},
	}
}

// AnnulusMesh builds a structured polar-grid mesh of an annulus between
// rInner and rOuter, divided into nr radial rings and ntheta angular
// sectors, each quad cut into two triangles. Node sets "inner_edge" and
// "outer_edge" mark the two radial boundaries; the single element set
// "panel" tags every triangle. This is the "Annulus" fixture referenced by
// the anisotropic-radial and rotated-anisotropy regression scenarios.
func AnnulusMesh(nr, ntheta int, rInner, rOuter float64) MeshData {
	if nr < 1 || ntheta < 3 {
		panic("meshio: AnnulusMesh requires nr >= 1 and ntheta >= 3")
	}
	nnr := nr + 1
	coords := make([][3]float64, 0, nnr*ntheta)
	nodeIndex := func(ir, it int) int { return ir*ntheta + (it % ntheta) }
	for ir := 0; ir < nnr; ir++ {
		r := rInner + (rOuter-rInner)*float64(ir)/float64(nr)
		for it := 0; it < ntheta; it++ {
			theta := 2 * math.Pi * float64(it) / float64(ntheta)
			coords = append(coords, [3]float64{r * math.Cos(theta), r * math.Sin(theta), 0})
		}
	}
	var tris [][3]int
	for ir := 0; ir < nr; ir++ {
		for it := 0; it < ntheta; it++ {
			n00 := nodeIndex(ir, it)
			n10 := nodeIndex(ir+1, it)
			n01 := nodeIndex(ir, it+1)
			n11 := nodeIndex(ir+1, it+1)
			tris = append(tris, [3]int{n00, n10, n11})
			tris = append(tris, [3]int{n00, n11, n01})
		}
	}
	var innerEdge, outerEdge []int
	for it := 0; it < ntheta; it++ {
		innerEdge = append(innerEdge, nodeIndex(0, it))
		outerEdge = append(outerEdge, nodeIndex(nr, it))
	}
	panelSet := make([]int, len(tris))
	for i := range tris {
		panelSet[i] = i
	}
	return MeshData{
		NodeCoords: coords,
		TriNodes:   tris,
		NodeSets: map[string][]int{
			"inner_edge": innerEdge,
			"outer_edge": outerEdge,
		},
		ElementSets: map[string][]int{
			"panel": panelSet,
		},
	}
}

// FixtureReader implements Reader over the in-process Rect/Annulus
// fixtures, standing in for the out-of-scope MSH v4 ASCII reader (§9): a
// path of the form "rect:nx,ny,lx,ly" or "annulus:nr,ntheta,rInner,rOuter"
// selects a fixture instead of touching the filesystem, which lets the CLI
// exercise the full scripting sequence against a scenario file without a
// real mesh on disk.
type FixtureReader struct{}

// ReadMesh parses path per FixtureReader's mini-DSL and builds the
// corresponding fixture.
func (FixtureReader) ReadMesh(path string) (MeshData, error) {
	kind, rest, ok := strings.Cut(path, ":")
	if !ok {
		return MeshData{}, fmt.Errorf("meshio: mesh file %q is not a fixture reference (want \"rect:nx,ny,lx,ly\" or \"annulus:nr,ntheta,rInner,rOuter\")", path)
	}
	fields := strings.Split(rest, ",")
	switch kind {
	case "rect":
		nx, ny, lx, ly, err := parseFourFields(fields)
		if err != nil {
			return MeshData{}, fmt.Errorf("meshio: parsing rect fixture %q: %w", path, err)
		}
		return RectMesh(int(nx), int(ny), lx, ly), nil
	case "annulus":
		nr, ntheta, rIn, rOut, err := parseFourFields(fields)
		if err != nil {
			return MeshData{}, fmt.Errorf("meshio: parsing annulus fixture %q: %w", path, err)
		}
		return AnnulusMesh(int(nr), int(ntheta), rIn, rOut), nil
	default:
		return MeshData{}, fmt.Errorf("meshio: unknown fixture kind %q in %q", kind, path)
	}
}

func parseFourFields(fields []string) (a, b, c, d float64, err error) {
	if len(fields) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("want 4 comma-separated fields, got %d", len(fields))
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, perr := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("field %d (%q): %w", i, f, perr)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

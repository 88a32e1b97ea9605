// Package boundary implements BoundaryStore: named pressure inlets, their
// open/closed state, and the boundary-node sets they are bound to.
package boundary

// Inlet is a named pressure boundary condition bound to a set of mesh
// nodes. Close marks it as a natural (Neumann) wall; Open restores the
// last pressure value that was in effect before closing.
type Inlet struct {
	Name      string
	Pressure  float64
	Initial   float64
	Open      bool
	Nodes     []int
	lastOpenP float64
}

// changePressure applies mode "set" or "delta" to the inlet's pressure.
func (in *Inlet) changePressure(value float64, mode string) error {
	switch mode {
	case "set":
		in.Pressure = value
	case "delta":
		in.Pressure += value
	default:
		return errUnknownMode(mode)
	}
	if in.Open {
		in.lastOpenP = in.Pressure
	}
	return nil
}

// reset restores the inlet to its construction-time pressure and opens it,
// the §9 SUPPLEMENTED behaviour backing FillDriver.Reset.
func (in *Inlet) reset() {
	in.Pressure = in.Initial
	in.lastOpenP = in.Initial
	in.Open = true
}

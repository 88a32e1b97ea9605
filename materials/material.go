// Package materials implements MaterialStore: named porous materials and
// the rosette-driven rotation of their principal permeabilities into each
// assigned element's global-frame permeability tensor K_e.
package materials

// PorousMaterial is an immutable, named set of principal permeabilities,
// porosity and thickness. Units are caller-chosen and never converted
// (§9 open question on thickness units).
type PorousMaterial struct {
	Name string
	K1   float64
	K2   float64
	K3   float64
	Phi  float64
	H    float64
}

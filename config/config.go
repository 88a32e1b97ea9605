// Package config parses a scenario file describing the materials, inlets,
// sensors and simulation parameters of one run, generalizing the teacher's
// cmd/2D.go InputParameters pattern (a YAML-unmarshalled struct with a
// Parse method) to the engine's §6 scripting surface, and layers viper on
// top so a scenario file can be overridden by CLI flags or LIZZY_-prefixed
// environment variables.
package config

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/spf13/viper"

	"github.com/lizzy-go/lizzy/linsolve"
)

// MaterialSpec is one [materials] entry of a scenario file.
type MaterialSpec struct {
	Name string  `yaml:"name"`
	K1   float64 `yaml:"k1"`
	K2   float64 `yaml:"k2"`
	K3   float64 `yaml:"k3"`
	Phi  float64 `yaml:"phi"`
	H    float64 `yaml:"h"`
	// Domain is the element set this material is assigned to.
	Domain string `yaml:"domain"`
	// RosetteDirection, if non-nil, is the reference fibre direction in
	// the global frame; a nil direction leaves the domain at its default
	// identity rosette.
	RosetteDirection *[3]float64 `yaml:"rosetteDirection"`
}

// InletSpec is one [inlets] entry of a scenario file.
type InletSpec struct {
	Name     string  `yaml:"name"`
	Pressure float64 `yaml:"pressure"`
	Boundary string  `yaml:"boundary"`
}

// SensorSpec is one [sensors] entry of a scenario file.
type SensorSpec struct {
	Name string     `yaml:"name"`
	Pos  [3]float64 `yaml:"pos"`
}

// ScenarioParameters mirrors the fixed §6 AssignSimulationParameters call.
type ScenarioParameters struct {
	Viscosity            float64 `yaml:"viscosity"`
	WriteOutDeltaTime    float64 `yaml:"writeOutDeltaTime"`
	EpsFill              float64 `yaml:"epsFill"`
	EndOnSensorTriggered bool    `yaml:"endOnSensorTriggered"`
}

// ScenarioConfig is the full on-disk shape of a scenario file.
type ScenarioConfig struct {
	Title      string             `yaml:"title"`
	MeshFile   string             `yaml:"meshFile"`
	OutputPath string             `yaml:"outputPath"`
	Backend    string             `yaml:"backend"`
	Parameters ScenarioParameters `yaml:"parameters"`
	Materials  []MaterialSpec     `yaml:"materials"`
	Inlets     []InletSpec        `yaml:"inlets"`
	Sensors    []SensorSpec       `yaml:"sensors"`
}

// Parse unmarshals raw YAML bytes into a ScenarioConfig, the same
// yaml.Unmarshal-via-ghodss entry point the teacher's InputParameters.Parse
// used for its own, much smaller, configuration struct.
func (sc *ScenarioConfig) Parse(data []byte) error {
	return yaml.Unmarshal(data, sc)
}

// Print dumps the scenario to stdout in the teacher's InputParameters.Print
// style: one line per top-level field, maps walked in sorted key order for
// deterministic output.
func (sc *ScenarioConfig) Print() {
	fmt.Printf("%q\t\t= Title\n", sc.Title)
	fmt.Printf("%q\t\t= MeshFile\n", sc.MeshFile)
	fmt.Printf("%q\t\t= OutputPath\n", sc.OutputPath)
	fmt.Printf("%q\t\t= Backend\n", sc.Backend)
	fmt.Printf("%8.5g\t\t= Viscosity\n", sc.Parameters.Viscosity)
	fmt.Printf("%8.5g\t\t= WriteOutDeltaTime\n", sc.Parameters.WriteOutDeltaTime)
	fmt.Printf("%8.5g\t\t= EpsFill\n", sc.Parameters.EpsFill)
	fmt.Printf("%v\t\t= EndOnSensorTriggered\n", sc.Parameters.EndOnSensorTriggered)

	names := make([]string, len(sc.Materials))
	for i, m := range sc.Materials {
		names[i] = m.Name
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("material[%s] assigned\n", n)
	}
}

// ResolveBackend maps the configured backend name to a linsolve.Backend,
// defaulting to Dense when unset.
func (sc *ScenarioConfig) ResolveBackend() (linsolve.Backend, error) {
	switch sc.Backend {
	case "", "dense":
		return linsolve.Dense, nil
	case "sparse":
		return linsolve.SparseDirect, nil
	case "iterative":
		return linsolve.Iterative, nil
	default:
		return 0, fmt.Errorf("config: unknown backend %q (want dense, sparse or iterative)", sc.Backend)
	}
}

// Load reads a scenario file from path, then merges in any CLI flags bound
// to v and any LIZZY_-prefixed environment variables, the way the teacher's
// go.mod-declared but previously unwired viper dependency is meant to be
// used on top of a plain YAML read.
func Load(path string, v *viper.Viper) (*ScenarioConfig, error) {
	v.SetConfigFile(path)
	v.SetEnvPrefix("LIZZY")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	sc := &ScenarioConfig{}
	if err := v.Unmarshal(sc); err != nil {
		return nil, fmt.Errorf("config: unmarshalling %q: %w", path, err)
	}
	return sc, nil
}

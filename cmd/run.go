/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lizzy-go/lizzy/config"
	"github.com/lizzy-go/lizzy/filldriver"
	"github.com/lizzy-go/lizzy/materials"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/model"
	"github.com/lizzy-go/lizzy/numeric"
)

// stdoutResultsWriter stands in for the out-of-scope XDMF+HDF5 writer: it
// reports how many snapshots a run produced instead of persisting them.
type stdoutResultsWriter struct{}

func (stdoutResultsWriter) WriteSnapshots(caseName string, sol filldriver.Solution) error {
	fmt.Printf("case %q: %d snapshots, run-id %s\n", caseName, len(sol.Snapshots), sol.RunID)
	return nil
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a scenario file through the full fill simulation",
	Long:  `Run a scenario file through the full fill simulation, driving the engine's scripting sequence from mesh load to save_results.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScenario(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScenario(path string) error {
	sc, err := config.Load(path, viper.New())
	if err != nil {
		return err
	}
	sc.Print()

	backend, err := sc.ResolveBackend()
	if err != nil {
		return err
	}

	m := model.NewLizzyModel()
	if err := m.ReadMesh(meshio.FixtureReader{}, sc.MeshFile); err != nil {
		return err
	}
	if err := m.AssignSimulationParameters(sc.Parameters.Viscosity, sc.Parameters.WriteOutDeltaTime, sc.Parameters.EpsFill, sc.Parameters.EndOnSensorTriggered); err != nil {
		return err
	}

	for _, ms := range sc.Materials {
		name, err := m.CreateMaterial(ms.Name, ms.K1, ms.K2, ms.K3, ms.Phi, ms.H)
		if err != nil {
			return err
		}
		rosette := materials.IdentityRosette
		if ms.RosetteDirection != nil {
			d := *ms.RosetteDirection
			rosette = materials.Direction(numeric.Vec3{d[0], d[1], d[2]})
		}
		if err := m.AssignMaterial(name, ms.Domain, rosette); err != nil {
			return err
		}
	}
	for _, is := range sc.Inlets {
		name, err := m.CreateInlet(is.Name, is.Pressure)
		if err != nil {
			return err
		}
		if err := m.AssignInlet(name, is.Boundary); err != nil {
			return err
		}
	}
	for _, ss := range sc.Sensors {
		if _, err := m.CreateSensor(ss.Name, numeric.Vec3{ss.Pos[0], ss.Pos[1], ss.Pos[2]}); err != nil {
			return err
		}
	}

	if err := m.InitialiseSolver(backend); err != nil {
		return err
	}
	if err := m.Solve(); err != nil {
		return err
	}
	if err := m.SaveResults(stdoutResultsWriter{}, sc.Title); err != nil {
		return err
	}
	fmt.Printf("\nrun %q complete; results at %q\n", sc.Title, sc.OutputPath)
	return nil
}

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
	"io"
	"math"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/lizzy-go/lizzy/assembly"
	"github.com/lizzy-go/lizzy/boundary"
	"github.com/lizzy-go/lizzy/cvmesh"
	"github.com/lizzy-go/lizzy/geometry"
	"github.com/lizzy-go/lizzy/linsolve"
	"github.com/lizzy-go/lizzy/materials"
	"github.com/lizzy-go/lizzy/meshio"
	"github.com/lizzy-go/lizzy/sensors"
)

var cpuProfile bool

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the fixed regression fixture across all three solver backends",
	Long:  `Run the fixed channel-flow regression fixture against every linear-solver backend and report pairwise pressure residuals.`,
	Run: func(cmd *cobra.Command, args []string) {
		if cpuProfile {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		if err := runBench(os.Stdout); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().BoolVar(&cpuProfile, "cpuprofile", false, "write a CPU profile for this run")
}

// runBench solves one assembled system from the fixed channel fixture with
// each backend in turn and reports the pairwise pressure residual against
// the Dense backend, the cross-backend-agreement property of §8.
func runBench(w io.Writer) error {
	data := meshio.RectMesh(6, 4, 1.0, 0.5)
	mg, err := geometry.NewMeshGeometry(data)
	if err != nil {
		return err
	}
	ms := materials.NewMaterialStore(mg)
	if _, err := ms.CreateMaterial("iso", 1e-10, 1e-10, 1e-10, 0.5, 1.0); err != nil {
		return err
	}
	if err := ms.AssignMaterial("iso", "panel", materials.IdentityRosette); err != nil {
		return err
	}

	cv, err := cvmesh.NewCVMesh(mg)
	if err != nil {
		return err
	}

	bs := boundary.NewBoundaryStore(mg)
	inletName, err := bs.CreateInlet("inlet", 1e5)
	if err != nil {
		return err
	}
	if err := bs.AssignInlet(inletName, "left_edge"); err != nil {
		return err
	}

	_ = sensors.NewSensorSet(mg)

	la := assembly.NewLinearAssembler(mg, cv)
	fill := make([]float64, mg.NumNodes())
	K, b, err := la.Assemble(0.1, fill, 0.02, bs.DirichletNodes())
	if err != nil {
		return err
	}

	backends := []linsolve.Backend{linsolve.Dense, linsolve.SparseDirect, linsolve.Iterative}
	results := make([][]float64, len(backends))
	for i, backend := range backends {
		solver := linsolve.NewLinearSolver(backend)
		p, err := solver.Solve(K, b)
		if err != nil {
			return fmt.Errorf("bench: backend %s: %w", backend, err)
		}
		n := p.Len()
		results[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			results[i][j] = p.AtVec(j)
		}
	}

	for i := 1; i < len(backends); i++ {
		max := 0.0
		for j := range results[0] {
			d := math.Abs(results[i][j] - results[0][j])
			if d > max {
				max = d
			}
		}
		fmt.Fprintf(w, "%s vs %s: max pressure residual %.3e\n", backends[i], backends[0], max)
	}
	return nil
}

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

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information on the installed lizzy solver",
	Long:  `Display information on the installed lizzy solver`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Lizzy Solver - v0.1.0")
		fmt.Println("Resin-infusion fill simulator")
		fmt.Println("Backends: dense, sparse, iterative")
		fmt.Println("For more information, visit the project repository")
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

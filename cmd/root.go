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

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command, matching the teacher's cmd/1D.go and
// cmd/2D.go convention of hanging subcommands off a package-level
// *cobra.Command via init().
var rootCmd = &cobra.Command{
	Use:   "lizzy",
	Short: "Resin-infusion fill simulator",
	Long:  `lizzy solves Darcy's-law resin fill over a triangulated composite panel, driven by a scenario file.`,
}

// Execute runs the root command, the single entry point main.go delegates
// to.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "scenario config file (default is $HOME/.lizzy/config.yaml)")
}

// initConfig resolves the default scenario-config search path under the
// user's home directory, the home the teacher's go.mod-declared but
// previously unwired go-homedir dependency never got.
func initConfig() {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return
	}
	home, err := homedir.Dir()
	if err != nil {
		return
	}
	v.AddConfigPath(home + "/.lizzy")
	v.SetConfigName("config")
}

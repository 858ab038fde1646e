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
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/symfc/InputParameters"
	"github.com/notargets/symfc/fcbasis"
	"github.com/notargets/symfc/spgreps"
)

type ModelBasis struct {
	InputFile  string
	OutputFile string
	NP         int
	Tol        float64 // Overrides the input file when positive
	Verbose    int
	Profile    bool
}

// BasisOutput is written with -o. Each entry of Basis is one force constant
// array of shape (N, N, 3, 3), flattened row-major.
type BasisOutput struct {
	Title     string      `json:"Title"`
	NAtom     int         `json:"NAtom"`
	BasisSize int         `json:"BasisSize"`
	Basis     [][]float64 `json:"Basis"`
}

// BasisCmd represents the basis command
var BasisCmd = &cobra.Command{
	Use:   "basis",
	Short: "Compute the symmetry adapted force constant basis sets of a supercell",
	Long: `Compute the symmetry adapted force constant basis sets of a supercell.
The structure and its space group operations are read from a YAML input file.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		mb := &ModelBasis{
			InputFile:  viper.GetString("inputFile"),
			OutputFile: viper.GetString("output"),
			NP:         viper.GetInt("np"),
			Tol:        viper.GetFloat64("tol"),
			Verbose:    viper.GetInt("verbose"),
			Profile:    viper.GetBool("profile"),
		}
		if mb.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		var ip *InputParameters.InputParameters
		if ip, err = processInput(mb); err != nil {
			return
		}
		ip.Print()
		_, err = RunBasis(mb, ip)
		return
	},
}

func processInput(mb *ModelBasis) (ip *InputParameters.InputParameters, err error) {
	if len(mb.InputFile) == 0 {
		exampleFile := `
########################################
Title: "NaCl conventional cell"
Lattice: [[5.69, 0, 0], [0, 5.69, 0], [0, 0, 5.69]]
Positions: [[0, 0, 0], [0, 0.5, 0.5], [0.5, 0, 0.5], [0.5, 0.5, 0],
            [0.5, 0.5, 0.5], [0.5, 0, 0], [0, 0.5, 0], [0, 0, 0.5]]
Numbers: [11, 11, 11, 11, 17, 17, 17, 17]
PointGroup: m-3m
Translations: [[0, 0, 0], [0, 0.5, 0.5], [0.5, 0, 0.5], [0.5, 0.5, 0]]
Tolerance: 1.e-8
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputFile)")
		return
	}
	var data []byte
	if data, err = os.ReadFile(mb.InputFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		ip = nil
	}
	return
}

func init() {
	rootCmd.AddCommand(BasisCmd)
	BasisCmd.Flags().StringP("inputFile", "I", "", "YAML file with the supercell and its space group operations")
	BasisCmd.Flags().StringP("output", "o", "", "write the basis sets to this YAML file")
	BasisCmd.Flags().Int("np", 0, "number of parallel workers, 0 uses every CPU")
	BasisCmd.Flags().Float64("tol", 0, "eigenvalue and singular value tolerance, overrides the input file")
	BasisCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	for _, name := range []string{"inputFile", "output", "np", "tol", "profile"} {
		if err := viper.BindPFlag(name, BasisCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func RunBasis(mb *ModelBasis, ip *InputParameters.InputParameters) (bs *fcbasis.FCBasisSets, err error) {
	var (
		ops []spgreps.Operation
		sr  *spgreps.SpgReps
		t0  = time.Now()
		tol = ip.Tolerance
	)
	if mb.Tol > 0 {
		tol = mb.Tol
	}
	if ops, err = ip.SpaceGroupOperations(); err != nil {
		return
	}
	if sr, err = spgreps.NewSpgReps(ip.Lattice, ip.Positions, ip.Numbers, ops, ip.SymPrec, log.Logger); err != nil {
		return
	}
	if bs, err = fcbasis.NewFCBasisSets(sr.Representations,
		fcbasis.WithTol(tol),
		fcbasis.WithNP(mb.NP),
		fcbasis.WithLogLevel(mb.Verbose),
		fcbasis.WithLogger(log.Logger),
	); err != nil {
		return
	}
	fmt.Printf("[%d]\t\t\t\t= Space group operations\n", len(ops))
	fmt.Printf("[%d]\t\t\t\t= Basis size\n", bs.Len())
	fmt.Printf("%v\t\t= Elapsed\n", time.Since(t0).Round(time.Millisecond))
	if len(mb.OutputFile) != 0 {
		err = WriteBasis(mb.OutputFile, ip.Title, bs)
	}
	return
}

func WriteBasis(fileName, title string, bs *fcbasis.FCBasisSets) (err error) {
	out := BasisOutput{
		Title:     title,
		NAtom:     bs.NAtom(),
		BasisSize: bs.Len(),
		Basis:     make([][]float64, 0, bs.Len()),
	}
	for _, f := range bs.BasisSets() {
		out.Basis = append(out.Basis, f.Data)
	}
	var data []byte
	if data, err = yaml.Marshal(out); err != nil {
		return
	}
	return os.WriteFile(fileName, data, 0644)
}

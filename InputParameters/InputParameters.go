package InputParameters

import (
	"errors"
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/symfc/spgreps"
)

var ErrInput = errors.New("invalid input parameters")

type OperationInput struct {
	Rotation    [3][3]int  `json:"Rotation"`
	Translation [3]float64 `json:"Translation"`
}

// Parameters obtained from the YAML input file. ghodss/yaml routes through
// encoding/json, so the json tags name the YAML keys.
type InputParameters struct {
	Title        string           `json:"Title"`
	Lattice      [3][3]float64    `json:"Lattice"`   // Rows are the supercell basis vectors
	Positions    [][3]float64     `json:"Positions"` // Fractional coordinates
	Numbers      []int            `json:"Numbers"`
	PointGroup   string           `json:"PointGroup,omitempty"`   // Combined with every entry of Translations
	Translations [][3]float64     `json:"Translations,omitempty"` // Fractional, supercell coordinates
	Operations   []OperationInput `json:"Operations,omitempty"`   // Used as given
	Tolerance    float64          `json:"Tolerance,omitempty"`
	SymPrec      float64          `json:"SymPrec,omitempty"`
}

const (
	DefaultTolerance = 1.e-8
	DefaultSymPrec   = 1.e-5
)

func (ip *InputParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.Tolerance == 0 {
		ip.Tolerance = DefaultTolerance
	}
	if ip.SymPrec == 0 {
		ip.SymPrec = DefaultSymPrec
	}
	return ip.Validate()
}

func (ip *InputParameters) Validate() error {
	if len(ip.Positions) == 0 {
		return fmt.Errorf("%w: no Positions", ErrInput)
	}
	if len(ip.Numbers) != len(ip.Positions) {
		return fmt.Errorf("%w: %d Positions but %d Numbers", ErrInput, len(ip.Positions), len(ip.Numbers))
	}
	if len(ip.PointGroup) == 0 && len(ip.Operations) == 0 {
		return fmt.Errorf("%w: supply a PointGroup, a list of Operations, or both", ErrInput)
	}
	if ip.Tolerance < 0 || ip.SymPrec < 0 {
		return fmt.Errorf("%w: tolerances must be positive", ErrInput)
	}
	return nil
}

// SpaceGroupOperations expands PointGroup with Translations and appends the
// explicit Operations.
func (ip *InputParameters) SpaceGroupOperations() (ops []spgreps.Operation, err error) {
	if len(ip.PointGroup) != 0 {
		var rotations [][3][3]int
		if rotations, err = spgreps.PointGroup(ip.PointGroup); err != nil {
			return
		}
		ops = spgreps.Expand(rotations, ip.Translations)
	}
	for _, op := range ip.Operations {
		ops = append(ops, spgreps.Operation{Rotation: op.Rotation, Translation: op.Translation})
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Number of atoms\n", len(ip.Positions))
	for i := 0; i < 3; i++ {
		fmt.Printf("%8.5f %8.5f %8.5f\t= Lattice[%d]\n", ip.Lattice[i][0], ip.Lattice[i][1], ip.Lattice[i][2], i)
	}
	if len(ip.PointGroup) != 0 {
		fmt.Printf("[%s]\t\t\t= Point Group\n", ip.PointGroup)
		fmt.Printf("[%d]\t\t\t\t= Translations\n", max(1, len(ip.Translations)))
	}
	fmt.Printf("[%d]\t\t\t\t= Explicit Operations\n", len(ip.Operations))
	fmt.Printf("%8.2e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("%8.2e\t\t= SymPrec\n", ip.SymPrec)
}

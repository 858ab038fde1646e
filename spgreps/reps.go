package spgreps

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/symfc/utils"
)

var ErrOperation = errors.New("spgreps: operation does not map the structure onto itself")

const cartesianZeroTol = 1.e-10

// SpgReps holds the matrix representations of a list of space group operations
// on the 3N atomic displacements of a supercell. Operations are supplied, not
// searched for.
type SpgReps struct {
	Lattice         [3][3]float64 // Rows are the supercell basis vectors
	Positions       [][3]float64  // Fractional coordinates
	Numbers         []int         // Species
	Operations      []Operation
	Permutations    [][]int // Permutations[g][i] is the image atom of atom i
	Representations []utils.CSR
}

// NewSpgReps maps every atom through every operation and builds
// R_g[3j+a][3i+b] = Rcart[a][b] where atom j is the image of atom i. symprec is
// the fractional-coordinate tolerance used to match image positions.
func NewSpgReps(lattice [3][3]float64, positions [][3]float64, numbers []int, ops []Operation,
	symprec float64, logger zerolog.Logger) (sr *SpgReps, err error) {
	var (
		nAtom = len(positions)
	)
	if nAtom == 0 {
		err = fmt.Errorf("%w: no atoms", ErrOperation)
		return
	}
	if len(numbers) != nAtom {
		err = fmt.Errorf("%w: %d positions but %d species numbers", ErrOperation, nAtom, len(numbers))
		return
	}
	if len(ops) == 0 {
		err = fmt.Errorf("%w: no operations", ErrOperation)
		return
	}
	sr = &SpgReps{
		Lattice:         lattice,
		Positions:       positions,
		Numbers:         numbers,
		Operations:      ops,
		Permutations:    make([][]int, len(ops)),
		Representations: make([]utils.CSR, len(ops)),
	}
	var (
		A    = mat.NewDense(3, 3, nil) // Columns are the basis vectors
		Ainv mat.Dense
	)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			A.Set(i, j, lattice[j][i])
		}
	}
	if err = Ainv.Inverse(A); err != nil {
		err = fmt.Errorf("%w: singular lattice: %v", ErrOperation, err)
		sr = nil
		return
	}
	for g, op := range ops {
		var perm []int
		if perm, err = sr.atomPermutation(op, symprec); err != nil {
			err = fmt.Errorf("operation %d: %w", g, err)
			sr = nil
			return
		}
		sr.Permutations[g] = perm
		sr.Representations[g] = representation(perm, cartesianRotation(op.Rotation, A, &Ainv))
	}
	logger.Debug().Int("natom", nAtom).Int("operations", len(ops)).Msg("space group representations")
	return
}

func (sr *SpgReps) NAtom() int { return len(sr.Positions) }

func (sr *SpgReps) atomPermutation(op Operation, symprec float64) (perm []int, err error) {
	var (
		nAtom = len(sr.Positions)
		taken = make([]bool, nAtom)
	)
	perm = make([]int, nAtom)
	for i, x := range sr.Positions {
		var xp [3]float64
		for r := 0; r < 3; r++ {
			xp[r] = op.Translation[r]
			for c := 0; c < 3; c++ {
				xp[r] += float64(op.Rotation[r][c]) * x[c]
			}
		}
		found := -1
		for j, y := range sr.Positions {
			if sr.Numbers[j] != sr.Numbers[i] {
				continue
			}
			if fractionalDistance(xp, y) < symprec {
				found = j
				break
			}
		}
		if found < 0 {
			err = fmt.Errorf("%w: no image for atom %d at %v", ErrOperation, i, xp)
			return
		}
		if taken[found] {
			err = fmt.Errorf("%w: atom %d is the image of two atoms", ErrOperation, found)
			return
		}
		taken[found] = true
		perm[i] = found
	}
	return
}

func fractionalDistance(x, y [3]float64) (d float64) {
	for r := 0; r < 3; r++ {
		diff := x[r] - y[r]
		diff -= math.Round(diff)
		d = math.Max(d, math.Abs(diff))
	}
	return
}

// cartesianRotation returns A W A⁻¹.
func cartesianRotation(W [3][3]int, A, Ainv *mat.Dense) (R *mat.Dense) {
	var (
		Wd = mat.NewDense(3, 3, nil)
	)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			Wd.Set(i, j, float64(W[i][j]))
		}
	}
	R = mat.NewDense(3, 3, nil)
	R.Product(A, Wd, Ainv)
	return
}

func representation(perm []int, Rcart *mat.Dense) (rep utils.CSR) {
	var (
		n3 = 3 * len(perm)
		tr = utils.NewTriplets(n3, n3)
	)
	for i, j := range perm {
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				if v := Rcart.At(a, b); math.Abs(v) > cartesianZeroTol {
					tr.Add(3*j+a, 3*i+b, v)
				}
			}
		}
	}
	rep = tr.ToCSR(0)
	rep.SetName("R_g")
	return
}

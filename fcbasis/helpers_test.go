package fcbasis

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/symfc/spgreps"
	"github.com/notargets/symfc/utils"
)

func identityReps(nAtom int) []utils.CSR {
	tr := utils.NewTriplets(3*nAtom, 3*nAtom)
	for p := 0; p < 3*nAtom; p++ {
		tr.Add(p, p, 1)
	}
	return []utils.CSR{tr.ToCSR(0)}
}

// permutationRep moves the displacement of atom i onto atom perm[i].
func permutationRep(perm []int) utils.CSR {
	n3 := 3 * len(perm)
	tr := utils.NewTriplets(n3, n3)
	for i, j := range perm {
		for a := 0; a < 3; a++ {
			tr.Add(3*j+a, 3*i+a, 1)
		}
	}
	return tr.ToCSR(0)
}

// chainReps builds a linear chain of nAtom equal atoms along x with every
// chain translation, plus inversion through the origin when requested.
func chainReps(t *testing.T, nAtom int, inversion bool) []utils.CSR {
	var (
		lattice      = [3][3]float64{{float64(nAtom), 0, 0}, {0, 10, 0}, {0, 0, 10}}
		positions    = make([][3]float64, nAtom)
		numbers      = make([]int, nAtom)
		translations = make([][3]float64, nAtom)
		rotations    = [][3][3]int{spgreps.Identity().Rotation}
	)
	for i := 0; i < nAtom; i++ {
		positions[i] = [3]float64{float64(i) / float64(nAtom), 0, 0}
		numbers[i] = 1
		translations[i] = [3]float64{float64(i) / float64(nAtom), 0, 0}
	}
	if inversion {
		rotations = append(rotations, [3][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}})
	}
	sr, err := spgreps.NewSpgReps(lattice, positions, numbers, spgreps.Expand(rotations, translations),
		1.e-5, zerolog.Nop())
	require.NoError(t, err)
	return sr.Representations
}

var fccCentering = [][3]float64{{0, 0, 0}, {0, .5, .5}, {.5, 0, .5}, {.5, .5, 0}}

// naclReps builds the rock salt structure in a cubic supercell made of
// dim×dim×dim conventional cells, with the full Fm-3m space group.
func naclReps(t *testing.T, dim int) (reps []utils.CSR) {
	var (
		a         = 5.69 * float64(dim)
		lattice   = [3][3]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}}
		naSites   = fccCentering
		clSites   = [][3]float64{{.5, .5, .5}, {.5, 0, 0}, {0, .5, 0}, {0, 0, .5}}
		positions [][3]float64
		numbers   []int
	)
	addCells := func(sites [][3]float64, species int) {
		for _, s := range sites {
			for i := 0; i < dim; i++ {
				for j := 0; j < dim; j++ {
					for k := 0; k < dim; k++ {
						positions = append(positions, [3]float64{
							(s[0] + float64(i)) / float64(dim),
							(s[1] + float64(j)) / float64(dim),
							(s[2] + float64(k)) / float64(dim),
						})
						numbers = append(numbers, species)
					}
				}
			}
		}
	}
	addCells(naSites, 11)
	addCells(clSites, 17)
	rotations, err := spgreps.PointGroup("m-3m")
	require.NoError(t, err)
	ops := spgreps.Expand(rotations, spgreps.LatticeTranslations([3]int{dim, dim, dim}, fccCentering))
	sr, err := spgreps.NewSpgReps(lattice, positions, numbers, ops, 1.e-5, zerolog.Nop())
	require.NoError(t, err)
	return sr.Representations
}

// denseNullity computes the dimension of the force constant space in the full
// 9N² coordinates, independently of the compressed pipeline: the null space
// of [K - I; I - Pswap; Sᵀ], where K averages R⊗R over reps.
func denseNullity(reps []utils.CSR, nAtom int) int {
	var (
		n     = 9 * nAtom * nAtom
		n3    = 3 * nAtom
		G     = float64(len(reps))
		ser   = func(p, q int) int { return ToSerial(p/3, p%3, q/3, q%3, nAtom) }
		A     = mat.NewDense(2*n+9*nAtom, n, nil)
		elems []repElement
	)
	for _, R := range reps {
		elems = elems[:0]
		R.DoNonZero(func(i, j int, v float64) {
			elems = append(elems, repElement{i, j, v})
		})
		for _, e1 := range elems {
			for _, e2 := range elems {
				r, c := ser(e1.row, e2.row), ser(e1.col, e2.col)
				A.Set(r, c, A.At(r, c)+e1.val*e2.val/G)
			}
		}
	}
	for k := 0; k < n; k++ {
		A.Set(k, k, A.At(k, k)-1)
	}
	for p := 0; p < n3; p++ {
		for q := 0; q < n3; q++ {
			row := n + ser(p, q)
			A.Set(row, ser(p, q), A.At(row, ser(p, q))+1)
			A.Set(row, ser(q, p), A.At(row, ser(q, p))-1)
		}
	}
	for i := 0; i < nAtom; i++ {
		for j := 0; j < nAtom; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					A.Set(2*n+9*i+3*a+b, ToSerial(i, a, j, b, nAtom), 1)
				}
			}
		}
	}
	var sv mat.SVD
	if !sv.Factorize(A, mat.SVDNone) {
		panic("dense svd failed")
	}
	s := sv.Values(nil)
	rank := 0
	for _, val := range s {
		if val > 1.e-8*s[0] {
			rank++
		}
	}
	return n - rank
}

func requireOrthonormalColumns(t *testing.T, A *mat.Dense, tol float64) {
	_, nc := A.Dims()
	G := utils.MulTransA(A, A)
	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			expected := 0.
			if i == j {
				expected = 1
			}
			require.InDelta(t, expected, G.At(i, j), tol, "gram element (%d, %d)", i, j)
		}
	}
}

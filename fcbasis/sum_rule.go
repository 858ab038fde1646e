package fcbasis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/symfc/utils"
)

// SumRule is the translational sum-rule projector T = I - SSᵀ/N on the full
// (N, N, 3, 3) space. Column 9i+3a+b of S gathers the elements [i][j][a][b]
// for every j, so Sᵀv holds the sums over the second atom index.
type SumRule struct {
	NAtom int
	S, St utils.CSR
}

func SumRuleProjector(nAtom int) (T SumRule, err error) {
	if nAtom < 1 {
		err = fmt.Errorf("%w: number of atoms must be positive, got %d", ErrPrecondition, nAtom)
		return
	}
	var (
		sizeSq = 9 * nAtom * nAtom
		tr     = utils.NewTriplets(sizeSq, 9*nAtom)
	)
	for i := 0; i < nAtom; i++ {
		for j := 0; j < nAtom; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					tr.Add(ToSerial(i, a, j, b, nAtom), 9*i+3*a+b, 1)
				}
			}
		}
	}
	T = SumRule{NAtom: nAtom, S: tr.ToCSR(0)}
	T.S.SetName("S")
	T.St = T.S.Transpose()
	return
}

// Apply returns T U without forming T.
func (T SumRule) Apply(U *mat.Dense, NP int) (R *mat.Dense) {
	if U.IsEmpty() {
		return &mat.Dense{}
	}
	var (
		mean = T.S.MulDense(T.St.MulDense(U, NP), NP)
	)
	mean.Scale(1./float64(T.NAtom), mean)
	R = &mat.Dense{}
	R.Sub(U, mean)
	return
}

// IntersectSumRule expands the symmetry eigenvectors with C, applies the sum
// rule projector once, contracts with Cᵀ and keeps the left singular vectors
// whose singular values are 1 within tol. Those span the vectors of the
// symmetry eigenspace already satisfying the sum rule. T does not commute with
// CCᵀ, so the projection is not iterated.
func IntersectSumRule(vecs *mat.Dense, C, Ct utils.CSR, T SumRule, tol float64, NP int) (
	basis *mat.Dense, s []float64, err error) {
	if vecs.IsEmpty() {
		basis = &mat.Dense{}
		return
	}
	var (
		U0 = C.MulDense(vecs, NP)
		U1 = T.Apply(U0, NP)
		U2 = Ct.MulDense(U1, NP)
		sv mat.SVD
		U  mat.Dense
	)
	if ok := sv.Factorize(U2, mat.SVDThin); !ok {
		err = fmt.Errorf("%w: singular value decomposition of the sum-rule projected basis failed",
			ErrNoConvergence)
		return
	}
	s = sv.Values(nil)
	sv.UTo(&U)
	var keep []int
	for k, val := range s {
		if math.Abs(val) > 1-tol {
			keep = append(keep, k)
		}
	}
	basis = utils.MatSubCol(&U, keep)
	return
}

package fcbasis

import (
	"fmt"
	"math"

	"github.com/notargets/symfc/utils"
)

// NAtomFromReps infers N from the (3N, 3N) symmetry representations and checks
// that every representation has that shape.
func NAtomFromReps(reps []utils.CSR) (nAtom int, err error) {
	if len(reps) == 0 {
		err = fmt.Errorf("%w: at least one symmetry representation is required", ErrPrecondition)
		return
	}
	nr, nc := reps[0].Dims()
	if nr != nc || nr == 0 || nr%3 != 0 {
		err = fmt.Errorf("%w: representation shape (%d, %d) is not (3N, 3N)", ErrPrecondition, nr, nc)
		return
	}
	for g, rep := range reps {
		if r, c := rep.Dims(); r != nr || c != nc {
			err = fmt.Errorf("%w: representation %d has shape (%d, %d), expected (%d, %d)",
				ErrPrecondition, g, r, c, nr, nc)
			return
		}
	}
	nAtom = nr / 3
	return
}

type repElement struct {
	row, col int
	val      float64
}

// SpgProjector assembles P = (1/G) Σ_g Cᵀ (R_g ⊗ R_g) C directly in compressed
// coordinates. Each pair of stored elements (p, p', v), (q, q', w) of a
// representation contributes v*w to element (PairIndex(p,q), PairIndex(p',q')),
// scaled by √2/2 for every off-diagonal pair. The representations are split
// over NP workers whose partial sums are merged in worker order.
func SpgProjector(reps []utils.CSR, nAtom, NP int) (P utils.CSR, err error) {
	var nAtomReps int
	if nAtomReps, err = NAtomFromReps(reps); err != nil {
		return
	}
	if nAtomReps != nAtom {
		err = fmt.Errorf("%w: representations act on %d atoms, expected %d", ErrPrecondition, nAtomReps, nAtom)
		return
	}
	var (
		n3        = 3 * nAtom
		size      = CompressedSize(nAtom)
		G         = len(reps)
		invSqrt2  = math.Sqrt(2) / 2
		scale     = 1. / float64(G)
		pm        = utils.NewPartitionMap(max(1, min(NP, G)), G)
		workerSum = make([]*utils.Triplets, pm.ParallelDegree)
	)
	pm.RunPartitioned(func(bn, gMin, gMax int) {
		tr := utils.NewTriplets(size, size)
		elems := make([]repElement, 0, n3)
		for g := gMin; g < gMax; g++ {
			elems = elems[:0]
			reps[g].DoNonZero(func(i, j int, v float64) {
				elems = append(elems, repElement{i, j, v})
			})
			for _, e1 := range elems {
				for _, e2 := range elems {
					val := e1.val * e2.val * scale
					if e1.row != e2.row {
						val *= invSqrt2
					}
					if e1.col != e2.col {
						val *= invSqrt2
					}
					tr.Add(PairIndex(e1.row, e2.row, n3), PairIndex(e1.col, e2.col, n3), val)
				}
			}
		}
		workerSum[bn] = tr
	})
	total := utils.NewTriplets(size, size)
	for _, tr := range workerSum {
		if tr != nil {
			total.Merge(tr)
		}
	}
	P = total.ToCSR(0)
	P.SetName("P_spg")
	return
}

// TraceRank is the rank of a projector, round(trace).
func TraceRank(P utils.CSR) int {
	return int(math.Round(P.Trace()))
}

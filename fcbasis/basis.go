package fcbasis

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/symfc/utils"
)

// FCTensor is a force-constant array of shape (N, N, 3, 3) stored row-major,
// element [i][j][a][b] at ToSerial(i, a, j, b, N).
type FCTensor struct {
	NAtom int
	Data  []float64
}

func (f FCTensor) At(i, j, a, b int) float64 {
	return f.Data[ToSerial(i, a, j, b, f.NAtom)]
}

// Block returns the 3×3 Cartesian block of the atom pair (i, j).
func (f FCTensor) Block(i, j int) (B *mat.Dense) {
	off := ToSerial(i, 0, j, 0, f.NAtom)
	B = mat.NewDense(3, 3, nil)
	copy(B.RawMatrix().Data, f.Data[off:off+9])
	return
}

// MatrixForm returns the 3N×3N matrix M[3i+a][3j+b] = F[i][j][a][b].
func (f FCTensor) MatrixForm() (M *mat.Dense) {
	n3 := 3 * f.NAtom
	M = mat.NewDense(n3, n3, nil)
	for i := 0; i < f.NAtom; i++ {
		for j := 0; j < f.NAtom; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					M.Set(3*i+a, 3*j+b, f.At(i, j, a, b))
				}
			}
		}
	}
	return
}

// FCBasisSets is the orthonormal basis of force-constant arrays compatible with
// pair permutation symmetry, the supplied space group representations and the
// translational sum rule.
//
// The steps are:
//  1. Build the compression matrix C from pair permutation symmetry.
//  2. Assemble the compressed space group projector CᵀPC and take its unit
//     eigenvectors.
//  3. Expand the eigenvectors with C, apply the sum rule projector and
//     contract with Cᵀ.
//  4. Keep the left singular vectors with unit singular values and expand them
//     to (N, N, 3, 3) arrays.
type FCBasisSets struct {
	nAtom     int
	opts      Options
	compact   *mat.Dense // CompressedSize(N) × B
	full      *mat.Dense // 9N² × B
	basisSets []FCTensor

	matrixOnce sync.Once
	matrixForm []*mat.Dense
}

// NewFCBasisSets runs the full construction. On error no basis is returned.
func NewFCBasisSets(reps []utils.CSR, options ...Option) (bs *FCBasisSets, err error) {
	opts := DefaultOptions()
	for _, opt := range options {
		opt(&opts)
	}
	var nAtom int
	if nAtom, err = NAtomFromReps(reps); err != nil {
		return
	}
	bs = &FCBasisSets{
		nAtom: nAtom,
		opts:  opts,
	}
	if err = bs.run(reps); err != nil {
		bs = nil
	}
	return
}

func (bs *FCBasisSets) run(reps []utils.CSR) (err error) {
	var (
		logger = bs.opts.logger()
		t0     = time.Now()
		tol    = bs.opts.Tol
		NP     = bs.opts.NP
		C      utils.CSR
		P      utils.CSR
		T      SumRule
	)
	stage := func(name string) {
		logger.Debug().Str("stage", name).Dur("elapsed", time.Since(t0)).
			Str("mem", utils.GetMemUsage()).Msg("fc basis")
	}
	if C, err = PermutationCompressionMatrix(bs.nAtom); err != nil {
		return
	}
	stage("compression matrix")

	if P, err = SpgProjector(reps, bs.nAtom, NP); err != nil {
		return
	}
	stage("space group projector")
	rank := TraceRank(P)
	logger.Info().Int("natom", bs.nAtom).Int("operations", len(reps)).Int("size", CompressedSize(bs.nAtom)).
		Int("nnz", P.NNZ()).Int("rank", rank).Msg("Solving eigenvalue problem of projection matrix")

	var (
		vecs *mat.Dense
		vals []float64
	)
	if vecs, vals, err = ProjectorEigenvectors(P, rank, tol, bs.opts.Eigen, NP, logger); err != nil {
		return
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		logger.Debug().Floats64("eigenvalues", vals).Msg("eigenvalues of projector")
	}
	stage("projector eigenvectors")

	if T, err = SumRuleProjector(bs.nAtom); err != nil {
		return
	}
	var s []float64
	if bs.compact, s, err = IntersectSumRule(vecs, C, C.Transpose(), T, tol, NP); err != nil {
		return
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		logger.Debug().Floats64("singular_values", s).Msg("svd of sum rule projected basis")
	}
	stage("sum rule intersection")

	if bs.compact.IsEmpty() {
		bs.full = &mat.Dense{}
	} else {
		bs.full = C.MulDense(bs.compact, NP)
	}
	if err = bs.assemble(); err != nil {
		return
	}
	logger.Info().Int("basis_size", len(bs.basisSets)).Dur("elapsed", time.Since(t0)).Msg("fc basis sets")
	return
}

func (bs *FCBasisSets) assemble() (err error) {
	if bs.full.IsEmpty() {
		bs.basisSets = []FCTensor{}
		return
	}
	var (
		nr, nc = bs.full.Dims()
	)
	if nr != 9*bs.nAtom*bs.nAtom {
		return fmt.Errorf("%w: expanded basis has %d rows, expected %d", ErrInternal, nr, 9*bs.nAtom*bs.nAtom)
	}
	bs.basisSets = make([]FCTensor, nc)
	for k := 0; k < nc; k++ {
		bs.basisSets[k] = FCTensor{
			NAtom: bs.nAtom,
			Data:  mat.Col(nil, k, bs.full),
		}
	}
	return
}

func (bs *FCBasisSets) NAtom() int { return bs.nAtom }
func (bs *FCBasisSets) Len() int   { return len(bs.basisSets) }

// BasisSets returns copies of the basis arrays in construction order.
func (bs *FCBasisSets) BasisSets() (sets []FCTensor) {
	sets = make([]FCTensor, len(bs.basisSets))
	for k, f := range bs.basisSets {
		sets[k] = FCTensor{
			NAtom: f.NAtom,
			Data:  append([]float64(nil), f.Data...),
		}
	}
	return
}

// BasisSetsMatrixForm returns every basis array as a 3N×3N matrix. It is
// computed on first use.
func (bs *FCBasisSets) BasisSetsMatrixForm() (mf []*mat.Dense) {
	bs.matrixOnce.Do(func() {
		bs.matrixForm = make([]*mat.Dense, len(bs.basisSets))
		for k, f := range bs.basisSets {
			bs.matrixForm[k] = f.MatrixForm()
		}
	})
	mf = make([]*mat.Dense, len(bs.matrixForm))
	for k, m := range bs.matrixForm {
		mf[k] = mat.DenseCopyOf(m)
	}
	return
}

// CompactBasis returns the basis in compressed coordinates, one column per
// basis array. It is empty when the basis is.
func (bs *FCBasisSets) CompactBasis() *mat.Dense {
	if bs.compact.IsEmpty() {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(bs.compact)
}

// FullBasis returns the basis as 9N² rows, one column per basis array.
func (bs *FCBasisSets) FullBasis() *mat.Dense {
	if bs.full.IsEmpty() {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(bs.full)
}

package fcbasis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/notargets/symfc/utils"
)

// EigenOptions controls the block eigensolver used on the symmetry projector.
type EigenOptions struct {
	MaxIterations  int     // Iteration limit, exceeding it is an error
	ConvergenceTol float64 // Largest accepted residual ‖Pv - λv‖ of a kept Ritz pair
	Oversample     int     // Extra block columns beyond the requested rank
	Seed           uint64  // Seed of the starting block
}

func DefaultEigenOptions() EigenOptions {
	return EigenOptions{
		MaxIterations:  300,
		ConvergenceTol: 1.e-10,
		Oversample:     10,
		Seed:           1,
	}
}

// ProjectorEigenvectors finds the rank eigenpairs of the symmetric operator P
// with the largest eigenvalue magnitudes, using block subspace iteration with
// Rayleigh-Ritz extraction. Eigenvalues with |λ| <= tol are dropped; every
// remaining eigenvalue must equal 1 within tol and their number must equal
// rank. The eigenvectors are returned as the columns of vecs.
func ProjectorEigenvectors(P utils.CSR, rank int, tol float64, opts EigenOptions, NP int,
	logger zerolog.Logger) (vecs *mat.Dense, vals []float64, err error) {
	var (
		size, nc = P.Dims()
	)
	if size != nc {
		err = fmt.Errorf("%w: projector is %dx%d, not square", ErrPrecondition, size, nc)
		return
	}
	if rank < 0 || rank > size {
		err = fmt.Errorf("%w: rank %d from trace is outside [0, %d]", ErrRankMismatch, rank, size)
		return
	}
	if rank == 0 {
		vecs = &mat.Dense{}
		return
	}
	var (
		b      = min(size, rank+max(opts.Oversample, 0))
		Q      = startBlock(size, b, opts.Seed)
		ritz   []float64
		V      *mat.Dense
		sorted []int
	)
	converged := false
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		Y := P.MulDense(Q, NP)
		if utils.IsNan(Y) {
			err = fmt.Errorf("%w: NaN in projector product at iteration %d", ErrNoConvergence, iter)
			return
		}
		var (
			T   = utils.MulTransA(Q, Y)
			sym = mat.NewSymDense(b, nil)
			eig mat.EigenSym
			W   mat.Dense
		)
		for i := 0; i < b; i++ {
			for j := i; j < b; j++ {
				sym.SetSym(i, j, 0.5*(T.At(i, j)+T.At(j, i)))
			}
		}
		if ok := eig.Factorize(sym, true); !ok {
			err = fmt.Errorf("%w: Rayleigh-Ritz eigen decomposition failed at iteration %d",
				ErrNoConvergence, iter)
			return
		}
		ritz = eig.Values(nil)
		eig.VectorsTo(&W)
		sorted = byMagnitude(ritz)

		var QW, YW mat.Dense
		QW.Mul(Q, &W)
		YW.Mul(Y, &W)
		maxRes := 0.
		res := make([]float64, size)
		for _, k := range sorted[:rank] {
			mat.Col(res, k, &YW)
			floats.AddScaled(res, -ritz[k], mat.Col(nil, k, &QW))
			maxRes = math.Max(maxRes, floats.Norm(res, 2))
		}
		logger.Debug().Int("iteration", iter).Int("block", b).Float64("max_residual", maxRes).
			Msg("projector subspace iteration")
		if maxRes <= opts.ConvergenceTol {
			V = &QW
			converged = true
			break
		}
		Q = utils.OrthonormalizeColumns(Y)
	}
	if !converged {
		err = fmt.Errorf("%w: projector eigensolver reached %d iterations (rank %d, block %d)",
			ErrNoConvergence, opts.MaxIterations, rank, b)
		return
	}

	var (
		keep      []int
		offending []float64
	)
	for _, k := range sorted[:rank] {
		if math.Abs(ritz[k]) > tol {
			keep = append(keep, k)
			vals = append(vals, ritz[k])
			if math.Abs(ritz[k]-1) > tol {
				offending = append(offending, ritz[k])
			}
		}
	}
	if len(offending) != 0 {
		err = fmt.Errorf("%w: %d eigenvalues differ from 1 by more than %g: %v",
			ErrNumericalInconsistency, len(offending), tol, offending)
		vals = nil
		return
	}
	if len(keep) != rank {
		err = fmt.Errorf("%w: rounded trace is %d but %d unit eigenvalues were found",
			ErrRankMismatch, rank, len(keep))
		vals = nil
		return
	}
	vecs = utils.MatSubCol(V, keep)
	return
}

func startBlock(size, b int, seed uint64) (Q *mat.Dense) {
	var (
		dist = distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
		data = make([]float64, size*b)
	)
	for i := range data {
		data[i] = dist.Rand()
	}
	Q = utils.OrthonormalizeColumns(mat.NewDense(size, b, data))
	return
}

// byMagnitude returns the indices of vals ordered by decreasing |val|.
func byMagnitude(vals []float64) (order []int) {
	order = make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(vals[order[a]]) > math.Abs(vals[order[b]])
	})
	return
}

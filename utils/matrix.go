package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

func MatSubCol(MI *mat.Dense, ColIndices []int) (R *mat.Dense) {
	// ColIndices should contain a list of column indices into M
	var (
		nr, nc = MI.Dims()
		ncI    = len(ColIndices)
	)
	if ncI == 0 {
		return &mat.Dense{}
	}
	R = mat.NewDense(nr, ncI, nil)
	for j, valI := range ColIndices {
		if valI > nc-1 || valI < 0 {
			panic(fmt.Sprintf("unable to subset column %d from matrix with %d columns", valI, nc))
		}
		for i := 0; i < nr; i++ {
			R.Set(i, j, MI.At(i, valI))
		}
	}
	return
}

// OrthonormalizeColumns returns an m×n matrix with orthonormal columns that
// span the columns of A, m >= n. A is not modified.
func OrthonormalizeColumns(A *mat.Dense) (Q *mat.Dense) {
	var (
		m, n = A.Dims()
	)
	if m < n {
		panic(fmt.Sprintf("thin QR needs rows >= cols, have %dx%d", m, n))
	}
	Q = mat.DenseCopyOf(A)
	var (
		raw  = Q.RawMatrix()
		tau  = make([]float64, n)
		work = make([]float64, 1)
	)
	lapack64.Geqrf(raw, tau, work, -1)
	work = make([]float64, max(int(work[0]), m, n))
	lapack64.Geqrf(raw, tau, work, len(work))
	lapack64.Orgqr(raw, tau, work, -1)
	if int(work[0]) > len(work) {
		work = make([]float64, int(work[0]))
	}
	lapack64.Orgqr(raw, tau, work, len(work))
	return
}

// MulTransA returns Aᵀ B.
func MulTransA(A, B *mat.Dense) (R *mat.Dense) {
	var (
		_, nc  = A.Dims()
		_, ncB = B.Dims()
	)
	R = mat.NewDense(nc, ncB, nil)
	blas64.Gemm(blas.Trans, blas.NoTrans, 1, A.RawMatrix(), B.RawMatrix(), 0, R.RawMatrix())
	return
}

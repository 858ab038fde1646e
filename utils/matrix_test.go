package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestMatSubCol(t *testing.T) {
	M := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	A := MatSubCol(M, []int{2, 0})
	assert.Equal(t, []float64{
		3, 1,
		6, 4,
	}, A.RawMatrix().Data)
	assert.True(t, MatSubCol(M, nil).IsEmpty())
	assert.Panics(t, func() { MatSubCol(M, []int{3}) })
}

func TestOrthonormalizeColumns(t *testing.T) {
	A := mat.NewDense(5, 3, []float64{
		1, 2, 0,
		0, 1, 1,
		3, 0, 1,
		1, 1, 1,
		2, -1, 4,
	})
	Acopy := mat.DenseCopyOf(A)
	Q := OrthonormalizeColumns(A)
	nr, nc := Q.Dims()
	assert.Equal(t, 5, nr)
	assert.Equal(t, 3, nc)
	// Input untouched
	assert.True(t, mat.Equal(A, Acopy))

	QtQ := MulTransA(Q, Q)
	assert.True(t, mat.EqualApprox(QtQ, eye(3), 1.e-12))

	// Q spans the columns of A: Q Qᵀ A = A
	var proj mat.Dense
	proj.Mul(Q, MulTransA(Q, A))
	assert.True(t, mat.EqualApprox(&proj, A, 1.e-12))

	assert.Panics(t, func() { OrthonormalizeColumns(mat.NewDense(2, 3, nil)) })
}

func TestMulTransA(t *testing.T) {
	A := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	B := mat.NewDense(3, 1, []float64{1, -1, 2})
	var expected mat.Dense
	expected.Mul(A.T(), B)
	R := MulTransA(A, B)
	assert.True(t, mat.EqualApprox(R, &expected, 1.e-14))
	assert.Equal(t, []float64{8, 10}, R.RawMatrix().Data)
}

func eye(n int) (I *mat.Dense) {
	I = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return
}

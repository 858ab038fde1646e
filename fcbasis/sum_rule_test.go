package fcbasis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSumRuleApply(t *testing.T) {
	nAtom := 3
	T, err := SumRuleProjector(nAtom)
	require.NoError(t, err)
	nr, nc := T.S.Dims()
	assert.Equal(t, 81, nr)
	assert.Equal(t, 27, nc)

	U := mat.NewDense(81, 4, nil)
	for i := 0; i < 81; i++ {
		for j := 0; j < 4; j++ {
			U.Set(i, j, math.Sin(float64(3*i+j+1)))
		}
	}
	R := T.Apply(U, 3)
	// Every sum over the second atom vanishes
	sums := T.St.MulDense(R, 1)
	assert.True(t, mat.EqualApprox(sums, mat.NewDense(27, 4, nil), 1.e-13))
	// Idempotent
	assert.True(t, mat.EqualApprox(R, T.Apply(R, 2), 1.e-13))

	assert.True(t, T.Apply(&mat.Dense{}, 1).IsEmpty())

	_, err = SumRuleProjector(0)
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestIntersectSumRule(t *testing.T) {
	for _, tc := range []struct {
		nAtom, expected int
	}{
		{1, 0}, {2, 6}, {3, 21},
	} {
		var (
			size = CompressedSize(tc.nAtom)
		)
		C, err := PermutationCompressionMatrix(tc.nAtom)
		require.NoError(t, err)
		T, err := SumRuleProjector(tc.nAtom)
		require.NoError(t, err)
		// Every pair symmetric array
		basis, s, err := IntersectSumRule(eyeDense(size), C, C.Transpose(), T, 1.e-8, 2)
		require.NoError(t, err)
		assert.Len(t, s, size)
		if tc.expected == 0 {
			assert.True(t, basis.IsEmpty())
			continue
		}
		_, nc := basis.Dims()
		assert.Equal(t, tc.expected, nc, "natom %d", tc.nAtom)
		requireOrthonormalColumns(t, basis, 1.e-10)
		// Expanded columns satisfy the sum rule
		full := C.MulDense(basis, 2)
		assert.True(t, mat.EqualApprox(full, T.Apply(full, 2), 1.e-10))
	}
	C, _ := PermutationCompressionMatrix(2)
	T, _ := SumRuleProjector(2)
	basis, s, err := IntersectSumRule(&mat.Dense{}, C, C.Transpose(), T, 1.e-8, 1)
	require.NoError(t, err)
	assert.True(t, basis.IsEmpty())
	assert.Nil(t, s)
}

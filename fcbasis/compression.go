package fcbasis

import (
	"fmt"
	"math"

	"github.com/notargets/symfc/utils"
)

// PermutationCompressionMatrix returns C, the (9N², 3N(3N+1)/2) matrix that
// expands the upper triangle of a 3N×3N force-constant matrix to all of its
// elements. Column n holds pair n in combinations-with-replacement order.
// CᵀC is the identity and CCᵀ projects onto pair-symmetric matrices.
func PermutationCompressionMatrix(nAtom int) (C utils.CSR, err error) {
	if nAtom < 1 {
		err = fmt.Errorf("%w: number of atoms must be positive, got %d", ErrPrecondition, nAtom)
		return
	}
	var (
		n3     = 3 * nAtom
		sizeSq = 9 * nAtom * nAtom
		val    = math.Sqrt(2) / 2
		tr     = utils.NewTriplets(sizeSq, CompressedSize(nAtom))
		n      int
	)
	for ia := 0; ia < n3; ia++ {
		for jb := ia; jb < n3; jb++ {
			var (
				i, a = ia / 3, ia % 3
				j, b = jb / 3, jb % 3
			)
			if ia == jb {
				tr.Add(ToSerial(i, a, j, b, nAtom), n, 1)
			} else {
				tr.Add(ToSerial(i, a, j, b, nAtom), n, val)
				tr.Add(ToSerial(j, b, i, a, nAtom), n, val)
			}
			n++
		}
	}
	var expected int
	if n3%2 == 1 {
		expected = n3 * ((n3 + 1) / 2)
	} else {
		expected = (n3 / 2) * (n3 + 1)
	}
	if n != expected {
		err = fmt.Errorf("%w: compression matrix for %d atoms has %d columns, expected %d",
			ErrInternal, nAtom, n, expected)
		return
	}
	C = tr.ToCSR(0)
	C.SetName("C")
	return
}

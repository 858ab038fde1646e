package utils

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CSR wraps a compressed sparse row matrix. Column indices within each row are
// kept sorted by every constructor in this package.
type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}
func (m CSR) NNZ() int { return m.M.NNZ() }
func (m CSR) Name() string {
	return m.name
}

func (m *CSR) SetName(name string) CSR {
	m.name = name
	return *m
}

// DoNonZero calls fn for every stored element in row order.
func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

func (m CSR) Diagonal() (diag []float64) {
	nr, nc := m.Dims()
	diag = make([]float64, min(nr, nc))
	for i := range diag {
		diag[i] = m.M.At(i, i)
	}
	return
}

func (m CSR) Trace() float64 {
	return m.M.Trace()
}

func (m CSR) Transpose() (R CSR) {
	R = CSR{
		M:    transposeCOO(m.M.ToCOO()),
		name: m.name + "ᵀ",
	}
	return
}

// transposeCOO compresses the transpose of A. The compression is a stable
// counting sort on the new row index, so when A is listed in row major order
// the column indices of every row of the result come out sorted. A must not
// hold two entries at the same (i, j).
func transposeCOO(A *sparse.COO) *sparse.CSR {
	return A.T().(*sparse.COO).ToCSR()
}

// MulDense returns m * B, with the rows of m split over NP goroutines.
func (m CSR) MulDense(B *mat.Dense, NP int) (R *mat.Dense) {
	var (
		nr, nc   = m.Dims()
		nrB, ncB = B.Dims()
		raw      = m.RawMatrix()
	)
	if nc != nrB {
		err := fmt.Errorf("dimension mismatch: CSR \"%v\" is %dx%d, B is %dx%d", m.name, nr, nc, nrB, ncB)
		panic(err)
	}
	if nr == 0 || ncB == 0 {
		// gonum has no zero-sized Dense, callers check IsEmpty()
		return &mat.Dense{}
	}
	R = mat.NewDense(nr, ncB, nil)
	pm := NewPartitionMap(max(1, min(NP, nr)), nr)
	pm.RunPartitioned(func(_, kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			row := R.RawRowView(i)
			for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
				floats.AddScaled(row, raw.Data[k], B.RawRowView(raw.Ind[k]))
			}
		}
	})
	return
}

// ToDense is intended for tests and small diagnostics only.
func (m CSR) ToDense() (R *mat.Dense) {
	return m.M.ToDense()
}

// Triplets accumulates (row, col, value) contributions in a dictionary of
// keys. Contributions landing on the same (row, col) are summed.
type Triplets struct {
	dok *sparse.DOK
}

func NewTriplets(nr, nc int) (tr *Triplets) {
	tr = &Triplets{
		dok: sparse.NewDOK(nr, nc),
	}
	return
}

func (tr *Triplets) Dims() (r, c int) { return tr.dok.Dims() }
func (tr *Triplets) Len() int         { return tr.dok.NNZ() }

// Add panics with mat.ErrRowAccess or mat.ErrColAccess when (i, j) is out of
// bounds.
func (tr *Triplets) Add(i, j int, val float64) {
	tr.dok.Set(i, j, tr.dok.At(i, j)+val)
}

// Merge sums the contents of other into the receiver.
func (tr *Triplets) Merge(other *Triplets) {
	var (
		nr, nc = tr.Dims()
		or, oc = other.Dims()
	)
	if nr != or || nc != oc {
		panic(fmt.Sprintf("triplet merge of %dx%d into %dx%d", or, oc, nr, nc))
	}
	other.dok.DoNonZero(func(i, j int, v float64) {
		tr.Add(i, j, v)
	})
}

// ToCSR materializes the accumulated sums, dropping entries whose magnitude is
// at or below dropTol. NaN entries are kept. The keys are unique, so COO.ToCSR never has to merge
// duplicates, and the two transposes put the columns of each row in order
// regardless of the map order of the dictionary.
func (tr *Triplets) ToCSR(dropTol float64) (R CSR) {
	nr, nc := tr.Dims()
	A := sparse.NewCOO(nr, nc, nil, nil, nil)
	tr.dok.DoNonZero(func(i, j int, v float64) {
		if math.Abs(v) > dropTol || math.IsNaN(v) {
			A.Set(i, j, v)
		}
	})
	At := transposeCOO(A)
	R = CSR{
		M:    transposeCOO(At.ToCOO()),
		name: "unnamed - hint: pass a variable name to SetName()",
	}
	return
}

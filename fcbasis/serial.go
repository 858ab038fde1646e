package fcbasis

// ToSerial maps (atom i, direction a, atom j, direction b) to the row-major
// offset of element [i][j][a][b] in an (N, N, 3, 3) force-constant array.
func ToSerial(i, a, j, b, nAtom int) int {
	return i*9*nAtom + j*9 + a*3 + b
}

// FromSerial inverts ToSerial.
func FromSerial(serial, nAtom int) (i, a, j, b int) {
	i = serial / (9 * nAtom)
	serial -= i * 9 * nAtom
	j = serial / 9
	serial -= j * 9
	a, b = serial/3, serial%3
	return
}

// PairIndex returns the compressed column of the unordered pair (p, q) of
// flattened displacement indices, p = 3*atom + direction, n3 = 3*N.
// Pairs are numbered in combinations-with-replacement order:
// (0,0), (0,1) ... (0,n3-1), (1,1), (1,2) ... (n3-1,n3-1).
func PairIndex(p, q, n3 int) int {
	if p > q {
		p, q = q, p
	}
	return p*n3 - p*(p-1)/2 + (q - p)
}

// CompressedSize is the number of unordered pairs over 3N displacement indices.
func CompressedSize(nAtom int) int {
	n3 := 3 * nAtom
	return n3 * (n3 + 1) / 2
}

package spgreps

import (
	"fmt"
)

// Operation is a space group operation x' = W x + t in fractional coordinates
// of the supercell.
type Operation struct {
	Rotation    [3][3]int
	Translation [3]float64
}

func Identity() Operation {
	return Operation{Rotation: [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// PointGroup returns the rotations of a named point group, in the setting of a
// cubic (or any orthogonal-axes) cell. Supported: "1", "-1", "m-3m".
func PointGroup(symbol string) (rotations [][3][3]int, err error) {
	switch symbol {
	case "1":
		rotations = [][3][3]int{Identity().Rotation}
	case "-1":
		rotations = [][3][3]int{
			Identity().Rotation,
			{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}},
		}
	case "m-3m":
		rotations = cubicHolohedry()
	default:
		err = fmt.Errorf("%w: unsupported point group %q", ErrOperation, symbol)
	}
	return
}

// cubicHolohedry lists the 48 signed permutation matrices of three axes, the
// identity first.
func cubicHolohedry() (rotations [][3][3]int) {
	perms := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	signs := [][3]int{
		{1, 1, 1}, {-1, 1, 1}, {1, -1, 1}, {1, 1, -1},
		{-1, -1, 1}, {-1, 1, -1}, {1, -1, -1}, {-1, -1, -1},
	}
	for _, perm := range perms {
		for _, sign := range signs {
			var W [3][3]int
			for row := 0; row < 3; row++ {
				W[row][perm[row]] = sign[row]
			}
			rotations = append(rotations, W)
		}
	}
	return
}

// Expand forms every operation (W, t) with W from rotations and t from
// translations. A nil translations list means the zero translation only.
func Expand(rotations [][3][3]int, translations [][3]float64) (ops []Operation) {
	if len(translations) == 0 {
		translations = [][3]float64{{0, 0, 0}}
	}
	ops = make([]Operation, 0, len(rotations)*len(translations))
	for _, t := range translations {
		for _, W := range rotations {
			ops = append(ops, Operation{Rotation: W, Translation: t})
		}
	}
	return
}

// LatticeTranslations returns the pure translations of a d0×d1×d2 supercell of
// a cell, expressed in the supercell's fractional coordinates. centering holds
// extra translations of the cell itself, in the cell's fractional coordinates.
func LatticeTranslations(dims [3]int, centering [][3]float64) (translations [][3]float64) {
	if len(centering) == 0 {
		centering = [][3]float64{{0, 0, 0}}
	}
	for i := 0; i < dims[0]; i++ {
		for j := 0; j < dims[1]; j++ {
			for k := 0; k < dims[2]; k++ {
				for _, c := range centering {
					translations = append(translations, [3]float64{
						(float64(i) + c[0]) / float64(dims[0]),
						(float64(j) + c[1]) / float64(dims[1]),
						(float64(k) + c[2]) / float64(dims[2]),
					})
				}
			}
		}
	}
	return
}

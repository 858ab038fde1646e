package fcbasis

import "errors"

var (
	// ErrPrecondition reports malformed input: atom counts, representation shapes.
	ErrPrecondition = errors.New("fcbasis: precondition violated")
	// ErrNumericalInconsistency reports projector eigenvalues away from {0, 1}.
	// The supplied representations do not form a consistent group.
	ErrNumericalInconsistency = errors.New("fcbasis: symmetry projector eigenvalues are not all ones")
	// ErrNoConvergence reports a failed eigen, QR or singular value decomposition.
	ErrNoConvergence = errors.New("fcbasis: decomposition did not converge")
	// ErrRankMismatch reports a rounded projector trace that disagrees with the
	// number of unit eigenvalues found.
	ErrRankMismatch = errors.New("fcbasis: projector trace does not match eigenspace dimension")
	ErrInternal     = errors.New("fcbasis: internal consistency check failed")
)

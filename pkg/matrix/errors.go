package matrix

import "errors"

// Validation errors. They are reported before any hardware write happens.
var (
	ErrMalformedSpec     = errors.New("matrix: malformed connection spec")
	ErrUnknownElement    = errors.New("matrix: unknown path elements")
	ErrDuplicateElement  = errors.New("matrix: duplicate path elements")
	ErrShortPath         = errors.New("matrix: path needs at least two elements")
	ErrLeafPlacement     = errors.New("matrix: path endpoints must be leaves")
	ErrInteriorPlacement = errors.New("matrix: in-between path elements must be buses")
	ErrNoConnection      = errors.New("matrix: no possible connection")
	ErrConflictingLevels = errors.New("matrix: control lines requested at both levels")
	ErrUnknownSwitch     = errors.New("matrix: unknown switch")
	ErrUnknownIndicator  = errors.New("matrix: unknown indicator")
)

// ErrExclusive is wrapped by *ExclusiveError.
var ErrExclusive = errors.New("matrix: outputs should not be active at the same time")

// ErrUncertainState is returned after a failed hardware write until Reset
// succeeds.
var ErrUncertainState = errors.New("matrix: hardware state uncertain, reset required")

// Table construction errors.
var (
	ErrConflictingConnection = errors.New("matrix: conflicting control lines for node pair")
	ErrInvalidTable          = errors.New("matrix: invalid connection table")
)

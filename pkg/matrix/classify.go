package matrix

import "errors"

var validationErrors = []error{
	ErrMalformedSpec,
	ErrUnknownElement,
	ErrDuplicateElement,
	ErrShortPath,
	ErrLeafPlacement,
	ErrInteriorPlacement,
	ErrNoConnection,
	ErrConflictingLevels,
	ErrUnknownSwitch,
	ErrUnknownIndicator,
}

// IsValidation reports whether err rejects a request before any hardware
// write.
func IsValidation(err error) bool {
	return isValidation(err)
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isExclusive(err error) bool {
	return errors.Is(err, ErrExclusive)
}

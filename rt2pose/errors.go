package rt2pose

import "github.com/pkg/errors"

var (
	// ErrInvalidDimensions is returned when the rotation is not 3x3 or the translation does not
	// hold exactly 3 elements.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrNonOrthonormalRotation is returned when the rotation is not a proper rotation within the
	// configured tolerance and cannot be used under the configured policy.
	ErrNonOrthonormalRotation = errors.New("rotation is not orthonormal")

	// ErrInvalidNumericInput is returned when an input holds NaN or infinite values, or values
	// that do not fit in single precision.
	ErrInvalidNumericInput = errors.New("invalid numeric input")
)

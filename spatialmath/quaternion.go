package spatialmath

import (
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
)

// NewZeroQuaternion returns the quaternion which signifies no rotation.
func NewZeroQuaternion() quat.Number {
	return quat.Number{Real: 1}
}

// Normalize scales a quaternion to unit length. The zero quaternion is returned unchanged.
func Normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return q
	}
	return quat.Scale(1/norm, q)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Both q
// and -q represent the same rotation, so use OrientationAlmostEqual to compare rotations.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return scalar.EqualWithinAbs(a.Real, b.Real, tol) &&
		scalar.EqualWithinAbs(a.Imag, b.Imag, tol) &&
		scalar.EqualWithinAbs(a.Jmag, b.Jmag, tol) &&
		scalar.EqualWithinAbs(a.Kmag, b.Kmag, tol)
}

// OrientationAlmostEqual reports whether two quaternions describe the same rotation.
func OrientationAlmostEqual(a, b quat.Number, tol float64) bool {
	return QuaternionAlmostEqual(a, b, tol) || QuaternionAlmostEqual(a, quat.Scale(-1, b), tol)
}

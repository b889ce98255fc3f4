package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

var (
	s2 = math.Sqrt2 / 2

	rotX90 = []float64{
		1, 0, 0,
		0, 0, -1,
		0, 1, 0,
	}
	rotY90 = []float64{
		0, 0, 1,
		0, 1, 0,
		-1, 0, 0,
	}
	rotZ90 = []float64{
		0, -1, 0,
		1, 0, 0,
		0, 0, 1,
	}
)

func TestNewRotationMatrix(t *testing.T) {
	_, err := NewRotationMatrix([]float64{1, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "need exactly 9")

	rm, err := NewRotationMatrix(rotZ90)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.At(0, 1), test.ShouldEqual, -1.)
	test.That(t, rm.Row(1), test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, rm.Col(0), test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 0})
	test.That(t, rm.Rotate(r3.Vector{X: 1}), test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 0})

	// The input slice is copied.
	input := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	rm, err = NewRotationMatrix(input)
	test.That(t, err, test.ShouldBeNil)
	input[0] = 5
	test.That(t, rm.At(0, 0), test.ShouldEqual, 1.)

	_, err = RotationMatrixFromDense(mat.NewDense(2, 3, nil))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "2x3")
}

func TestRotationMatrixQuaternion(t *testing.T) {
	for _, tc := range []struct {
		name     string
		matrix   []float64
		expected quat.Number
	}{
		{"identity", []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, quat.Number{Real: 1}},
		{"90 about x", rotX90, quat.Number{Real: s2, Imag: s2}},
		{"90 about y", rotY90, quat.Number{Real: s2, Jmag: s2}},
		{"90 about z", rotZ90, quat.Number{Real: s2, Kmag: s2}},
		{"180 about x", []float64{1, 0, 0, 0, -1, 0, 0, 0, -1}, quat.Number{Imag: 1}},
		{"180 about z", []float64{-1, 0, 0, 0, -1, 0, 0, 0, 1}, quat.Number{Kmag: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rm, err := NewRotationMatrix(tc.matrix)
			test.That(t, err, test.ShouldBeNil)
			q := rm.Quaternion()
			test.That(t, OrientationAlmostEqual(q, tc.expected, 1e-9), test.ShouldBeTrue)
			test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1.)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	rotations := []*R4AA{
		NewR4AA(0, r3.Vector{Z: 1}),
		NewR4AA(math.Pi/2, r3.Vector{X: 1}),
		NewR4AA(math.Pi/2, r3.Vector{Y: 1}),
		NewR4AA(math.Pi/2, r3.Vector{Z: 1}),
		NewR4AA(math.Pi, r3.Vector{X: 1, Y: 1}),
		NewR4AA(2.1, r3.Vector{X: 0.3, Y: -0.5, Z: 0.81}),
		NewR4AA(-0.4, r3.Vector{X: -1, Y: 2, Z: 3}),
	}
	for _, r4 := range rotations {
		rm := r4.RotationMatrix()
		test.That(t, rm.IsOrthonormal(1e-12), test.ShouldBeTrue)

		q := rm.Quaternion()
		test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1., 1e-12)
		test.That(t, OrientationAlmostEqual(q, r4.ToQuat(), 1e-9), test.ShouldBeTrue)
		test.That(t, QuatToRotationMatrix(q).AlmostEqual(rm, 1e-9), test.ShouldBeTrue)
	}
}

func TestOrthonormality(t *testing.T) {
	test.That(t, NewIdentityRotationMatrix().OrthonormalError(), test.ShouldEqual, 0.)
	test.That(t, NewIdentityRotationMatrix().Det(), test.ShouldEqual, 1.)

	scaled, err := NewRotationMatrix([]float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scaled.IsOrthonormal(1e-3), test.ShouldBeFalse)

	reflection, err := NewRotationMatrix([]float64{-1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	// Columns are orthonormal but the determinant is -1.
	test.That(t, reflection.OrthonormalError(), test.ShouldAlmostEqual, 2.)
	test.That(t, reflection.IsOrthonormal(1e-3), test.ShouldBeFalse)
}

func TestNearestRotation(t *testing.T) {
	// A 30 degree rotation about z with noise on every element.
	c, s := math.Cos(math.Pi/6), math.Sin(math.Pi/6)
	noisy, err := NewRotationMatrix([]float64{
		c + 0.01, -s, 0.005,
		s, c - 0.02, 0,
		-0.01, 0.003, 1.02,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, noisy.IsOrthonormal(1e-3), test.ShouldBeFalse)

	fixed, err := noisy.NearestRotation()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fixed.IsOrthonormal(1e-9), test.ShouldBeTrue)
	test.That(t, fixed.AlmostEqual(NewR4AA(math.Pi/6, r3.Vector{Z: 1}).RotationMatrix(), 0.05), test.ShouldBeTrue)
	test.That(t, quat.Abs(fixed.Quaternion()), test.ShouldAlmostEqual, 1., 1e-9)

	// Already a rotation: unchanged.
	rm := NewR4AA(1, r3.Vector{X: 1, Y: 1, Z: 1}).RotationMatrix()
	same, err := rm.NearestRotation()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same.AlmostEqual(rm, 1e-9), test.ShouldBeTrue)

	reflection, err := NewRotationMatrix([]float64{-1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	_, err = reflection.NearestRotation()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not positive")

	singular, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	_, err = singular.NearestRotation()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestQuaternionHelpers(t *testing.T) {
	q := Normalize(quat.Number{Real: 2, Imag: 2})
	test.That(t, QuaternionAlmostEqual(q, quat.Number{Real: s2, Imag: s2}, 1e-12), test.ShouldBeTrue)
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, quat.Number{})

	neg := quat.Scale(-1, q)
	test.That(t, QuaternionAlmostEqual(q, neg, 1e-6), test.ShouldBeFalse)
	test.That(t, OrientationAlmostEqual(q, neg, 1e-6), test.ShouldBeTrue)

	test.That(t, NewR4AA(1, r3.Vector{}).ToQuat(), test.ShouldResemble, NewZeroQuaternion())
}
